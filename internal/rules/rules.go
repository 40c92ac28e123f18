package rules

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DefaultConfidence applies when a rule line omits its confidence field.
const DefaultConfidence = 0.5

// FieldSeparator delimits the fields of a rule line.
const FieldSeparator = "::"

//go:embed default_rules.txt
var defaultRules string

var (
	// ErrRulesFileNotFound is returned when an explicitly requested rules file does not exist.
	ErrRulesFileNotFound = errors.New("rules file not found")

	errMissingPattern    = errors.New("expected Name::Pattern[::tags[::confidence]]")
	errEmptyName         = errors.New("rule name is empty")
	errEmptyPattern      = errors.New("rule pattern is empty")
	errTooManyFields     = errors.New(`too many fields (write a literal "::" in a pattern as \:\: or :{2})`)
	errInvalidConfidence = errors.New("confidence must be a number in [0, 1]")
)

// Rule is an immutable detection rule. It is safe for concurrent use.
type Rule struct {
	Name       string
	Pattern    string
	Tags       []string
	Confidence float64

	re *regexp.Regexp
}

// New compiles a rule. Tags are trimmed and deduplicated; empty tags are dropped.
func New(name, pattern string, tags []string, confidence float64) (Rule, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Rule{}, errEmptyName
	}
	if pattern == "" {
		return Rule{}, errEmptyPattern
	}
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return Rule{}, errInvalidConfidence
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		Name:       name,
		Pattern:    pattern,
		Tags:       normalizeTags(tags),
		Confidence: confidence,
		re:         re,
	}, nil
}

// Match reports whether the rule's pattern matches anywhere in line.
func (r Rule) Match(line string) bool {
	return r.re != nil && r.re.MatchString(line)
}

// ParseError identifies the rule line that could not be parsed.
type ParseError struct {
	Source  string
	Line    int
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: invalid rule %q: %v", e.Source, e.Line, e.Content, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads rule definitions from r. Blank lines and lines starting with '#'
// are skipped. Parsing stops at the first malformed line, which is reported as
// a *ParseError; a partially loaded rule set is never returned.
func Parse(r io.Reader, source string) ([]Rule, error) {
	var out []Rule
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	n := 0
	for sc.Scan() {
		n++
		raw := sc.Text()
		l := strings.TrimSpace(raw)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		rule, err := parseLine(l)
		if err != nil {
			return nil, &ParseError{Source: source, Line: n, Content: raw, Err: err}
		}
		out = append(out, rule)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read rules %s: %w", source, err)
	}
	return out, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(s, source string) ([]Rule, error) {
	return Parse(strings.NewReader(s), source)
}

func parseLine(l string) (Rule, error) {
	parts := strings.Split(l, FieldSeparator)
	if len(parts) < 2 {
		return Rule{}, errMissingPattern
	}
	if len(parts) > 4 {
		return Rule{}, errTooManyFields
	}
	name := strings.TrimSpace(parts[0])
	pattern := strings.TrimSpace(parts[1])
	var tags []string
	if len(parts) >= 3 {
		tags = strings.Split(parts[2], ",")
	}
	confidence := DefaultConfidence
	if len(parts) == 4 {
		if s := strings.TrimSpace(parts[3]); s != "" {
			c, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Rule{}, errInvalidConfidence
			}
			confidence = c
		}
	}
	return New(name, pattern, tags, confidence)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Default returns the bundled rule set.
func Default() []Rule {
	rs, err := ParseString(defaultRules, "default_rules.txt")
	if err != nil {
		panic(err)
	}
	return rs
}

// LoadFile parses a user supplied rules file. A missing file is reported as
// ErrRulesFileNotFound.
func LoadFile(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRulesFileNotFound, path)
		}
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Load returns the bundled rules followed by the rules of each file, in order.
// Duplicate names are kept as independent rules.
func Load(files ...string) ([]Rule, error) {
	out := Default()
	for _, p := range files {
		rs, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}
