// Package ignore resolves the literal path patterns that exclude files from a scan.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileName is the per-directory ignore file looked up under the scan root.
const FileName = ".lssignore"

// ErrIgnoreFileNotFound is returned when the ignore file named on the command line is missing.
var ErrIgnoreFileNotFound = errors.New("ignore file not found")

// Source records where a pattern came from. It is diagnostic only.
type Source int

const (
	SourceConfig Source = iota
	SourceRootFile
	SourceNestedFile
	SourceCLIFile
)

func (s Source) String() string {
	switch s {
	case SourceConfig:
		return "config"
	case SourceRootFile:
		return "root"
	case SourceNestedFile:
		return "nested"
	case SourceCLIFile:
		return "cli"
	default:
		return "unknown"
	}
}

// Pattern is one literal ignore pattern with its provenance.
type Pattern struct {
	Value  string
	Source Source
	Origin string
}

// Set is an immutable-after-build collection of patterns. Match is safe for
// concurrent use once the set is no longer being added to.
type Set struct {
	patterns []Pattern
	seen     map[string]bool
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{seen: map[string]bool{}}
}

// Add inserts patterns, keeping the first provenance seen for each value.
func (s *Set) Add(ps ...Pattern) {
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	for _, p := range ps {
		if p.Value == "" || s.seen[p.Value] {
			continue
		}
		s.seen[p.Value] = true
		s.patterns = append(s.patterns, p)
	}
}

// Match reports whether any pattern is a substring of path. Matching is
// case-sensitive and literal; '*' has no special meaning.
func (s *Set) Match(path string) bool {
	if s == nil {
		return false
	}
	for _, p := range s.patterns {
		if strings.Contains(path, p.Value) {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the patterns in insertion order.
func (s *Set) Patterns() []Pattern {
	if s == nil {
		return nil
	}
	out := make([]Pattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Len returns the number of distinct patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.patterns)
}

// Load reads one ignore file: one pattern per line, trimmed, with blank lines
// and '#' comments skipped.
func Load(path string, source Source) ([]Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Pattern
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		l := strings.TrimSpace(sc.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		out = append(out, Pattern{Value: l, Source: source, Origin: path})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Options controls Resolve.
type Options struct {
	Root    string
	Config  []string
	CLIFile string
	// FileName overrides the ignore file name looked up under Root.
	FileName string
}

// Problem is a discovered ignore file that could not be read. It never aborts resolution.
type Problem struct {
	Path string
	Err  error
}

// Resolve builds the effective ignore set as the flat union of config
// patterns, the root ignore file, every nested ignore file under Root and the
// CLI ignore file. Unreadable discovered files are returned as problems; a
// missing CLI file is an error.
func Resolve(opts Options) (*Set, []Problem, error) {
	name := opts.FileName
	if name == "" {
		name = FileName
	}
	set := NewSet()
	var problems []Problem

	for _, c := range opts.Config {
		set.Add(Pattern{Value: strings.TrimSpace(c), Source: SourceConfig, Origin: "config"})
	}

	rootFile := filepath.Join(opts.Root, name)
	if ps, err := Load(rootFile, SourceRootFile); err == nil {
		set.Add(ps...)
	} else if !errors.Is(err, fs.ErrNotExist) {
		problems = append(problems, Problem{Path: rootFile, Err: err})
	}

	nested, walkProblems := discover(opts.Root, name)
	problems = append(problems, walkProblems...)
	for _, p := range nested {
		if p == rootFile {
			continue
		}
		ps, err := Load(p, SourceNestedFile)
		if err != nil {
			problems = append(problems, Problem{Path: p, Err: err})
			continue
		}
		set.Add(ps...)
	}

	if opts.CLIFile != "" {
		ps, err := Load(opts.CLIFile, SourceCLIFile)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, problems, fmt.Errorf("%w: %s", ErrIgnoreFileNotFound, opts.CLIFile)
			}
			return nil, problems, fmt.Errorf("read ignore file %s: %w", opts.CLIFile, err)
		}
		set.Add(ps...)
	}
	return set, problems, nil
}

// discover finds every file called name under root, skipping .git directories.
func discover(root, name string) ([]string, []Problem) {
	var found []string
	var problems []Problem
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p != root {
				problems = append(problems, Problem{Path: p, Err: err})
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == name && d.Type().IsRegular() {
			found = append(found, p)
		}
		return nil
	})
	sort.Strings(found)
	return found, problems
}
