// Package scanner evaluates a rule set against lines of text.
package scanner

import (
	"sort"
	"strings"

	"github.com/redactyl/lss/internal/rules"
	"github.com/redactyl/lss/internal/score"
	"github.com/redactyl/lss/internal/types"
)

const (
	// IgnoreLineDirective skips the line it appears on.
	IgnoreLineDirective = "lss:ignore"
	// IgnoreFileDirective skips the whole file it appears in.
	IgnoreFileDirective = "lss:ignore-file"
)

// Scanner matches lines against an ordered rule set. It holds no mutable
// state and may be shared between goroutines.
type Scanner struct {
	rules []rules.Rule
}

// New returns a scanner over rs. The slice is not copied and must not be
// modified afterwards.
func New(rs []rules.Rule) *Scanner {
	return &Scanner{rules: rs}
}

// Rules returns the number of rules the scanner evaluates.
func (s *Scanner) Rules() int { return len(s.rules) }

// ScanLine evaluates every rule against line. When at least one matches it
// returns a finding at loc whose snippet is the trimmed line.
func (s *Scanner) ScanLine(loc types.Location, line string) (types.Finding, bool) {
	var (
		names []string
		confs []float64
		tags  map[string]bool
	)
	for _, r := range s.rules {
		if !r.Match(line) {
			continue
		}
		names = append(names, r.Name)
		confs = append(confs, r.Confidence)
		for _, t := range r.Tags {
			if tags == nil {
				tags = map[string]bool{}
			}
			tags[t] = true
		}
	}
	if len(names) == 0 {
		return types.Finding{}, false
	}
	snippet := strings.TrimSpace(line)
	return types.Finding{
		Location:     loc,
		Snippet:      snippet,
		MatchedRules: names,
		Confidence:   score.Combine(confs),
		Entropy:      score.Entropy(snippet),
		Tags:         sortedKeys(tags),
	}, true
}

// ScanText splits text into lines and scans each one. loc.Line is replaced by
// the 1-based line number. Lines carrying IgnoreLineDirective are skipped.
func (s *Scanner) ScanText(loc types.Location, text string) []types.Finding {
	var out []types.Finding
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.Contains(line, IgnoreLineDirective) {
			continue
		}
		l := loc
		l.Line = i + 1
		if f, ok := s.ScanLine(l, line); ok {
			out = append(out, f)
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
