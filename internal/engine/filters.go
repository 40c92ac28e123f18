package engine

import (
	"path/filepath"
	"sort"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"

	"github.com/redactyl/lss/internal/types"
)

var defaultExcludeDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"out":          true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"coverage":     true,
	"bin":          true,
	"obj":          true,
}

// suffixes treated as non-text/big or noisy artifacts when default excludes enabled
var defaultExcludeFileSuffixes = []string{
	".min.js", ".map",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg",
	".pdf", ".zip", ".gz", ".tar", ".tgz", ".7z",
	".jar", ".class", ".exe", ".dll", ".so",
	".wasm", ".pyc",
	".pb.go", ".gen.go",
}

// exact base names, lower-cased
var defaultExcludeFileNames = map[string]bool{
	"yarn.lock":         true,
	"package-lock.json": true,
	"pnpm-lock.yaml":    true,
	"composer.lock":     true,
	"poetry.lock":       true,
	"go.sum":            true,
	".ds_store":         true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name]
}

func isDefaultFileExcluded(lowerRel string) bool {
	if strings.HasSuffix(lowerRel, ".lock") {
		return true
	}
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	if strings.Contains(lowerRel, ".gen.") {
		return true
	}
	base := lowerRel
	if i := strings.LastIndex(lowerRel, "/"); i >= 0 {
		base = lowerRel[i+1:]
	}
	return defaultExcludeFileNames[base]
}

func tagSet(tags []string) map[string]bool {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			m[t] = true
		}
	}
	return m
}

// applyFilters drops findings by tag, entropy and confidence, in that order.
func applyFilters(fs []types.Finding, cfg Config) []types.Finding {
	fs = filterByTags(fs, tagSet(cfg.IncludeTags), tagSet(cfg.ExcludeTags))
	fs = filterByEntropy(fs, cfg.EntropyThreshold)
	return filterByConfidence(fs, cfg.MinConfidence)
}

// filterByTags keeps findings carrying at least one include tag (when any are
// given) and then drops those carrying any exclude tag.
func filterByTags(fs []types.Finding, include, exclude map[string]bool) []types.Finding {
	if len(include) == 0 && len(exclude) == 0 {
		return fs
	}
	var out []types.Finding
	for _, f := range fs {
		if len(include) > 0 && !f.HasAnyTag(include) {
			continue
		}
		if len(exclude) > 0 && f.HasAnyTag(exclude) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func filterByEntropy(fs []types.Finding, threshold float64) []types.Finding {
	if threshold <= 0 {
		return fs
	}
	var out []types.Finding
	for _, f := range fs {
		if f.Entropy >= threshold {
			out = append(out, f)
		}
	}
	return out
}

func filterByConfidence(fs []types.Finding, min float64) []types.Finding {
	if min <= 0 {
		return fs
	}
	var out []types.Finding
	for _, f := range fs {
		if f.Confidence >= min {
			out = append(out, f)
		}
	}
	return out
}

// sortFindings orders by location id and line, then by snippet and rule names
// so the order is total.
func sortFindings(fs []types.Finding) {
	sort.Slice(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if ai, bi := a.Location.ID(), b.Location.ID(); ai != bi {
			return ai < bi
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Snippet != b.Snippet {
			return a.Snippet < b.Snippet
		}
		return strings.Join(a.MatchedRules, ",") < strings.Join(b.MatchedRules, ",")
	})
}

// dedupeHistory drops history findings whose fingerprint was already seen,
// keeping the first occurrence. Working-tree findings are never dropped.
func dedupeHistory(fs []types.Finding) []types.Finding {
	seen := map[uint64]bool{}
	out := fs[:0]
	for _, f := range fs {
		if f.Location.IsHistory() {
			fp := f.Fingerprint()
			if seen[fp] {
				continue
			}
			seen[fp] = true
		}
		out = append(out, f)
	}
	return out
}

// allowedByGlobs returns true if the given path is allowed by the include/exclude
// glob configuration. Include globs are comma-separated and, if provided, act as
// a positive filter. Exclude globs are subtracted last. Matching uses forward-slash
// semantics via doublestar.
func allowedByGlobs(relPath string, cfg Config) bool {
	rp := strings.ReplaceAll(relPath, "\\", "/")
	includes := parseGlobsList(cfg.IncludeGlobs)
	excludes := parseGlobsList(cfg.ExcludeGlobs)
	if len(includes) > 0 && !matchAnyGlob(rp, includes) {
		return false
	}
	if len(excludes) > 0 && matchAnyGlob(rp, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(pathToMatch)); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
