package types

import (
	"strconv"

	xxhash "github.com/cespare/xxhash/v2"
)

// VirtualPathSeparator delimits the components of a history location id.
const VirtualPathSeparator = "::"

// Location identifies where a finding was observed. Working-tree files only
// carry Path and Line; history findings also name the repository (relative to
// the scan root, "." for the root itself) and the commit id.
type Location struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Repo   string `json:"repo,omitempty"`
	Commit string `json:"commit,omitempty"`
}

// IsHistory reports whether the location refers to a git object rather than
// a working-tree file.
func (l Location) IsHistory() bool { return l.Commit != "" }

// ID returns the identifier used for ordering: the path for files and
// repo::commit::path for history objects. The line number is not included.
func (l Location) ID() string {
	if !l.IsHistory() {
		return l.Path
	}
	return BuildVirtualPath(l.Repo, l.Commit, l.Path)
}

// String renders the location as id:line.
func (l Location) String() string {
	return l.ID() + ":" + strconv.Itoa(l.Line)
}

// Finding describes one line where at least one rule matched. Confidence is
// the combined confidence of every matched rule, in [0,1].
type Finding struct {
	Location     Location `json:"location"`
	Snippet      string   `json:"snippet"`
	MatchedRules []string `json:"matched_rules"`
	Confidence   float64  `json:"combined_confidence"`
	Entropy      float64  `json:"entropy"`
	Tags         []string `json:"tags"`
}

// HasAnyTag reports whether the finding carries at least one tag in set.
func (f Finding) HasAnyTag(set map[string]bool) bool {
	for _, t := range f.Tags {
		if set[t] {
			return true
		}
	}
	return false
}

// Fingerprint hashes the parts of a finding that stay stable when the same
// content appears unchanged in several commits.
func (f Finding) Fingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(f.Location.Repo)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(f.Location.Path)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.Itoa(f.Location.Line))
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(f.Snippet)
	return d.Sum64()
}
