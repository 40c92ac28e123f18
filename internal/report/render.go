package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redactyl/lss/internal/types"
)

// PrintOptions controls human and table output.
type PrintOptions struct {
	NoColor        bool
	Duration       time.Duration
	FilesScanned   int
	ReposScanned   int
	CommitsScanned int
	Warnings       int
}

// Level buckets a combined confidence the same way SARIF levels do.
func Level(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "high"
	case confidence >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

func colorConfidence(c float64, noColor bool) string {
	s := fmt.Sprintf("%.2f", c)
	if noColor {
		return s
	}
	switch Level(c) {
	case "high":
		return "\x1b[31m" + s + "\x1b[0m" // red
	case "medium":
		return "\x1b[33m" + s + "\x1b[0m" // yellow
	default:
		return "\x1b[36m" + s + "\x1b[0m" // cyan
	}
}

// FormatLine renders one finding as
// "location:line: snippet [rules] tags=a,b conf=0.90 entropy=3.52".
func FormatLine(f types.Finding, noColor bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s [%s]", f.Location.String(), f.Snippet, strings.Join(f.MatchedRules, ", "))
	if len(f.Tags) > 0 {
		fmt.Fprintf(&b, " tags=%s", strings.Join(f.Tags, ","))
	}
	fmt.Fprintf(&b, " conf=%s entropy=%.2f", colorConfidence(f.Confidence, noColor), f.Entropy)
	return b.String()
}

// PrintText writes one line per finding followed by a summary footer.
func PrintText(w io.Writer, findings []types.Finding, opts PrintOptions) {
	for _, f := range findings {
		fmt.Fprintln(w, FormatLine(f, opts.NoColor))
	}
	if len(findings) == 0 {
		fmt.Fprintln(w, "No secrets found")
	} else {
		fmt.Fprintf(w, "Found %d potential secrets\n", len(findings))
	}
	printSummary(w, findings, opts)
}

func printSummary(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned == 0 && opts.ReposScanned == 0 {
		return
	}
	high, med, low := 0, 0, 0
	for _, f := range findings {
		switch Level(f.Confidence) {
		case "high":
			high++
		case "medium":
			med++
		default:
			low++
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (high: %d, medium: %d, low: %d)\n", len(findings), high, med, low)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
	}
	if opts.ReposScanned > 0 {
		fmt.Fprintf(w, "Repositories scanned: %d (%d commits)\n", opts.ReposScanned, opts.CommitsScanned)
	}
	if opts.Warnings > 0 {
		fmt.Fprintf(w, "Skipped with warnings: %d\n", opts.Warnings)
	}
}
