package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/redactyl/lss/internal/git"
	"github.com/redactyl/lss/internal/types"
)

const maxSnippet = 60

// PrintTable renders findings as a table followed by the summary footer.
func PrintTable(w io.Writer, findings []types.Finding, opts PrintOptions) error {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No secrets found")
		printSummary(w, findings, opts)
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("LEVEL", "LOCATION", "COMMIT", "RULES", "TAGS", "CONF", "ENTROPY", "SNIPPET")
	for _, f := range findings {
		loc := types.Location{Path: f.Location.Path, Line: f.Location.Line}
		if f.Location.Repo != "" && f.Location.Repo != "." {
			loc.Path = f.Location.Repo + "/" + f.Location.Path
		}
		row := []any{
			Level(f.Confidence),
			loc.String(),
			git.ShortHash(f.Location.Commit),
			strings.Join(f.MatchedRules, ", "),
			strings.Join(f.Tags, ","),
			fmt.Sprintf("%.2f", f.Confidence),
			fmt.Sprintf("%.2f", f.Entropy),
			truncate(f.Snippet, maxSnippet),
		}
		if err := table.Append(row...); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Found %d potential secrets\n", len(findings))
	printSummary(w, findings, opts)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
