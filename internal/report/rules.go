package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/redactyl/lss/internal/rules"
)

// WriteRulesJSON writes a rule listing page as JSON.
func WriteRulesJSON(w io.Writer, p rules.Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// PrintRules writes one "name :: pattern [tags] conf=" line per rule with a
// position header.
func PrintRules(w io.Writer, p rules.Page) {
	if len(p.Rules) == 0 {
		fmt.Fprintf(w, "No rules on page %d (%d total)\n", p.Page, p.Total)
		return
	}
	fmt.Fprintf(w, "Rules %d-%d of %d\n", p.Start(), p.End(), p.Total)
	for _, r := range p.Rules {
		fmt.Fprintf(w, "%s :: %s [%s] conf=%v\n", r.Name, r.Pattern, strings.Join(r.Tags, ","), r.Confidence)
	}
}

// PrintRulesTable renders a rule listing page as a table.
func PrintRulesTable(w io.Writer, p rules.Page) error {
	if len(p.Rules) == 0 {
		fmt.Fprintf(w, "No rules on page %d (%d total)\n", p.Page, p.Total)
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("NAME", "TAGS", "CONF", "PATTERN")
	for _, r := range p.Rules {
		if err := table.Append(r.Name, strings.Join(r.Tags, ","), fmt.Sprintf("%.2f", r.Confidence), r.Pattern); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Rules %d-%d of %d\n", p.Start(), p.End(), p.Total)
	return nil
}
