package lss

import (
	"github.com/spf13/cobra"

	"github.com/redactyl/lss/internal/report"
	"github.com/redactyl/lss/internal/rules"
)

var (
	flagRulesJSON      bool
	flagRulesTable     bool
	flagRulesPage      int
	flagRulesPerPage   int
	flagRulesListFiles []string
)

func init() {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect detection rules",
	}
	listCmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List the default rules plus any rules files, optionally filtered by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := rules.Load(flagRulesListFiles...)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				rs = rules.Filter(rs, args[0])
			}
			page := rules.Paginate(rs, flagRulesPage, flagRulesPerPage)
			out := cmd.OutOrStdout()
			switch {
			case flagRulesJSON:
				return report.WriteRulesJSON(out, page)
			case flagRulesTable:
				return report.PrintRulesTable(out, page)
			default:
				report.PrintRules(out, page)
				return nil
			}
		},
	}
	listCmd.Flags().BoolVar(&flagRulesJSON, "json", false, "print JSON")
	listCmd.Flags().BoolVar(&flagRulesTable, "table", false, "print a table")
	listCmd.Flags().IntVar(&flagRulesPage, "page", 1, "page number (from 1)")
	listCmd.Flags().IntVar(&flagRulesPerPage, "per-page", rules.DefaultPerPage, "rules per page")
	listCmd.Flags().StringArrayVar(&flagRulesListFiles, "rules-file", nil, "additional rules file (repeatable)")
	listCmd.MarkFlagsMutuallyExclusive("json", "table")

	rulesCmd.AddCommand(listCmd)
	rootCmd.AddCommand(rulesCmd)
}
