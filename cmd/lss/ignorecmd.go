package lss

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/redactyl/lss/internal/ignore"
)

var ignoreDir string

func init() {
	ignCmd := &cobra.Command{Use: "ignore", Short: "Manage .lssignore patterns"}
	addCmd := &cobra.Command{
		Use:   "add <pattern>...",
		Short: "Append literal substring patterns to .lssignore",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, p := range args {
				added, err := ignore.Append(ignoreDir, p)
				if err != nil {
					return err
				}
				if added {
					_, _ = fmt.Fprintln(out, "added", p)
				} else {
					_, _ = fmt.Fprintln(out, "already present", p)
				}
			}
			_, _ = fmt.Fprintln(out, "Wrote", filepath.Join(ignoreDir, ignore.FileName))
			return nil
		},
	}
	addCmd.Flags().StringVarP(&ignoreDir, "path", "p", ".", "directory holding the .lssignore file")
	ignCmd.AddCommand(addCmd)
	rootCmd.AddCommand(ignCmd)
}
