package lss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// errFindings signals a successful scan that should still exit 1 (--fail).
var errFindings = errors.New("findings present")

// rootCmd is the base Cobra command for the lss CLI. Without a subcommand it
// scans, so `lss`, `lss --scan` and `lss scan` behave the same.
var rootCmd = &cobra.Command{
	Use:           "lss",
	Short:         "Find secrets in local files and git history",
	Long:          "lss scans a directory tree and the history of every git repository inside it for secrets, fully offline.",
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScan,
}

func init() {
	addScanFlags(rootCmd)
	rootCmd.Flags().BoolVar(&flagScanShorthand, "scan", false, "scan (the default action; accepted for compatibility)")
	_ = rootCmd.Flags().MarkHidden("scan")
}

// Execute runs the lss CLI. It should be called by the main package.
func Execute() {
	os.Exit(executeArgs(os.Args[1:], os.Stdout, os.Stderr))
}

// executeArgs runs the CLI and maps the outcome to an exit code: 0 on
// success, 1 when --fail is set and findings were reported, 2 on error.
func executeArgs(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errFindings) {
			return 1
		}
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}
	return 0
}
