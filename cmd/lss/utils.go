package lss

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// The pick helpers resolve CLI > config > default. A flag only wins when it
// was set explicitly, so an explicit zero still overrides config.

func pickString(cmd *cobra.Command, name, cli string, cfg *string) string {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if cfg != nil {
		return *cfg
	}
	return cli
}

func pickInt(cmd *cobra.Command, name string, cli int, cfg *int) int {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if cfg != nil {
		return *cfg
	}
	return cli
}

func pickInt64(cmd *cobra.Command, name string, cli int64, cfg *int64) int64 {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if cfg != nil {
		return *cfg
	}
	return cli
}

func pickFloat(cmd *cobra.Command, name string, cli float64, cfg *float64) float64 {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if cfg != nil {
		return *cfg
	}
	return cli
}

func pickBool(cmd *cobra.Command, name string, cli bool, cfg *bool) bool {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if cfg != nil {
		return *cfg
	}
	return cli
}

// pickTags parses a comma-separated tag flag, falling back to config.
func pickTags(cmd *cobra.Command, name, cli string, cfg []string) []string {
	if cmd.Flags().Changed(name) || cfg == nil {
		return splitList(cli)
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// colorEnabled reports whether ANSI colors should be written to w.
func colorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func strPtr(s string) *string     { return &s }
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
