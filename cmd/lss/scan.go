package lss

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/redactyl/lss/internal/config"
	"github.com/redactyl/lss/internal/engine"
	"github.com/redactyl/lss/internal/ignore"
	"github.com/redactyl/lss/internal/logging"
	"github.com/redactyl/lss/internal/report"
	"github.com/redactyl/lss/internal/rules"
)

var (
	flagPath             string
	flagFormat           string
	flagEntropyThreshold float64
	flagIgnoreFile       string
	flagRulesFiles       []string
	flagIncludeTags      string
	flagExcludeTags      string
	flagMinConfidence    float64
	flagConfig           string
	flagThreads          int
	flagInclude          string
	flagExclude          string
	flagMaxBytes         int64
	flagDefaultExcludes  bool
	flagNoHistory        bool
	flagDedupeHistory    bool
	flagNoColor          bool
	flagVerbose          bool
	flagQuiet            bool
	flagLogFormat        string
	flagFail             bool
	flagScanShorthand    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan files and git history for secrets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	addScanFlags(scanCmd)
	rootCmd.AddCommand(scanCmd)
}

// addScanFlags registers the scan flags on cmd. The root command and the scan
// subcommand share the same backing variables.
func addScanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&flagPath, "path", "p", ".", "directory to scan")
	f.StringVarP(&flagFormat, "format", "f", "human", "output format: human|table|json|sarif")
	f.Float64Var(&flagEntropyThreshold, "entropy-threshold", engine.DefaultEntropyThreshold, "minimum snippet entropy (0 disables the filter)")
	f.StringVar(&flagIgnoreFile, "ignore-file", "", "additional ignore file")
	f.StringArrayVar(&flagRulesFiles, "rules-file", nil, "additional rules file (repeatable)")
	f.StringVar(&flagIncludeTags, "include-tags", "", "comma-separated tags; keep only findings with at least one")
	f.StringVar(&flagExcludeTags, "exclude-tags", "", "comma-separated tags; drop findings with any")
	f.Float64Var(&flagMinConfidence, "min-confidence", 0, "drop findings below this combined confidence")
	f.StringVar(&flagConfig, "config", "", "explicit config file (TOML or YAML)")
	f.IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	f.StringVar(&flagInclude, "include", "", "comma-separated globs to include")
	f.StringVar(&flagExclude, "exclude", "", "comma-separated globs to exclude")
	f.Int64Var(&flagMaxBytes, "max-bytes", 0, "skip files larger than this (0 = no limit)")
	f.BoolVar(&flagDefaultExcludes, "default-excludes", false, "skip common vendor, build and lock files")
	f.BoolVar(&flagNoHistory, "no-history", false, "do not scan git history")
	f.BoolVar(&flagDedupeHistory, "dedupe-history", false, "report a history finding once instead of per commit")
	f.BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	f.BoolVar(&flagQuiet, "quiet", false, "only log errors")
	f.StringVar(&flagLogFormat, "log-format", "console", "log format: console|json")
	f.BoolVar(&flagFail, "fail", false, "exit 1 when findings are reported")
}

func validFormat(f string) bool {
	switch f {
	case "human", "table", "json", "sarif":
		return true
	}
	return false
}

// loadConfig layers global, local and explicit config files. Missing global
// and local files are not errors; a missing explicit file is.
func loadConfig(root string) (config.FileConfig, error) {
	var merged config.FileConfig
	if gcfg, err := config.LoadGlobal(); err == nil {
		merged = gcfg
	} else if !errors.Is(err, config.ErrConfigNotFound) {
		return merged, err
	}
	if lcfg, err := config.LoadLocal(root); err == nil {
		merged = config.Merge(merged, lcfg)
	} else if !errors.Is(err, config.ErrConfigNotFound) {
		return merged, err
	}
	if flagConfig != "" {
		xcfg, err := config.LoadFile(flagConfig)
		if err != nil {
			return merged, err
		}
		merged = config.Merge(merged, xcfg)
	}
	return merged, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	if !validFormat(flagFormat) {
		return fmt.Errorf("unknown format %q (want human, table, json or sarif)", flagFormat)
	}
	path := flagPath
	if len(args) == 1 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	abs, err = engine.ResolveRoot(abs)
	if err != nil {
		return err
	}

	log := logging.New(logging.Options{
		Verbose: flagVerbose,
		Quiet:   flagQuiet,
		Format:  flagLogFormat,
		Output:  cmd.ErrOrStderr(),
	})
	defer func() { _ = log.Sync() }()

	fc, err := loadConfig(abs)
	if err != nil {
		return err
	}

	rs, err := rules.Load(append(append([]string{}, fc.RulesFiles...), flagRulesFiles...)...)
	if err != nil {
		return err
	}

	ign, problems, err := ignore.Resolve(ignore.Options{
		Root:    abs,
		Config:  fc.Ignore,
		CLIFile: flagIgnoreFile,
	})
	if err != nil {
		return err
	}
	for _, p := range problems {
		log.Warn("ignore file unreadable", zap.String("path", p.Path), zap.Error(p.Err))
	}
	for _, p := range ign.Patterns() {
		log.Debug("ignore pattern", zap.String("pattern", p.Value), zap.Stringer("source", p.Source), zap.String("origin", p.Origin))
	}

	cfg := engine.Config{
		Root:             abs,
		Rules:            rs,
		Ignore:           ign,
		EntropyThreshold: pickFloat(cmd, "entropy-threshold", flagEntropyThreshold, fc.EntropyThreshold),
		MinConfidence:    pickFloat(cmd, "min-confidence", flagMinConfidence, fc.MinConfidence),
		IncludeTags:      pickTags(cmd, "include-tags", flagIncludeTags, fc.IncludeTags),
		ExcludeTags:      pickTags(cmd, "exclude-tags", flagExcludeTags, fc.ExcludeTags),
		IncludeGlobs:     pickString(cmd, "include", flagInclude, fc.Include),
		ExcludeGlobs:     pickString(cmd, "exclude", flagExclude, fc.Exclude),
		MaxBytes:         pickInt64(cmd, "max-bytes", flagMaxBytes, fc.MaxBytes),
		Threads:          pickInt(cmd, "threads", flagThreads, fc.Threads),
		DefaultExcludes:  pickBool(cmd, "default-excludes", flagDefaultExcludes, fc.DefaultExcludes),
		NoHistory:        pickBool(cmd, "no-history", flagNoHistory, fc.NoHistory),
		DedupeHistory:    pickBool(cmd, "dedupe-history", flagDedupeHistory, fc.DedupeHistory),
		Logger:           log,
	}

	stderr := cmd.ErrOrStderr()
	human := flagFormat == "human" || flagFormat == "table"
	if human && !flagQuiet {
		_, _ = fmt.Fprintf(stderr, "Scanning %s with %d rules...\n", abs, len(rs))
		if f, ok := stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			attachProgress(&cfg, stderr)
		}
	}

	res, err := engine.ScanWithStats(cmd.Context(), cfg)
	if cfg.Progress != nil {
		_, _ = fmt.Fprintln(stderr)
	}
	if err != nil {
		return err
	}

	if err := writeFindings(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if flagFail && len(res.Findings) > 0 {
		return errFindings
	}
	return nil
}

// attachProgress prints a [done/total] counter for working-tree files.
func attachProgress(cfg *engine.Config, w io.Writer) {
	total, err := engine.CountTargets(*cfg)
	if err != nil || total == 0 {
		return
	}
	var done atomic.Int64
	cfg.Progress = func() {
		n := done.Add(1)
		pct := float64(n) / float64(total) * 100
		_, _ = fmt.Fprintf(w, "\r[%d/%d] %.0f%%", n, total, pct)
	}
}

func writeFindings(w io.Writer, res engine.Result) error {
	opts := report.PrintOptions{
		NoColor:        !colorEnabled(w, flagNoColor),
		Duration:       res.Duration,
		FilesScanned:   res.FilesScanned,
		ReposScanned:   res.ReposScanned,
		CommitsScanned: res.CommitsScanned,
		Warnings:       len(res.Warnings),
	}
	switch flagFormat {
	case "json":
		return report.WriteJSON(w, res.Findings)
	case "sarif":
		return report.WriteSARIF(w, res.Findings, version)
	case "table":
		return report.PrintTable(w, res.Findings, opts)
	default:
		report.PrintText(w, res.Findings, opts)
		return nil
	}
}
