package lss

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/redactyl/lss/internal/config"
	"github.com/redactyl/lss/internal/engine"
)

var (
	cfgOutput          string
	cfgForce           bool
	cfgEntropy         float64
	cfgMinConfidence   float64
	cfgMaxBytes        int64
	cfgDefaultExcludes bool
	cfgNoHistory       bool
	cfgIgnore          []string
)

const configHeader = "# lss configuration. CLI flags override these values.\n"

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .lss.toml (or .lss.yml) with the given options",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".lss.toml", "output file path; .yml/.yaml writes YAML")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	initCmd.Flags().Float64Var(&cfgEntropy, "entropy-threshold", engine.DefaultEntropyThreshold, "minimum snippet entropy")
	initCmd.Flags().Float64Var(&cfgMinConfidence, "min-confidence", 0, "minimum combined confidence")
	initCmd.Flags().Int64Var(&cfgMaxBytes, "max-bytes", 0, "skip files larger than this (0 = no limit)")
	initCmd.Flags().BoolVar(&cfgDefaultExcludes, "default-excludes", false, "skip common vendor, build and lock files")
	initCmd.Flags().BoolVar(&cfgNoHistory, "no-history", false, "do not scan git history")
	initCmd.Flags().StringArrayVar(&cfgIgnore, "ignore", nil, "ignore pattern (repeatable)")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if !cfgForce {
		if _, err := os.Stat(cfgOutput); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	fc := config.FileConfig{
		Ignore:           cfgIgnore,
		EntropyThreshold: floatPtr(cfgEntropy),
		MinConfidence:    floatPtr(cfgMinConfidence),
		Include:          strPtr(""),
		Exclude:          strPtr(""),
		MaxBytes:         int64Ptr(cfgMaxBytes),
		DefaultExcludes:  boolPtr(cfgDefaultExcludes),
		NoHistory:        boolPtr(cfgNoHistory),
		DedupeHistory:    boolPtr(false),
	}

	var b []byte
	var err error
	switch strings.ToLower(filepath.Ext(cfgOutput)) {
	case ".yml", ".yaml":
		b, err = yaml.Marshal(fc)
	default:
		b, err = config.Encode(fc)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, append([]byte(configHeader), b...), 0o644); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}
