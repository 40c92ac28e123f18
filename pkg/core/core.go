package core

import (
	"context"

	"github.com/redactyl/lss/internal/engine"
	"github.com/redactyl/lss/internal/rules"
	"github.com/redactyl/lss/internal/types"
)

// Type aliases keep the public surface on a stable import path.
type (
	Config   = engine.Config
	Result   = engine.Result
	Finding  = types.Finding
	Location = types.Location
	Rule     = rules.Rule
)

// DefaultConfig returns a configuration for root with the bundled rules.
func DefaultConfig(root string) Config { return engine.DefaultConfig(root) }

// Scan runs a scan and returns the filtered, ordered findings.
func Scan(ctx context.Context, cfg Config) ([]Finding, error) {
	return engine.Scan(ctx, cfg)
}

// ScanWithStats runs a scan and also returns counters and warnings.
func ScanWithStats(ctx context.Context, cfg Config) (Result, error) {
	return engine.ScanWithStats(ctx, cfg)
}

// DefaultRules returns the bundled rule set.
func DefaultRules() []Rule { return rules.Default() }

// ParseRules parses rules in Name::Pattern[::tags[::confidence]] form.
func ParseRules(text string) ([]Rule, error) { return rules.ParseString(text, "inline") }

// ParseLocationID splits a location id back into its parts.
func ParseLocationID(id string) Location { return types.ParseLocationID(id) }
