// Package core is a small facade over the lss engine for programs that embed
// the scanner instead of shelling out to the CLI.
//
// Example:
//
//	cfg := core.DefaultConfig(".")
//	findings, err := core.Scan(ctx, cfg)
//	if err != nil { /* handle */ }
//	_ = core.MarshalFindings(os.Stdout, findings)
package core
