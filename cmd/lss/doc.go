// Package lss provides the command-line interface for the lss secret scanner.
// It configures subcommands (scan, rules, config), parses flags, merges config
// files, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/redactyl/lss/cmd/lss"
//	func main() { lss.Execute() }
package lss
