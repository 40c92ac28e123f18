// Package config loads lss configuration from the global config.toml and
// repository-local .lss.toml/.lss.yml files. It is internal; CLI code merges
// the layers with flags and maps the result into engine configuration.
package config
