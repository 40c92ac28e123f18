package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LocalNames are the repository-local config file names, in lookup order.
var LocalNames = []string{".lss.toml", ".lss.yml", ".lss.yaml"}

// ErrConfigNotFound is returned when no config file exists at the looked-up location.
var ErrConfigNotFound = errors.New("config not found")

// ParseError reports a config file that exists but cannot be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FileConfig is the on-disk configuration shape. Nil fields are unset and
// fall through to the next layer.
type FileConfig struct {
	Ignore           []string `toml:"ignore" yaml:"ignore,omitempty"`
	EntropyThreshold *float64 `toml:"entropy_threshold" yaml:"entropy_threshold,omitempty"`
	MinConfidence    *float64 `toml:"min_confidence" yaml:"min_confidence,omitempty"`
	IncludeTags      []string `toml:"include_tags" yaml:"include_tags,omitempty"`
	ExcludeTags      []string `toml:"exclude_tags" yaml:"exclude_tags,omitempty"`
	RulesFiles       []string `toml:"rules_files" yaml:"rules_files,omitempty"`
	Threads          *int     `toml:"threads" yaml:"threads,omitempty"`
	Include          *string  `toml:"include" yaml:"include,omitempty"`
	Exclude          *string  `toml:"exclude" yaml:"exclude,omitempty"`
	MaxBytes         *int64   `toml:"max_bytes" yaml:"max_bytes,omitempty"`
	DefaultExcludes  *bool    `toml:"default_excludes" yaml:"default_excludes,omitempty"`
	NoHistory        *bool    `toml:"no_history" yaml:"no_history,omitempty"`
	DedupeHistory    *bool    `toml:"dedupe_history" yaml:"dedupe_history,omitempty"`
}

// LoadFile reads a config file, choosing the decoder by extension: YAML for
// .yml/.yaml, TOML otherwise. Relative rules_files entries are resolved
// against the file's directory.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		_, err = toml.Decode(string(b), &cfg)
	}
	if err != nil {
		return FileConfig{}, &ParseError{Path: path, Err: err}
	}
	dir := filepath.Dir(path)
	for i, p := range cfg.RulesFiles {
		if p != "" && !filepath.IsAbs(p) {
			cfg.RulesFiles[i] = filepath.Join(dir, p)
		}
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, fmt.Errorf("%w: no local config in %s", ErrConfigNotFound, repoRoot)
}

// GlobalPath returns <user config dir>/lss/config.toml.
func GlobalPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfigNotFound, err)
	}
	return filepath.Join(base, "lss", "config.toml"), nil
}

// LoadGlobal loads the per-user config file.
func LoadGlobal() (FileConfig, error) {
	p, err := GlobalPath()
	if err != nil {
		return FileConfig{}, err
	}
	return LoadFile(p)
}

// Merge layers over on top of base. Set scalars in over win; ignore and
// rules_files lists are unioned with base entries first.
func Merge(base, over FileConfig) FileConfig {
	out := base
	out.Ignore = union(base.Ignore, over.Ignore)
	out.RulesFiles = union(base.RulesFiles, over.RulesFiles)
	if over.EntropyThreshold != nil {
		out.EntropyThreshold = over.EntropyThreshold
	}
	if over.MinConfidence != nil {
		out.MinConfidence = over.MinConfidence
	}
	if over.IncludeTags != nil {
		out.IncludeTags = over.IncludeTags
	}
	if over.ExcludeTags != nil {
		out.ExcludeTags = over.ExcludeTags
	}
	if over.Threads != nil {
		out.Threads = over.Threads
	}
	if over.Include != nil {
		out.Include = over.Include
	}
	if over.Exclude != nil {
		out.Exclude = over.Exclude
	}
	if over.MaxBytes != nil {
		out.MaxBytes = over.MaxBytes
	}
	if over.DefaultExcludes != nil {
		out.DefaultExcludes = over.DefaultExcludes
	}
	if over.NoHistory != nil {
		out.NoHistory = over.NoHistory
	}
	if over.DedupeHistory != nil {
		out.DedupeHistory = over.DedupeHistory
	}
	return out
}

func union(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Encode renders cfg as TOML.
func Encode(cfg FileConfig) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
