package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/redactyl/lss/internal/ignore"
	"github.com/redactyl/lss/internal/rules"
	"github.com/redactyl/lss/internal/scanner"
	"github.com/redactyl/lss/internal/types"
)

// DefaultEntropyThreshold is the minimum snippet entropy a finding needs to be reported.
const DefaultEntropyThreshold = 3.5

var (
	// ErrRootNotFound is returned when the scan root does not exist.
	ErrRootNotFound = errors.New("scan root not found")
	// ErrRootNotDir is returned when the scan root is not a directory.
	ErrRootNotDir = errors.New("scan root is not a directory")
)

// Config controls scanning behavior including scope, performance, and filters.
// It is read-only once a scan starts.
type Config struct {
	Root             string
	Rules            []rules.Rule
	Ignore           *ignore.Set
	EntropyThreshold float64
	MinConfidence    float64
	IncludeTags      []string
	ExcludeTags      []string
	IncludeGlobs     string
	ExcludeGlobs     string
	// MaxBytes skips files and blobs larger than this; 0 means no limit.
	MaxBytes        int64
	Threads         int
	DefaultExcludes bool
	NoHistory       bool
	DedupeHistory   bool
	Logger          *zap.Logger
	Progress        func()
}

// DefaultConfig returns a configuration with the bundled rules and default thresholds.
func DefaultConfig(root string) Config {
	return Config{
		Root:             root,
		Rules:            rules.Default(),
		Ignore:           ignore.NewSet(),
		EntropyThreshold: DefaultEntropyThreshold,
	}
}

func (c Config) threads() int {
	if c.Threads <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Threads
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Warning is a unit of work that failed without aborting the scan.
type Warning struct {
	Unit string
	Err  error
}

func (w Warning) String() string { return fmt.Sprintf("%s: %v", w.Unit, w.Err) }

// Result contains findings and basic scan statistics.
type Result struct {
	Findings       []types.Finding
	FilesScanned   int
	ReposScanned   int
	CommitsScanned int
	BlobsScanned   int
	Warnings       []Warning
	Duration       time.Duration
}

// Scan runs a scan and returns only findings (without stats).
func Scan(ctx context.Context, cfg Config) ([]types.Finding, error) {
	res, err := ScanWithStats(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return res.Findings, nil
}

// collector gathers outcomes from concurrent workers.
type collector struct {
	mu       sync.Mutex
	log      *zap.Logger
	findings []types.Finding
	warnings []Warning
	files    int
	repos    int
	commits  int
	blobs    int
}

func (c *collector) add(fs []types.Finding) {
	if len(fs) == 0 {
		return
	}
	c.mu.Lock()
	c.findings = append(c.findings, fs...)
	c.mu.Unlock()
}

func (c *collector) warn(unit string, err error) {
	c.log.Warn("skipped", zap.String("unit", unit), zap.Error(err))
	c.mu.Lock()
	c.warnings = append(c.warnings, Warning{Unit: unit, Err: err})
	c.mu.Unlock()
}

func (c *collector) count(fn func(c *collector)) {
	c.mu.Lock()
	fn(c)
	c.mu.Unlock()
}

// ValidateRoot checks that root exists and is a directory.
func ValidateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}
	return nil
}

// ResolveRoot validates root and resolves symlinks in it, so traversals that
// do not follow links still descend into a linked root.
func ResolveRoot(root string) (string, error) {
	if err := ValidateRoot(root); err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	return resolved, nil
}

// ScanWithStats runs the working-tree and history scans concurrently, then
// filters and orders the findings.
func ScanWithStats(ctx context.Context, cfg Config) (Result, error) {
	var result Result
	root, err := ResolveRoot(cfg.Root)
	if err != nil {
		return result, err
	}
	cfg.Root = root
	if cfg.Ignore == nil {
		cfg.Ignore = ignore.NewSet()
	}
	log := cfg.logger()
	scn := scanner.New(cfg.Rules)
	col := &collector{log: log}
	started := time.Now()

	log.Debug("scan started",
		zap.String("root", cfg.Root),
		zap.Int("rules", scn.Rules()),
		zap.Int("ignore_patterns", cfg.Ignore.Len()),
		zap.Int("threads", cfg.threads()),
		zap.Bool("history", !cfg.NoHistory),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return Walk(gctx, cfg, cfg.Ignore, func(rel string, data []byte) {
			col.add(scn.ScanText(types.Location{Path: rel}, string(data)))
			col.count(func(c *collector) { c.files++ })
			if cfg.Progress != nil {
				cfg.Progress()
			}
		}, col.warn)
	})
	if !cfg.NoHistory {
		g.Go(func() error {
			return scanHistory(gctx, cfg, scn, col)
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	findings := applyFilters(col.findings, cfg)
	sortFindings(findings)
	if cfg.DedupeHistory {
		findings = dedupeHistory(findings)
	}
	if findings == nil {
		findings = []types.Finding{}
	}

	result.Findings = findings
	result.FilesScanned = col.files
	result.ReposScanned = col.repos
	result.CommitsScanned = col.commits
	result.BlobsScanned = col.blobs
	result.Warnings = col.warnings
	result.Duration = time.Since(started)

	log.Debug("scan finished",
		zap.Int("findings", len(findings)),
		zap.Int("files", result.FilesScanned),
		zap.Int("repos", result.ReposScanned),
		zap.Int("commits", result.CommitsScanned),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}
