package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/redactyl/lss/internal/ignore"
	"github.com/redactyl/lss/internal/scanner"
)

// Walk traverses the working tree and invokes handle for each eligible file.
// Files are read and handled on a pool of cfg.Threads workers, so handle must
// be safe for concurrent use. Unreadable files and directories are reported
// through warn (which may be nil) and skipped.
func Walk(ctx context.Context, cfg Config, ign *ignore.Set, handle func(rel string, data []byte), warn func(unit string, err error)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if warn == nil {
		warn = func(string, error) {}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.threads())

	walkErr := filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if cerr := gctx.Err(); cerr != nil {
			return cerr
		}
		rel := relSlash(cfg.Root, p)
		if err != nil {
			if p != cfg.Root {
				warn(rel, err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p == cfg.Root {
				return nil
			}
			if skipDir(rel, d.Name(), cfg, ign) {
				return filepath.SkipDir
			}
			return nil
		}
		// symlinks, sockets, devices
		if !d.Type().IsRegular() {
			return nil
		}
		if !selectPath(rel, cfg, ign) {
			return nil
		}
		if cfg.MaxBytes > 0 {
			info, err := d.Info()
			if err != nil {
				warn(rel, err)
				return nil
			}
			if info.Size() > cfg.MaxBytes {
				return nil
			}
		}
		g.Go(func() error {
			data, err := os.ReadFile(p)
			if err != nil {
				warn(rel, fmt.Errorf("read: %w", err))
				return nil
			}
			if scanner.HasIgnoreFileDirective(data) || !scanner.IsText(rel, data) {
				return nil
			}
			handle(rel, data)
			return nil
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if walkErr != nil {
		return walkErr
	}
	return ctx.Err()
}

func skipDir(rel, name string, cfg Config, ign *ignore.Set) bool {
	if name == ".git" {
		return true
	}
	if cfg.DefaultExcludes && isDefaultDirExcluded(name) {
		return true
	}
	// every descendant path contains rel + "/"
	return ign.Match(rel + "/")
}

// selectPath applies the path-only filters shared by the walker, the history
// scanner and CountTargets.
func selectPath(rel string, cfg Config, ign *ignore.Set) bool {
	// gitfile of a submodule or linked worktree
	if rel == ".git" || strings.HasSuffix(rel, "/.git") {
		return false
	}
	if ign.Match(rel) {
		return false
	}
	if !allowedByGlobs(rel, cfg) {
		return false
	}
	if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
		return false
	}
	return true
}

func relSlash(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		rel = p
	}
	return filepath.ToSlash(rel)
}

// CountTargets estimates the number of working-tree files a scan of cfg will
// read. It applies the path and size filters but does not open files.
func CountTargets(cfg Config) (int, error) {
	root, err := ResolveRoot(cfg.Root)
	if err != nil {
		return 0, err
	}
	cfg.Root = root
	ign := cfg.Ignore
	count := 0
	_ = filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel := relSlash(cfg.Root, p)
		if d.IsDir() {
			if p != cfg.Root && skipDir(rel, d.Name(), cfg, ign) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !selectPath(rel, cfg, ign) {
			return nil
		}
		if cfg.MaxBytes > 0 {
			if info, err := d.Info(); err == nil && info.Size() > cfg.MaxBytes {
				return nil
			}
		}
		count++
		return nil
	})
	return count, nil
}
