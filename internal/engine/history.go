package engine

import (
	"context"
	"path"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/redactyl/lss/internal/git"
	"github.com/redactyl/lss/internal/scanner"
	"github.com/redactyl/lss/internal/types"
)

// scanHistory scans every commit reachable from HEAD in each repository under
// the root. Repositories are walked one at a time since a go-git handle is not
// safe for concurrent use; the commits of a repository are scanned on the pool.
func scanHistory(ctx context.Context, cfg Config, scn *scanner.Scanner, col *collector) error {
	dirs, err := git.Discover(cfg.Root)
	if err != nil {
		col.warn(".", err)
		return nil
	}
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		repoRel := relSlash(cfg.Root, dir)
		if repoRel != "." && ignoredRepo(repoRel, cfg) {
			continue
		}
		if err := scanRepo(ctx, cfg, scn, col, dir, repoRel); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			col.warn(repoRel, err)
		}
	}
	return nil
}

func ignoredRepo(repoRel string, cfg Config) bool {
	return cfg.Ignore.Match(repoRel + "/")
}

// scopedPath maps a blob path to the scan-root relative path used for
// ignore and glob matching.
func scopedPath(repoRel, blobPath string) string {
	if repoRel == "." || repoRel == "" {
		return blobPath
	}
	return path.Join(repoRel, blobPath)
}

func scanRepo(ctx context.Context, cfg Config, scn *scanner.Scanner, col *collector, dir, repoRel string) error {
	repo, err := git.Open(dir)
	if err != nil {
		return err
	}
	repo.SkipBlob = func(blobPath string, size int64) bool {
		if cfg.MaxBytes > 0 && size > cfg.MaxBytes {
			return true
		}
		return !selectPath(scopedPath(repoRel, blobPath), cfg, cfg.Ignore)
	}
	head, err := repo.Head()
	if err != nil {
		return err
	}
	col.count(func(c *collector) { c.repos++ })
	log := cfg.logger().With(zap.String("repo", repoRel))
	log.Debug("scanning history",
		zap.String("dir", filepath.Clean(dir)),
		zap.String("head", git.ShortHash(head.Commit)),
		zap.String("branch", head.Branch),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.threads())
	walkErr := repo.WalkHistory(gctx, func(c git.Commit) error {
		g.Go(func() error {
			blobs := 0
			for _, b := range c.Blobs {
				if scanner.HasIgnoreFileDirective([]byte(b.Content)) || !scanner.IsText(b.Path, []byte(b.Content)) {
					continue
				}
				blobs++
				loc := types.Location{Repo: repoRel, Commit: c.Hash, Path: b.Path}
				col.add(scn.ScanText(loc, b.Content))
			}
			col.count(func(cc *collector) {
				cc.commits++
				cc.blobs += blobs
			})
			return nil
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return walkErr
}
