package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/setlistify/internal/repositories"
	"github.com/urfave/cli/v3"
)

// CacheStats prints the number of cached searches.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openCache()
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer db.Close()

	count, err := repositories.NewArtistCacheRepository(db).Count(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Cached searches: %d\n", count)
	return r.writePlain("TTL: %s\n", r.config.Search.CacheTTL())
}

// CachePurge removes expired searches, or all of them with --all.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openCache()
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer db.Close()

	ttl := r.config.Search.CacheTTL()
	if cmd.Bool("all") {
		ttl = 0
	}

	removed, err := repositories.NewArtistCacheRepository(db).Purge(ctx, ttl)
	if err != nil {
		return err
	}

	r.logger.Info("cache purged", "removed", removed)
	return r.writePlain("✓ Removed %d cached searches\n", removed)
}
