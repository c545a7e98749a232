package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/jigsawroom/internal/errors"
)

// startOptimizer runs PRAGMA optimize once per hour until ctx is done.
// See https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) startOptimizer(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		start := time.Now()
		if _, err := db.ReadWrite.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
			if ctx.Err() != nil {
				return
			}
			db.logger.LogAttrs(ctx, slog.LevelError, "optimize database",
				errors.SlogError(errors.Wrap(err, "optimize database")))
		} else {
			db.logger.LogAttrs(ctx, slog.LevelDebug, "optimized database", slog.Duration("duration", time.Since(start)))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
