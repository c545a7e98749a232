package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/myrjola/jigsawroom/internal/sqlite"
	"github.com/myrjola/jigsawroom/internal/testhelpers"
)

// Opens a copy of the production database, which migrates it, and checks that the data survived.
func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds
	defer cancel()

	if sqliteURL, ok = os.LookupEnv("JIGSAW_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "JIGSAW_SQLITE_URL not set")
		os.Exit(1) //nolint:gocritic // cancel is not needed when exiting
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	for _, table := range []string{"sessions", "chat_messages", "answer_attempts"} {
		var count int
		row := db.ReadOnly.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table) //nolint:gosec // fixed table names
		if err = row.Scan(&count); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "error counting rows",
				slog.String("table", table), errors.SlogError(err))
			os.Exit(1)
		}
		logger.LogAttrs(ctx, slog.LevelInfo, "row count", slog.String("table", table), slog.Int("count", count))
	}

	var messages int
	if err = db.ReadOnly.GetContext(ctx, &messages, `SELECT COUNT(*) FROM chat_messages`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching message count", errors.SlogError(err))
		os.Exit(1)
	}
	if messages == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no chat messages found, something is likely wrong")
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
}
