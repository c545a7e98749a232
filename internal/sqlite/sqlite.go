// Package sqlite opens the application database and keeps its schema in sync with schema.sql.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver.
	"github.com/myrjola/jigsawroom/internal/errors"
)

//go:embed schema.sql
var schemaDefinition string

const driverName = "sqlite3"

// Database holds a single connection read/write pool and a read-only pool to the same SQLite database.
type Database struct {
	ReadWrite *sqlx.DB
	ReadOnly  *sqlx.DB
	logger    *slog.Logger
}

// NewDatabase connects to the database at url, synchronizes the schema and starts the hourly optimizer that
// stops with ctx.
//
// The url is a path to the database file or ":memory:" for a private in-memory database.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	db, err := connect(url, logger)
	if err != nil {
		return nil, err
	}
	if err = db.migrateTo(ctx, schemaDefinition); err != nil {
		return nil, errors.Wrap(err, "synchronize schema")
	}
	go db.startOptimizer(ctx)
	return db, nil
}

// connect opens the two pools.
//
// Writes go through one connection so that SQLite never reports SQLITE_BUSY on write transactions. Reads use a
// separate pool, see https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995.
func connect(url string, logger *slog.Logger) (*Database, error) {
	// In-memory databases need shared cache so both pools see the same data, and a unique name so parallel tests
	// do not share it. See https://www.sqlite.org/inmemorydb.html.
	inMemoryConfig := ""
	if strings.Contains(url, ":memory:") {
		url = "jigsaw-" + uuid.NewString()
		inMemoryConfig = "&mode=memory&cache=shared"
	}
	// Underscore options are pragmas (https://www.sqlite.org/pragma.html), the rest URI parameters
	// (https://www.sqlite.org/uri.html).
	common := strings.Join([]string{
		"_journal_mode=wal",
		"_busy_timeout=5000",
		"_synchronous=normal",
		"_foreign_keys=on",
		"_temp_store=memory",
		"_mmap_size=30000000000",
	}, "&")
	readConfig := fmt.Sprintf("file:%s?mode=ro&_txlock=deferred&_query_only=true&%s%s", url, common, inMemoryConfig)
	readWriteConfig := fmt.Sprintf("file:%s?mode=rwc&_txlock=immediate&%s%s", url, common, inMemoryConfig)
	if inMemoryConfig != "" {
		// mode=ro is not allowed together with mode=memory.
		readConfig = fmt.Sprintf("file:%s?_txlock=deferred&_query_only=true&%s%s", url, common, inMemoryConfig)
		readWriteConfig = fmt.Sprintf("file:%s?_txlock=immediate&%s%s", url, common, inMemoryConfig)
	}

	readWrite, err := sqlx.Open(driverName, readWriteConfig)
	if err != nil {
		return nil, errors.Wrap(err, "open read-write database")
	}
	readWrite.SetMaxOpenConns(1)
	readWrite.SetMaxIdleConns(1)
	readWrite.SetConnMaxLifetime(time.Hour)
	readWrite.SetConnMaxIdleTime(time.Hour)

	readOnly, err := sqlx.Open(driverName, readConfig)
	if err != nil {
		return nil, errors.Wrap(err, "open read-only database")
	}
	maxReadConns := 10
	readOnly.SetMaxOpenConns(maxReadConns)
	readOnly.SetMaxIdleConns(maxReadConns)
	readOnly.SetConnMaxLifetime(time.Hour)
	readOnly.SetConnMaxIdleTime(time.Hour)

	return &Database{ReadWrite: readWrite, ReadOnly: readOnly, logger: logger}, nil
}

// SessionDB is the read/write handle for the session store.
func (db *Database) SessionDB() *sql.DB {
	return db.ReadWrite.DB
}

// Close closes both pools.
func (db *Database) Close() error {
	return errors.Join(
		errors.Wrap(db.ReadOnly.Close(), "close read-only database"),
		errors.Wrap(db.ReadWrite.Close(), "close read-write database"),
	)
}
