package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/myrjola/jigsawroom/internal/errors"
)

// migrateTo makes the database schema match schemaDefinition.
//
// The migration is declarative. The target schema is created in a scratch in-memory database and compared with
// the current one through sqlite_schema:
//
//  1. tables missing from the target are dropped,
//  2. new tables are created,
//  3. changed tables go through the 12-step procedure of https://www.sqlite.org/lang_altertable.html#otheralter,
//  4. indexes, triggers and views are dropped and recreated when their SQL differs.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/.
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) (err error) {
	target := fmt.Sprintf("file:schema-%s?mode=memory&cache=shared", uuid.NewString())
	targetDB, err := sql.Open(driverName, target)
	if err != nil {
		return errors.Wrap(err, "open schema target database")
	}
	defer func() {
		if closeErr := targetDB.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "close schema target database",
				errors.SlogError(errors.Wrap(closeErr, "close schema target database")))
		}
	}()
	if _, err = targetDB.ExecContext(ctx, schemaDefinition); err != nil {
		return errors.Wrap(err, "create schema target database")
	}

	// Pragmas and attachments are per connection, so the whole migration runs on one.
	conn, err := db.ReadWrite.Conn(ctx)
	if err != nil {
		return errors.Wrap(err, "acquire connection")
	}
	defer func() {
		_ = conn.Close()
	}()

	// Step 1: disable foreign key validation while tables are rebuilt.
	if _, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign key validation")
	}
	// Step 12: re-enable it.
	defer func() {
		if _, fkErr := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, errors.Wrap(fkErr, "re-enable foreign key validation"))
		}
	}()

	if _, err = conn.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", target); err != nil {
		return errors.Wrap(err, "attach schema target database")
	}
	defer func() {
		if _, detachErr := conn.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			err = errors.Join(err, errors.Wrap(detachErr, "detach schema target database"))
		}
	}()

	// Step 2: start a transaction.
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "start transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Steps 3 to 7.
	if err = db.migrateTables(ctx, tx); err != nil {
		return errors.Wrap(err, "migrate tables")
	}
	// Steps 8 and 9.
	if err = db.migrateSchemaObjects(ctx, tx); err != nil {
		return errors.Wrap(err, "migrate indexes, triggers and views")
	}
	// Step 10.
	if _, err = tx.ExecContext(ctx, "PRAGMA foreign_key_check"); err != nil {
		return errors.Wrap(err, "foreign key check")
	}
	// Step 11.
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	deletedTables, err := queryStrings(ctx, tx, `SELECT current.name
FROM main.sqlite_schema AS current
         LEFT JOIN schemaTarget.sqlite_schema AS target ON current.name = target.name AND current.type = target.type
WHERE current.type = 'table' AND target.type IS NULL AND current.name NOT LIKE 'sqlite_%';`)
	if err != nil {
		return errors.Wrap(err, "query deleted tables")
	}
	for _, table := range deletedTables {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", table))
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s;", quote(table))); err != nil {
			return errors.Wrap(err, "drop table", slog.String("table", table))
		}
	}

	newTableSQLs, err := queryStrings(ctx, tx, `SELECT target.sql
FROM schemaTarget.sqlite_schema AS target
         LEFT JOIN main.sqlite_schema AS current ON current.name = target.name AND current.type = target.type
WHERE target.type = 'table' AND current.type IS NULL AND target.name NOT LIKE 'sqlite_%';`)
	if err != nil {
		return errors.Wrap(err, "query new tables")
	}
	for _, query := range newTableSQLs {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("query", query))
		if _, err = tx.ExecContext(ctx, query); err != nil {
			return errors.Wrap(err, "create table", slog.String("query", query))
		}
	}

	changed, err := queryChangedTables(ctx, tx)
	if err != nil {
		return errors.Wrap(err, "query changed tables")
	}
	for _, table := range changed {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
			slog.String("table", table.name),
			slog.String("current_sql", table.currentSQL),
			slog.String("new_sql", table.newSQL))

		// Step 4: create the new table under a temporary name.
		tempName := table.name + "_migration_temp"
		tempSQL := strings.Replace(table.newSQL, table.name, tempName, 1)
		if _, err = tx.ExecContext(ctx, tempSQL); err != nil {
			return errors.Wrap(err, "create table with temporary name", slog.String("query", tempSQL))
		}

		// Step 5: copy the common columns.
		var columns []string
		if columns, err = queryStrings(ctx, tx, `SELECT '"' || target.name || '"'
FROM PRAGMA_TABLE_INFO(:table_name) AS current
         JOIN PRAGMA_TABLE_INFO(:table_name, 'schemaTarget') AS target ON target.name = current.name;`,
			sql.Named("table_name", table.name)); err != nil {
			return errors.Wrap(err, "query common columns", slog.String("table", table.name))
		}
		if len(columns) > 0 {
			common := strings.Join(columns, ", ")
			copySQL := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s;", //nolint:gosec // names come from schema
				quote(tempName), common, common, quote(table.name))
			if _, err = tx.ExecContext(ctx, copySQL); err != nil {
				return errors.Wrap(err, "copy data", slog.String("query", copySQL))
			}
		}

		// Step 6: drop the old table.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s;", quote(table.name))); err != nil {
			return errors.Wrap(err, "drop old table", slog.String("table", table.name))
		}

		// Step 7: rename the new table.
		if _, err = tx.ExecContext(ctx,
			fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", quote(tempName), quote(table.name))); err != nil {
			return errors.Wrap(err, "rename new table", slog.String("table", table.name))
		}
	}
	return nil
}

// migrateSchemaObjects drops indexes, triggers and views that are gone or changed and creates the missing ones.
// Automatic indexes have no SQL and are left alone.
func (db *Database) migrateSchemaObjects(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `SELECT current.type, current.name
FROM main.sqlite_schema AS current
         LEFT JOIN schemaTarget.sqlite_schema AS target ON current.name = target.name AND current.type = target.type
WHERE current.type IN ('index', 'trigger', 'view')
  AND current.sql IS NOT NULL
  AND (target.sql IS NULL OR current.sql <> target.sql);`)
	if err != nil {
		return errors.Wrap(err, "query stale objects")
	}
	type object struct{ kind, name string }
	var stale []object
	for rows.Next() {
		var o object
		if err = rows.Scan(&o.kind, &o.name); err != nil {
			_ = rows.Close()
			return errors.Wrap(err, "scan stale object")
		}
		stale = append(stale, o)
	}
	if err = errors.Join(rows.Err(), rows.Close()); err != nil {
		return errors.Wrap(err, "read stale objects")
	}
	for _, o := range stale {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping schema object",
			slog.String("type", o.kind), slog.String("name", o.name))
		if _, err = tx.ExecContext(ctx,
			fmt.Sprintf("DROP %s IF EXISTS %s;", strings.ToUpper(o.kind), quote(o.name))); err != nil {
			return errors.Wrap(err, "drop schema object", slog.String("name", o.name))
		}
	}

	created, err := queryStrings(ctx, tx, `SELECT target.sql
FROM schemaTarget.sqlite_schema AS target
         LEFT JOIN main.sqlite_schema AS current ON current.name = target.name AND current.type = target.type
WHERE target.type IN ('index', 'trigger', 'view')
  AND target.sql IS NOT NULL
  AND current.type IS NULL
ORDER BY CASE target.type WHEN 'view' THEN 2 ELSE 1 END;`)
	if err != nil {
		return errors.Wrap(err, "query new objects")
	}
	for _, query := range created {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating schema object", slog.String("query", query))
		if _, err = tx.ExecContext(ctx, query); err != nil {
			return errors.Wrap(err, "create schema object", slog.String("query", query))
		}
	}
	return nil
}

type changedTable struct {
	name       string
	currentSQL string
	newSQL     string
}

func queryChangedTables(ctx context.Context, tx *sql.Tx) ([]changedTable, error) {
	rows, err := tx.QueryContext(ctx, `SELECT current.name, current.sql, target.sql
FROM main.sqlite_schema AS current
         JOIN schemaTarget.sqlite_schema AS target ON current.name = target.name AND current.type = target.type
WHERE current.type = 'table' AND current.name NOT LIKE 'sqlite_%' AND current.sql <> target.sql;`)
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	var tables []changedTable
	for rows.Next() {
		var t changedTable
		if err = rows.Scan(&t.name, &t.currentSQL, &t.newSQL); err != nil {
			_ = rows.Close()
			return nil, errors.Wrap(err, "scan table")
		}
		tables = append(tables, t)
	}
	if err = errors.Join(rows.Err(), rows.Close()); err != nil {
		return nil, errors.Wrap(err, "read rows")
	}
	return tables, nil
}

// queryStrings returns the single column of the rows of query.
func queryStrings(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	var results []string
	for rows.Next() {
		var s string
		if err = rows.Scan(&s); err != nil {
			_ = rows.Close()
			return nil, errors.Wrap(err, "scan")
		}
		results = append(results, s)
	}
	if err = errors.Join(rows.Err(), rows.Close()); err != nil {
		return nil, errors.Wrap(err, "read rows")
	}
	return results, nil
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
