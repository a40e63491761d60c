package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"mmove/internal/config"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_mysql.sql
var mysqlSchema string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

const workItemsTable = "work_items"

var expectedColumns = []string{
	"id",
	"path_key",
	"collection_root",
	"path",
	"depth",
	"is_dir",
	"genre",
	"source_year",
	"year_state",
	"year",
	"moved",
	"destination",
	"created_at",
	"updated_at",
	"moved_at",
}

// dialect captures the SQL that differs between the supported drivers.
type dialect struct {
	name         string
	driver       string
	schema       string
	insertIgnore string
	tableExists  string
	columns      string
	integrity    func(ctx context.Context, db *sql.DB) (bool, error)
}

var sqliteDialect = dialect{
	name:         config.DriverSQLite,
	driver:       "sqlite",
	schema:       sqliteSchema,
	insertIgnore: "INSERT OR IGNORE INTO",
	tableExists:  "SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?",
	columns:      "SELECT name FROM pragma_table_info(?)",
	integrity: func(ctx context.Context, db *sql.DB) (bool, error) {
		var result string
		if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
			return false, err
		}
		return strings.EqualFold(result, "ok"), nil
	},
}

var mysqlDialect = dialect{
	name:         config.DriverMySQL,
	driver:       "mysql",
	schema:       mysqlSchema,
	insertIgnore: "INSERT IGNORE INTO",
	tableExists:  "SELECT COUNT(1) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?",
	columns:      "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ?",
	integrity: func(ctx context.Context, db *sql.DB) (bool, error) {
		rows, err := db.QueryContext(ctx, "CHECK TABLE "+workItemsTable)
		if err != nil {
			return false, err
		}
		defer rows.Close()
		ok := true
		for rows.Next() {
			var table, op, msgType, msgText string
			if err := rows.Scan(&table, &op, &msgType, &msgText); err != nil {
				return false, err
			}
			if strings.EqualFold(msgType, "status") && !strings.EqualFold(msgText, "OK") {
				ok = false
			}
			if strings.EqualFold(msgType, "error") {
				ok = false
			}
		}
		return ok, rows.Err()
	},
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "", config.DriverSQLite:
		return sqliteDialect, nil
	case config.DriverMySQL:
		return mysqlDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported ledger driver %q", driver)
	}
}

// statements splits a schema file into individual statements so drivers
// without multi-statement support can execute it.
func (d dialect) statements() []string {
	parts := strings.Split(d.schema, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	if err := s.db.QueryRowContext(ctx, s.dialect.tableExists, "schema_version").Scan(&tableExists); err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return s.createSchema(ctx)
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete the ledger database or point store.dsn elsewhere)",
			ErrSchemaMismatch, version, schemaVersion)
	}

	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range s.dialect.statements() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
