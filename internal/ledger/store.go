package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"mmove/internal/config"
	"mmove/internal/services"
)

// Store manages ledger persistence.
type Store struct {
	db      *sql.DB
	dialect dialect
	// location is the sqlite file path or a password-free description of the
	// mysql server, for diagnostics.
	location string
	now      func() time.Time
}

const (
	sqliteBusyCode          = 5
	mysqlDeadlockCode       = 1213
	mysqlLockWaitCode       = 1205
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	pingTimeout             = 5 * time.Second
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlockCode || myErr.Number == mysqlLockWaitCode
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open connects to the ledger configured in cfg.Store and prepares the schema.
// Connection failures are tagged with services.ErrStore.
func Open(cfg *config.Config) (*Store, error) {
	d, err := dialectFor(cfg.Store.Driver)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "ledger", "open", "", err)
	}

	var (
		db       *sql.DB
		location string
	)
	switch d.name {
	case config.DriverMySQL:
		db, location, err = openMySQL(cfg.Store.DSN)
	default:
		db, location, err = openSQLite(cfg.Store.DSN, cfg.Store.BusyTimeoutMillis)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "ledger", "open", location, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrStore, "ledger", "ping", location, err)
	}

	store := &Store{db: db, dialect: d, location: location, now: time.Now}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrStore, "ledger", "init schema", location, err)
	}

	return store, nil
}

func openSQLite(path string, busyTimeoutMillis int) (*sql.DB, string, error) {
	if path == "" {
		return nil, path, errors.New("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, path, fmt.Errorf("ensure ledger directory: %w", err)
	}
	db, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, path, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps pragmas in effect for every statement.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMillis),
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, path, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, path, nil
}

func openMySQL(dsn string) (*sql.DB, string, error) {
	mcfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, "mysql", fmt.Errorf("parse mysql dsn: %w", err)
	}
	location := fmt.Sprintf("mysql://%s/%s", mcfg.Addr, mcfg.DBName)
	if mcfg.DBName == "" {
		return nil, location, errors.New("mysql dsn must name a database")
	}
	mcfg.MultiStatements = false
	connector, err := mysql.NewConnector(mcfg)
	if err != nil {
		return nil, location, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)
	return db, location, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver returns the configured driver name.
func (s *Store) Driver() string {
	return s.dialect.name
}

// Location describes where the ledger lives, without credentials.
func (s *Store) Location() string {
	return s.location
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ensureContext(ctx), pingTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// RedactDSN hides the password of a mysql DSN for display. Other drivers and
// unparseable values are returned unchanged.
func RedactDSN(driver, dsn string) string {
	if driver != config.DriverMySQL || dsn == "" {
		return dsn
	}
	mcfg, err := mysql.ParseDSN(dsn)
	if err != nil || mcfg.Passwd == "" {
		return dsn
	}
	mcfg.Passwd = "xxxxx"
	return mcfg.FormatDSN()
}
