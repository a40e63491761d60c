package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Stats counts items under root by year state and move status. An empty root
// counts every collection.
func (s *Store) Stats(ctx context.Context, root string) (Stats, error) {
	query := `SELECT year_state, moved,
            CASE WHEN year_state = ? AND moved = 0 AND year <> source_year
                 AND NOT (is_dir = 1 AND depth = 0) THEN 1 ELSE 0 END AS misfiled,
            COUNT(1)
        FROM work_items`
	args := []any{string(YearResolved)}
	if root != "" {
		query += " WHERE collection_root = ?"
		args = append(args, filepath.Clean(root))
	}
	query += " GROUP BY year_state, moved, misfiled"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("ledger stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var (
			state    string
			moved    int
			misfiled int
			count    int
		)
		if err := rows.Scan(&state, &moved, &misfiled, &count); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		switch YearState(state) {
		case YearPending:
			stats.Pending += count
		case YearResolved:
			stats.Resolved += count
		case YearUnknown:
			stats.Unknown += count
		case YearErrored:
			stats.Errored += count
		}
		if moved != 0 {
			stats.Moved += count
		}
		if misfiled != 0 {
			stats.Misfiled += count
		}
	}
	return stats, rows.Err()
}

// Roots lists every collection root recorded in the ledger.
func (s *Store) Roots(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT collection_root FROM work_items ORDER BY collection_root`)
	if err != nil {
		return nil, fmt.Errorf("list roots: %w", err)
	}
	defer rows.Close()

	var roots []string
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, rows.Err()
}

// Forget deletes every row recorded for root and returns how many were removed.
// The pipeline never calls this; it exists for operators starting over.
func (s *Store) Forget(ctx context.Context, root string) (int64, error) {
	if root == "" {
		return 0, errors.New("forget: collection root is required")
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM work_items WHERE collection_root = ?`, filepath.Clean(root))
	if err != nil {
		return 0, fmt.Errorf("forget %s: %w", root, err)
	}
	return res.RowsAffected()
}

// CheckHealth returns diagnostic information about the ledger database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{
		Driver: s.dialect.name,
		DBPath: s.location,
	}

	if s.dialect.name == sqliteDialect.name {
		info, err := os.Stat(s.location)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return health, nil
			}
			return health, fmt.Errorf("stat ledger database: %w", err)
		}
		if info.IsDir() {
			return health, fmt.Errorf("ledger database path %q is a directory", s.location)
		}
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("ledger database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping ledger database: %w", err)
	}
	health.DatabaseReadable = true

	if err := s.db.QueryRowContext(connCtx, "SELECT version FROM schema_version LIMIT 1").Scan(&health.SchemaVersion); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("read schema version: %w", err)
	}

	var tableCount int
	if err := s.db.QueryRowContext(connCtx, s.dialect.tableExists, workItemsTable).Scan(&tableCount); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("query table info: %w", err)
	}
	health.TableExists = tableCount > 0

	if health.TableExists {
		columns, err := s.columns(connCtx)
		if err != nil {
			health.Error = err.Error()
			return health, err
		}
		health.ColumnsPresent = columns
		health.MissingColumns = missingColumns(columns)

		if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM work_items").Scan(&health.TotalItems); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count ledger items: %w", err)
		}

		ok, err := s.dialect.integrity(connCtx, s.db)
		if err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("integrity check: %w", err)
		}
		health.IntegrityCheck = ok
	}

	return health, nil
}

func (s *Store) columns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.columns, workItemsTable)
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table info: %w", err)
	}
	return columns, nil
}

func missingColumns(present []string) []string {
	missing := make(map[string]struct{}, len(expectedColumns))
	for _, col := range expectedColumns {
		missing[col] = struct{}{}
	}
	for _, col := range present {
		delete(missing, col)
	}
	out := make([]string, 0, len(missing))
	for col := range missing {
		out = append(out, col)
	}
	sort.Strings(out)
	return out
}
