package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Insert records a newly discovered item in the pending state. An item whose
// (collection root, path) is already recorded is left untouched and Insert
// reports false.
func (s *Store) Insert(ctx context.Context, item *Item) (bool, error) {
	if item == nil {
		return false, errors.New("insert: nil item")
	}
	root := filepath.Clean(item.CollectionRoot)
	path := filepath.Clean(item.Path)
	if strings.TrimSpace(item.CollectionRoot) == "" || strings.TrimSpace(item.Path) == "" {
		return false, errors.New("insert: collection root and path are required")
	}
	if item.Depth < 0 {
		return false, fmt.Errorf("insert %s: negative depth %d", path, item.Depth)
	}

	ts := s.timestamp()
	res, err := s.execWithRetry(
		ctx,
		s.dialect.insertIgnore+` work_items (
            path_key, collection_root, path, depth, is_dir, genre, source_year,
            year_state, year, moved, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, 0, ?, ?)`,
		pathKey(root, path),
		root,
		path,
		item.Depth,
		boolToInt(item.IsDir),
		item.Genre,
		item.SourceYear,
		string(YearPending),
		ts,
		ts,
	)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", path, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("last insert id: %w", err)
	}
	item.ID = id
	item.CollectionRoot = root
	item.Path = path
	item.Year = Pending()
	item.Moved = false
	return true, nil
}

// GetByID fetches an item by id. It returns nil when the id is unknown.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM work_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

// FindByPath fetches the item recorded for path under root, or nil.
func (s *Store) FindByPath(ctx context.Context, root, path string) (*Item, error) {
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM work_items WHERE path_key = ?`, pathKey(root, path))
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", path, err)
	}
	return item, nil
}

// Pending returns every pending item under root, oldest first.
func (s *Store) Pending(ctx context.Context, root string) ([]*Item, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM work_items
        WHERE collection_root = ? AND year_state = ?
        ORDER BY id`,
		filepath.Clean(root), string(YearPending),
	)
}

// SetYear records the resolution outcome for a pending item.
func (s *Store) SetYear(ctx context.Context, id int64, year Year) error {
	if !Pending().CanTransitionTo(year) {
		return fmt.Errorf("%w: pending -> %s", ErrInvalidTransition, year)
	}
	var value any
	if year.State == YearResolved {
		value = year.Value
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE work_items SET year_state = ?, year = ?, updated_at = ?
        WHERE id = ? AND year_state = ?`,
		string(year.State), value, s.timestamp(), id, string(YearPending),
	)
	if err != nil {
		return fmt.Errorf("set year for item %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set year rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	return fmt.Errorf("%w: item %d is %s", ErrInvalidTransition, id, current.Year)
}

// DestinationGroups lists the distinct (year, genre) pairs of unmoved,
// resolved, relocatable items whose year lies in window and differs from the
// folder they were found in.
func (s *Store) DestinationGroups(ctx context.Context, root string, window YearWindow) ([]DestinationGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT year, genre FROM work_items
        WHERE collection_root = ? AND moved = 0 AND year_state = ?
          AND year BETWEEN ? AND ? AND year <> source_year
          AND NOT (is_dir = 1 AND depth = 0)
        ORDER BY year, genre`,
		filepath.Clean(root), string(YearResolved), window.Min, window.Max,
	)
	if err != nil {
		return nil, fmt.Errorf("destination groups: %w", err)
	}
	defer rows.Close()

	var groups []DestinationGroup
	for rows.Next() {
		var group DestinationGroup
		if err := rows.Scan(&group.Year, &group.Genre); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

// Movable lists the items the move phase should relocate, deepest first.
func (s *Store) Movable(ctx context.Context, root string, window YearWindow) ([]*Item, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM work_items
        WHERE collection_root = ? AND moved = 0 AND year_state = ?
          AND year BETWEEN ? AND ? AND year <> source_year
          AND NOT (is_dir = 1 AND depth = 0)
        ORDER BY depth DESC, id`,
		filepath.Clean(root), string(YearResolved), window.Min, window.Max,
	)
}

// MarkMoved records a successful relocation of item id to destination.
func (s *Store) MarkMoved(ctx context.Context, id int64, destination string) error {
	ts := s.timestamp()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE work_items SET moved = 1, destination = ?, moved_at = ?, updated_at = ?
        WHERE id = ? AND moved = 0`,
		nullableString(destination), ts, ts, id,
	)
	if err != nil {
		return fmt.Errorf("mark item %d moved: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark moved rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	return fmt.Errorf("%w: %d", ErrAlreadyMoved, id)
}

// List returns ledger rows for root (all roots when root is empty).
func (s *Store) List(ctx context.Context, root string, filter ListFilter) ([]*Item, error) {
	var (
		clauses []string
		args    []any
	)
	if root != "" {
		clauses = append(clauses, "collection_root = ?")
		args = append(args, filepath.Clean(root))
	}
	if filter.State != "" {
		if !filter.State.Valid() {
			return nil, fmt.Errorf("list: unknown year state %q", filter.State)
		}
		clauses = append(clauses, "year_state = ?")
		args = append(args, string(filter.State))
	}
	if filter.PendingMoves {
		clauses = append(clauses, "moved = 0", "year_state = ?", "year <> source_year", "NOT (is_dir = 1 AND depth = 0)")
		args = append(args, string(YearResolved))
	}
	query := `SELECT ` + itemColumns + ` FROM work_items`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY collection_root, depth DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	return s.queryItems(ctx, query, args...)
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
