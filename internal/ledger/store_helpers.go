package ledger

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

const itemColumns = "id, collection_root, path, depth, is_dir, genre, source_year, year_state, year, moved, destination, created_at, updated_at, moved_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id          int64
		root        string
		path        string
		depth       int
		isDir       int
		genre       string
		sourceYear  int
		yearState   string
		year        sql.NullInt64
		moved       int
		destination sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
		movedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&root,
		&path,
		&depth,
		&isDir,
		&genre,
		&sourceYear,
		&yearState,
		&year,
		&moved,
		&destination,
		&createdRaw,
		&updatedRaw,
		&movedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:             id,
		CollectionRoot: root,
		Path:           path,
		Depth:          depth,
		IsDir:          isDir != 0,
		Genre:          genre,
		SourceYear:     sourceYear,
		Year:           Year{State: YearState(yearState)},
		Moved:          moved != 0,
		Destination:    destination.String,
	}
	if item.Year.State == YearResolved && year.Valid {
		item.Year.Value = int(year.Int64)
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if movedRaw.Valid {
		if movedAt, err := parseTimeString(movedRaw.String); err == nil {
			item.MovedAt = &movedAt
		}
	}
	return item, nil
}

// pathKey is the unique key for (root, path). MySQL cannot index unbounded
// TEXT columns, so both backends key on a fixed-width digest.
func pathKey(root, path string) string {
	sum := sha256.Sum256([]byte(root + "\x00" + path))
	return hex.EncodeToString(sum[:])
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
