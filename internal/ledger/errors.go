package ledger

import "errors"

var (
	// ErrInvalidTransition is returned when a year update would leave a
	// non-pending state or target the pending state.
	ErrInvalidTransition = errors.New("invalid year transition")
	// ErrAlreadyMoved is returned when MarkMoved targets a moved item.
	ErrAlreadyMoved = errors.New("item already moved")
	// ErrItemNotFound is returned when an item id does not exist.
	ErrItemNotFound = errors.New("ledger item not found")
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)
