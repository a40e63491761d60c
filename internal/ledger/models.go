package ledger

import (
	"fmt"
	"time"
)

// YearState is the resolution state persisted in work_items.year_state.
type YearState string

const (
	YearPending  YearState = "pending"
	YearResolved YearState = "resolved"
	YearUnknown  YearState = "unknown"
	YearErrored  YearState = "error"
)

// Valid reports whether s is one of the known states.
func (s YearState) Valid() bool {
	switch s {
	case YearPending, YearResolved, YearUnknown, YearErrored:
		return true
	}
	return false
}

// Year is the tagged year of an item. Value is meaningful only when State is
// YearResolved.
type Year struct {
	State YearState
	Value int
}

// Pending is the state of a freshly discovered item.
func Pending() Year { return Year{State: YearPending} }

// Resolved returns a resolved year. Non-positive values are not real years and
// yield Unknown.
func Resolved(value int) Year {
	if value <= 0 {
		return Unknown()
	}
	return Year{State: YearResolved, Value: value}
}

// Unknown marks an item that was processed without finding a usable year.
func Unknown() Year { return Year{State: YearUnknown} }

// Errored marks an item whose path vanished before resolution.
func Errored() Year { return Year{State: YearErrored} }

// Known reports whether the year carries a usable value.
func (y Year) Known() bool { return y.State == YearResolved && y.Value > 0 }

// IsPending reports whether the year has not been processed yet.
func (y Year) IsPending() bool { return y.State == YearPending || y.State == "" }

func (y Year) String() string {
	switch y.State {
	case YearResolved:
		return fmt.Sprintf("%d", y.Value)
	case "":
		return string(YearPending)
	default:
		return string(y.State)
	}
}

// CanTransitionTo reports whether y may be replaced by next. Only pending
// years move, and only to a processed state.
func (y Year) CanTransitionTo(next Year) bool {
	if !y.IsPending() {
		return false
	}
	switch next.State {
	case YearResolved:
		return next.Value > 0
	case YearUnknown, YearErrored:
		return true
	default:
		return false
	}
}

// MaxYear returns the later of two years. A resolved year beats any
// unresolved one; two unresolved years yield Unknown.
func MaxYear(a, b Year) Year {
	switch {
	case a.Known() && b.Known():
		if b.Value > a.Value {
			return b
		}
		return a
	case a.Known():
		return a
	case b.Known():
		return b
	default:
		return Unknown()
	}
}

// YearWindow is an inclusive range of plausible release years.
type YearWindow struct {
	Min int
	Max int
}

// Contains reports whether year lies inside the window.
func (w YearWindow) Contains(year int) bool {
	return year >= w.Min && year <= w.Max
}

// Item is one row of the work ledger.
type Item struct {
	ID             int64
	CollectionRoot string
	Path           string
	Depth          int
	IsDir          bool
	Genre          string
	SourceYear     int
	Year           Year
	Moved          bool
	Destination    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	MovedAt        *time.Time
}

// Kind returns "dir" or "file" for display.
func (i *Item) Kind() string {
	if i.IsDir {
		return "dir"
	}
	return "file"
}

// IsTopFolder reports whether the item is a <genre>-<year> container itself.
func (i *Item) IsTopFolder() bool {
	return i.IsDir && i.Depth == 0
}

// DestinationGroup is one distinct (year, genre) pair that needs a folder.
type DestinationGroup struct {
	Year  int
	Genre string
}

// ListFilter narrows List results.
type ListFilter struct {
	// State filters by year state when non-empty.
	State YearState
	// PendingMoves limits results to resolved, unmoved items whose year
	// differs from their source year.
	PendingMoves bool
	Limit        int
}

// Stats counts ledger rows for one collection root (or all roots).
type Stats struct {
	Total    int
	Pending  int
	Resolved int
	Unknown  int
	Errored  int
	Moved    int
	// Misfiled counts resolved, unmoved items whose year differs from the
	// folder they sit in.
	Misfiled int
}

// DatabaseHealth captures diagnostic information about the ledger database.
type DatabaseHealth struct {
	Driver           string
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}
