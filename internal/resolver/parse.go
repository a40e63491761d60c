package resolver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mmove/internal/ledger"
)

// ErrMalformedYear is returned when a timestamp field passes the shape check
// but its year component is not an integer.
var ErrMalformedYear = errors.New("malformed tag year")

// ParseTimestampYear extracts a year from timestamp text such as "1999",
// "1999-06-01" or "1999-06-01T10:00:00". Text with a dash count other than
// zero or two is not a recognised date shape and yields Unknown.
func ParseTimestampYear(text string) (ledger.Year, error) {
	trimmed := strings.TrimSpace(text)
	candidate := trimmed
	switch strings.Count(trimmed, "-") {
	case 0:
	case 2:
		candidate = strings.TrimSpace(strings.SplitN(trimmed, "-", 2)[0])
	default:
		return ledger.Unknown(), nil
	}
	year, err := strconv.Atoi(candidate)
	if err != nil {
		return ledger.Unknown(), fmt.Errorf("%w: %q", ErrMalformedYear, text)
	}
	return ledger.Resolved(year), nil
}
