package walker

import (
	"fmt"
	"strconv"
	"strings"

	"mmove/internal/services"
)

// TopFolder is a parsed "<genre>-<year>" directory directly under the root.
type TopFolder struct {
	Name  string
	Path  string
	Genre string
	Year  int
}

// ParseTopFolder splits name at its last dash. ok is false when the name has
// no dash and is not a top folder at all. A name with a dash but an empty
// genre or non-numeric year is an ErrValidation error.
func ParseTopFolder(name string) (genre string, year int, ok bool, err error) {
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return "", 0, false, nil
	}
	genre = name[:idx]
	suffix := strings.TrimSpace(name[idx+1:])
	if strings.TrimSpace(genre) == "" {
		return "", 0, true, services.Wrap(services.ErrValidation, "walk", "parse top folder",
			fmt.Sprintf("folder %q has no genre before the dash", name), nil)
	}
	year, convErr := strconv.Atoi(suffix)
	if convErr != nil {
		return "", 0, true, services.Wrap(services.ErrValidation, "walk", "parse top folder",
			fmt.Sprintf("folder %q must end in -<year>", name), convErr)
	}
	return genre, year, true, nil
}
