// Package tags reads year-like fields from audio file tags using
// github.com/dhowden/tag (ID3v1/v2, Vorbis comments in FLAC and Ogg, MP4).
package tags

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/spf13/afero"
)

// ErrNoTags is returned when a file carries no readable tag block.
var ErrNoTags = errors.New("no tags found")

// structuredYearFields hold a bare year (ID3v2.3 TYER, ID3v2.2 TYE, Vorbis YEAR).
var structuredYearFields = []string{"TYER", "TYE", "year", "YEAR"}

// timestampFields hold a date or timestamp, checked in order.
var timestampFields = []string{"TDRC", "date", "DATE", "TDA"}

// TagSet is the subset of a file's tags the resolver needs.
type TagSet struct {
	// Year is the structured year field, or 0 when absent or not a plain
	// integer.
	Year int
	// Raw maps tag field names to their text.
	Raw map[string]string
}

// Timestamp returns the first present timestamp-like field.
func (t TagSet) Timestamp() (field, text string, ok bool) {
	for _, name := range timestampFields {
		if value, present := t.Raw[name]; present {
			return name, value, true
		}
	}
	return "", "", false
}

// Reader reads tags for a path.
type Reader interface {
	Read(path string) (TagSet, error)
}

// FileReader reads tags from files on an afero filesystem.
type FileReader struct {
	fs afero.Fs
}

// NewFileReader returns a reader over fs (the OS filesystem when nil).
func NewFileReader(fs afero.Fs) *FileReader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileReader{fs: fs}
}

// Read opens path and extracts its tags. Files without a recognised tag block
// return ErrNoTags.
func (r *FileReader) Read(path string) (TagSet, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return TagSet{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return TagSet{}, ErrNoTags
		}
		return TagSet{}, fmt.Errorf("read tags %s: %w", path, err)
	}
	return FromRaw(meta.Raw()), nil
}

// FromRaw converts a dhowden/tag raw map into a TagSet. Non-text values are
// dropped.
func FromRaw(raw map[string]interface{}) TagSet {
	set := TagSet{Raw: make(map[string]string, len(raw))}
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			set.Raw[key] = v
		case int:
			set.Raw[key] = strconv.Itoa(v)
		case *tag.Comm:
			if v != nil {
				set.Raw[key] = v.Text
			}
		}
	}
	for _, name := range structuredYearFields {
		text, ok := set.Raw[name]
		if !ok {
			continue
		}
		if year, err := strconv.Atoi(strings.TrimSpace(text)); err == nil && year > 0 {
			set.Year = year
			break
		}
	}
	return set
}
