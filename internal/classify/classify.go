// Package classify decides whether a collection entry is a song, a deletable
// leftover, or neither, from its name alone.
package classify

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"mmove/internal/config"
)

// Classifier holds the song and junk sets. Extensions are compared after
// Unicode case folding; junk names are compared exactly.
type Classifier struct {
	songExts  map[string]struct{}
	junkExts  map[string]struct{}
	junkNames map[string]struct{}
}

// New builds a classifier from extension lists (with or without a leading
// dot) and exact junk file names.
func New(songExts, junkNames, junkExts []string) *Classifier {
	c := &Classifier{
		songExts:  make(map[string]struct{}, len(songExts)),
		junkExts:  make(map[string]struct{}, len(junkExts)),
		junkNames: make(map[string]struct{}, len(junkNames)),
	}
	for _, ext := range songExts {
		if key := foldExt(ext); key != "" {
			c.songExts[key] = struct{}{}
		}
	}
	for _, ext := range junkExts {
		if key := foldExt(ext); key != "" {
			c.junkExts[key] = struct{}{}
		}
	}
	for _, name := range junkNames {
		if name != "" {
			c.junkNames[name] = struct{}{}
		}
	}
	return c
}

// FromConfig builds a classifier from the [collection] section.
func FromConfig(cfg *config.Config) *Classifier {
	if cfg == nil {
		return Default()
	}
	return New(cfg.Collection.SongExtensions, cfg.Collection.JunkNames, cfg.Collection.JunkExtensions)
}

// Default returns the classifier for the built-in sets.
func Default() *Classifier {
	d := config.Default()
	return New(d.Collection.SongExtensions, d.Collection.JunkNames, d.Collection.JunkExtensions)
}

// IsSong reports whether path carries a song extension.
func (c *Classifier) IsSong(path string) bool {
	ext := extension(path)
	if ext == "" {
		return false
	}
	_, ok := c.songExts[ext]
	return ok
}

// IsDeletable reports whether path names a junk file that the walker may remove.
func (c *Classifier) IsDeletable(path string) bool {
	if _, ok := c.junkNames[filepath.Base(path)]; ok {
		return true
	}
	ext := extension(path)
	if ext == "" {
		return false
	}
	_, ok := c.junkExts[ext]
	return ok
}

// extension returns the folded extension of path without its dot. Dotfiles
// such as ".DS_Store" have no extension.
func extension(path string) string {
	base := filepath.Base(path)
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 || idx == len(base)-1 {
		return ""
	}
	return foldExt(base[idx+1:])
}

func foldExt(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return ""
	}
	return cases.Fold().String(ext)
}
