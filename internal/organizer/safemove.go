package organizer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"mmove/internal/fileutil"
)

// ErrDestinationMissing means a move was attempted before its destination
// folder was materialized.
var ErrDestinationMissing = errors.New("destination folder missing")

// SafeMove relocates src into destDir without overwriting anything and returns
// the final path. A directory that collides takes a "-<random>" suffix. A file
// that collides is first renamed in place to "<stem>-<random><ext>" and then
// moved under that name.
func (o *Organizer) SafeMove(src, destDir string) (string, error) {
	destInfo, err := o.fs.Stat(destDir)
	if err != nil || !destInfo.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDestinationMissing, destDir)
	}
	info, err := o.fs.Stat(src)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return o.moveDir(src, destDir)
	}
	return o.moveFile(src, destDir)
}

func (o *Organizer) moveDir(src, destDir string) (string, error) {
	name := filepath.Base(src)
	target, err := o.freeName(func(suffix string) []string {
		return []string{filepath.Join(destDir, name+suffix)}
	})
	if err != nil {
		return "", err
	}
	if err := o.fs.Rename(src, target); err != nil {
		return "", fmt.Errorf("rename %s to %s: %w", src, target, err)
	}
	return target, nil
}

func (o *Organizer) moveFile(src, destDir string) (string, error) {
	base := filepath.Base(src)
	target := filepath.Join(destDir, base)
	taken, err := fileutil.Exists(o.fs, target)
	if err != nil {
		return "", err
	}
	if taken {
		stem, ext := splitName(base)
		renamed, err := o.freeName(func(suffix string) []string {
			name := stem + suffix + ext
			return []string{filepath.Join(filepath.Dir(src), name), filepath.Join(destDir, name)}
		})
		if err != nil {
			return "", err
		}
		if err := o.fs.Rename(src, renamed); err != nil {
			return "", fmt.Errorf("rename %s in place: %w", src, err)
		}
		src = renamed
		target = filepath.Join(destDir, filepath.Base(renamed))
	}
	if err := fileutil.MoveFile(o.fs, src, target); err != nil {
		return "", err
	}
	return target, nil
}

// freeName returns the first candidate path, trying the bare name and then
// random suffixes, for which none of the paths produced by build exist.
func (o *Organizer) freeName(build func(suffix string) []string) (string, error) {
	suffix := ""
	for attempt := 0; attempt <= o.attempts; attempt++ {
		candidates := build(suffix)
		free := true
		for _, candidate := range candidates {
			exists, err := fileutil.Exists(o.fs, candidate)
			if err != nil {
				return "", err
			}
			if exists {
				free = false
				break
			}
		}
		if free {
			return candidates[0], nil
		}
		suffix = fmt.Sprintf("-%d", o.rand())
	}
	return "", fmt.Errorf("%w: no free name after %d attempts", fileutil.ErrTargetExists, o.attempts)
}

func splitName(base string) (stem, ext string) {
	ext = filepath.Ext(base)
	stem = strings.TrimSuffix(base, ext)
	if stem == "" {
		return base, ""
	}
	return stem, ext
}
