// Package fileutil holds filesystem helpers shared by the walker and the
// organizer. Every helper takes an afero.Fs so tests can run against memory
// or a temporary OS directory.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// ErrTargetExists is returned when a move would overwrite an existing path.
var ErrTargetExists = errors.New("target already exists")

// Exists reports whether path exists. Errors other than not-exist are returned.
func Exists(fs afero.Fs, path string) (bool, error) {
	_, err := fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ReadDirSorted lists a directory's entries ordered by name.
func ReadDirSorted(fs afero.Fs, dir string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// IsEmptyDir reports whether dir has no entries.
func IsEmptyDir(fs afero.Fs, dir string) (bool, error) {
	return afero.IsEmpty(fs, dir)
}

// PruneEmptyChildren removes the immediate subdirectories of dir that are
// empty. Removal failures are collected and returned together; the paths that
// were removed are returned either way.
func PruneEmptyChildren(fs afero.Fs, dir string) ([]string, error) {
	entries, err := ReadDirSorted(fs, dir)
	if err != nil {
		return nil, err
	}
	var removed []string
	var errs []error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		child := filepath.Join(dir, entry.Name())
		empty, err := IsEmptyDir(fs, child)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !empty {
			continue
		}
		if err := fs.Remove(child); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", child, err))
			continue
		}
		removed = append(removed, child)
	}
	return removed, errors.Join(errs...)
}

// FirstChildDir returns the first (by name) immediate subdirectory of dir, or
// "" when there is none.
func FirstChildDir(fs afero.Fs, dir string) (string, error) {
	entries, err := ReadDirSorted(fs, dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", nil
}

// MoveFile relocates src to dst without overwriting. A rename is attempted
// first; across filesystems the file is copied with verification and the
// source removed.
func MoveFile(fs afero.Fs, src, dst string) error {
	exists, err := Exists(fs, dst)
	if err != nil {
		return fmt.Errorf("stat target: %w", err)
	}
	if exists {
		return fmt.Errorf("move %s: %w: %s", src, ErrTargetExists, dst)
	}
	err = fs.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.EXDEV) {
		return err
	}
	if err := CopyFileVerified(fs, src, dst); err != nil {
		return fmt.Errorf("cross-device copy: %w", err)
	}
	if err := fs.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// CopyFileVerified streams src to a new dst with SHA256 + size integrity
// verification. dst must not exist; it is removed on mismatch.
func CopyFileVerified(fs afero.Fs, src, dst string) error {
	srcInfo, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		_ = fs.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = fs.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = fs.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}
