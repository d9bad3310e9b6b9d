package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps files in a single directory
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory files are stored in
func (s *LocalStore) Dir() string {
	return s.dir
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// Save writes to a temporary file first and renames it into place
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	if !validName(name) {
		return 0, ErrInvalidName
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("failed to move file: %w", err)
	}
	return n, nil
}

// Delete removes name, tolerating a file that is already gone
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists reports whether name is a regular file in the store
func (s *LocalStore) Exists(name string) bool {
	if !validName(name) {
		return false
	}
	info, err := os.Stat(s.Path(name))
	return err == nil && info.Mode().IsRegular()
}

// Path returns the filesystem path of name
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// List returns the stored files, skipping temp files and directories
func (s *LocalStore) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return files, nil
}
