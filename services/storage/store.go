// Package storage keeps uploaded PDF files on local disk and optionally mirrors them to object storage.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrInvalidName is returned for names that are not a single path element
var ErrInvalidName = errors.New("invalid file name")

// FileInfo describes a stored file
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// FileStore persists uploaded files under flat, generated names
type FileStore interface {
	// Save writes r under name and returns the number of bytes written
	Save(ctx context.Context, name string, r io.Reader) (int64, error)
	// Delete removes name; a missing file is not an error
	Delete(ctx context.Context, name string) error
	Exists(name string) bool
	// Path returns the local filesystem path of name
	Path(name string) string
	List() ([]FileInfo, error)
}
