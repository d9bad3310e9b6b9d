package storage

import (
	"context"
	"io"
	"os"
	"path"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// ObjectStore is the remote side of a MirrorStore
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, data io.ReadSeeker, contentType string) error
	DeleteFile(ctx context.Context, key string) error
}

// MirrorStore serves files from local disk and copies every change to an object store.
// Remote failures are logged and never surface to the caller.
type MirrorStore struct {
	*LocalStore
	remote  ObjectStore
	prefix  string
	timeout time.Duration
}

// NewMirrorStore mirrors local under prefix/ in remote
func NewMirrorStore(local *LocalStore, remote ObjectStore, prefix string) *MirrorStore {
	return &MirrorStore{
		LocalStore: local,
		remote:     remote,
		prefix:     prefix,
		timeout:    30 * time.Second,
	}
}

func (m *MirrorStore) key(name string) string {
	return path.Join(m.prefix, name)
}

// Save stores locally, then uploads the stored copy
func (m *MirrorStore) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	n, err := m.LocalStore.Save(ctx, name, r)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(m.Path(name))
	if err != nil {
		log.Warnf("storage mirror: failed to reopen %s: %v", name, err)
		return n, nil
	}
	defer f.Close()

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()
	if err := m.remote.UploadFile(rctx, m.key(name), f, "application/pdf"); err != nil {
		log.Warnf("storage mirror: upload of %s failed: %v", name, err)
	}
	return n, nil
}

// Delete removes the local file and its remote copy
func (m *MirrorStore) Delete(ctx context.Context, name string) error {
	if err := m.LocalStore.Delete(ctx, name); err != nil {
		return err
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()
	if err := m.remote.DeleteFile(rctx, m.key(name)); err != nil {
		log.Warnf("storage mirror: delete of %s failed: %v", name, err)
	}
	return nil
}
