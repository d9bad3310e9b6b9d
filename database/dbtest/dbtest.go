// Package dbtest opens throwaway SQLite databases migrated with every model.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/r56149203/EduSphere/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated store backed by a file in t.TempDir()
func New(t testing.TB) *database.GORMStore {
	t.Helper()

	dsn := database.SQLiteDSN(filepath.Join(t.TempDir(), "edusphere_test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("dbtest.New() failed to open: %v", err)
	}

	store := database.NewGORMStore(db)
	if err := store.Init(); err != nil {
		t.Fatalf("dbtest.New() failed to migrate: %v", err)
	}

	t.Cleanup(func() { store.Close() })
	return store
}
