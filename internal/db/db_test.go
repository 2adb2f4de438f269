package db_test

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/the36day/classboard/internal/db"
)

// TestWALMode verifies that the DSN parameters in db.go enable WAL
// journal mode, the key SQLite setting for concurrent reads with a
// single writer.
func TestWALMode(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "wal_test.db") + "?_journal_mode=WAL&_busy_timeout=5000"

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	var mode string
	gdb.Raw("PRAGMA journal_mode").Scan(&mode)
	if mode != "wal" {
		t.Errorf("expected journal_mode=wal, got %q", mode)
	}
}

// TestInit_CreatesBlobTable verifies that Init() migrates the blobs
// table the key/value stores persist through.
func TestInit_CreatesBlobTable(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CLASSBOARD_DB", filepath.Join(dir, "init_test.db"))

	if err := db.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if !db.Conn().Migrator().HasTable("blobs") {
		t.Error("blobs table missing after Init")
	}
}
