package storage

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	dsn := filepath.Join(dir, "test.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&Blob{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewDB(conn)
}

func testStoreRoundTrip(t *testing.T, s Store) {
	t.Helper()

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok=%v err=%v, want miss", ok, err)
	}

	if err := s.Put("k", []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, ok, err := s.Get("k")
	if err != nil || !ok || string(v) != "v1" {
		t.Fatalf("Get after Put = %q ok=%v err=%v", v, ok, err)
	}

	// Put on an existing key overwrites.
	if err := s.Put("k", []byte("v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, _, _ = s.Get("k")
	if string(v) != "v2" {
		t.Errorf("after overwrite = %q, want v2", v)
	}

	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Error("Get after Delete still hits")
	}
	// Deleting a missing key is not an error.
	if err := s.Delete("k"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestDBStore(t *testing.T) {
	testStoreRoundTrip(t, openTestDB(t))
}

func TestMemoryStore(t *testing.T) {
	testStoreRoundTrip(t, NewMemory())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	m := NewMemory()
	val := []byte("abc")
	if err := m.Put("k", val); err != nil {
		t.Fatal(err)
	}
	val[0] = 'x'

	got, _, _ := m.Get("k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller's slice: %q", got)
	}
	got[0] = 'y'
	again, _, _ := m.Get("k")
	if string(again) != "abc" {
		t.Errorf("returned value aliased stored slice: %q", again)
	}
}
