package storage

import (
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Blob is one persisted key/value entry. Every store in the app keeps
// its state as a JSON blob under a namespaced key, so the schema never
// needs migrations.
type Blob struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

// Store is the synchronous key/value port the preference and classroom
// stores persist through. Implementations must make Put durable before
// returning.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// DB persists blobs in the sqlite database.
type DB struct {
	conn *gorm.DB
}

func NewDB(conn *gorm.DB) *DB {
	return &DB{conn: conn}
}

func (d *DB) Get(key string) ([]byte, bool, error) {
	var b Blob
	err := d.conn.First(&b, "key = ?", key).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b.Value, true, nil
}

func (d *DB) Put(key string, value []byte) error {
	b := Blob{Key: key, Value: value, UpdatedAt: time.Now()}
	return d.conn.Clauses(clause.OnConflict{UpdateAll: true}).Create(&b).Error
}

func (d *DB) Delete(key string) error {
	return d.conn.Delete(&Blob{}, "key = ?", key).Error
}

// Memory is a map-backed Store for tests.
type Memory struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

func (s *Memory) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Memory) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.m[key] = v
	return nil
}

func (s *Memory) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
