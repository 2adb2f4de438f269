// Package theme keeps the day/night display preference.
package theme

import (
	"log"
	"sync"

	"github.com/the36day/classboard/internal/storage"
)

const blobKey = "the36-theme"

type Store struct {
	mu sync.Mutex
	kv storage.Store
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

func (s *Store) load() string {
	raw, ok, err := s.kv.Get(blobKey)
	if err != nil {
		log.Printf("theme: load: %v", err)
	}
	if ok && string(raw) == "day" {
		return "day"
	}
	return "night"
}

// Current returns "day" or "night", defaulting to night.
func (s *Store) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Toggle flips the theme and returns the new value.
func (s *Store) Toggle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := "night"
	if s.load() == "night" {
		next = "day"
	}
	if err := s.kv.Put(blobKey, []byte(next)); err != nil {
		log.Printf("theme: persist: %v", err)
	}
	return next
}
