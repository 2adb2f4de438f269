package theme

import (
	"testing"

	"github.com/the36day/classboard/internal/storage"
)

func TestThemeDefaultsToNight(t *testing.T) {
	s := NewStore(storage.NewMemory())
	if got := s.Current(); got != "night" {
		t.Errorf("Current = %q, want night", got)
	}
}

func TestThemeToggle(t *testing.T) {
	kv := storage.NewMemory()
	s := NewStore(kv)

	if got := s.Toggle(); got != "day" {
		t.Errorf("first toggle = %q, want day", got)
	}
	if got := s.Toggle(); got != "night" {
		t.Errorf("second toggle = %q, want night", got)
	}

	// The preference survives a restart on the same storage.
	s.Toggle()
	if got := NewStore(kv).Current(); got != "day" {
		t.Errorf("after restart = %q, want day", got)
	}
}
