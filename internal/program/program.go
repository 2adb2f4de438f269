// Package program tracks the 30/36-day program calendars: a start date
// and a set of completed day numbers per variant, with a teacher-facing
// global scope and a per-student scope for the parent view.
package program

import (
	"encoding/json"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/the36day/classboard/internal/dates"
	"github.com/the36day/classboard/internal/storage"
)

const (
	activeKey = "the-program-day"  // "30" | "36"
	metaKey   = "the-program-meta" // {"30":{start,done},"36":{start,done}}
)

// Variants in display order.
var Variants = []string{"36", "30"}

// Meta is one variant's calendar: an ISO start date ("" = unstarted)
// and the ascending set of completed day numbers.
type Meta struct {
	Start string `json:"start"`
	Done  []int  `json:"done"`
}

type MetaSet map[string]Meta

func defaultMeta() MetaSet {
	return MetaSet{
		"30": {Start: "", Done: []int{}},
		"36": {Start: "", Done: []int{}},
	}
}

// normVariant collapses anything that isn't "30" onto "36".
func normVariant(v string) string {
	if v == "30" {
		return "30"
	}
	return "36"
}

// Length returns a variant's day count N.
func Length(variant string) int {
	n, _ := strconv.Atoi(normVariant(variant))
	return n
}

func clampDay(n, max int) int {
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}

// filterDone drops entries outside [1, n] and returns them sorted.
func filterDone(done []int, n int) []int {
	out := make([]int, 0, len(done))
	for _, d := range done {
		if d >= 1 && d <= n {
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out
}

// toggleDay flips day's membership, keeping the set sorted.
func toggleDay(done []int, day int) []int {
	out := make([]int, 0, len(done)+1)
	found := false
	for _, d := range done {
		if d == day {
			found = true
			continue
		}
		out = append(out, d)
	}
	if !found {
		out = append(out, day)
		sort.Ints(out)
	}
	return out
}

// TodayNumber computes the current day number for a start date: whole
// calendar days elapsed (start day = day 0) plus one, clamped into
// [1, n]. ok is false while unstarted or when start doesn't parse.
func TodayNumber(start string, n int, now time.Time) (int, bool) {
	if start == "" {
		return 0, false
	}
	elapsed, err := dates.DaysSince(start, now)
	if err != nil {
		return 0, false
	}
	return clampDay(elapsed+1, n), true
}

// Store is the teacher-facing program preference store. State lives in
// two blobs: the active variant scalar and the per-variant meta set.
// Both variants keep their data when the switch flips.
type Store struct {
	mu sync.Mutex
	kv storage.Store
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

func (s *Store) loadActive() string {
	raw, ok, err := s.kv.Get(activeKey)
	if err != nil {
		log.Printf("program: load active: %v", err)
	}
	if !ok {
		return "36"
	}
	return normVariant(string(raw))
}

func (s *Store) loadMeta() MetaSet {
	m := defaultMeta()
	raw, ok, err := s.kv.Get(metaKey)
	if err != nil {
		log.Printf("program: load meta: %v", err)
	}
	if !ok {
		return m
	}
	var parsed MetaSet
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return m
	}
	for _, v := range Variants {
		if cur, ok := parsed[v]; ok {
			if cur.Done == nil {
				cur.Done = []int{}
			}
			m[v] = cur
		}
	}
	return m
}

func (s *Store) saveActive(v string) {
	if err := s.kv.Put(activeKey, []byte(v)); err != nil {
		log.Printf("program: persist active: %v", err)
	}
}

func (s *Store) saveMeta(m MetaSet) {
	raw, err := json.Marshal(m)
	if err != nil {
		log.Printf("program: marshal meta: %v", err)
		return
	}
	if err := s.kv.Put(metaKey, raw); err != nil {
		log.Printf("program: persist meta: %v", err)
	}
}

// Active returns the selected variant ("30" or "36").
func (s *Store) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadActive()
}

// Toggle switches between the two variants without erasing the
// inactive one's data.
func (s *Store) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadActive() == "36" {
		s.saveActive("30")
	} else {
		s.saveActive("36")
	}
}

// SetActive selects a variant explicitly.
func (s *Store) SetActive(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveActive(normVariant(v))
}

// Current returns the active variant's meta.
func (s *Store) Current() (string, Meta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.loadActive()
	return v, s.loadMeta()[v]
}

// SetStartDate sets the active variant's start date and re-filters its
// done set into [1, N].
func (s *Store) SetStartDate(iso string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.loadActive()
	m := s.loadMeta()
	cur := m[v]
	cur.Start = strings.TrimSpace(iso)
	cur.Done = filterDone(cur.Done, Length(v))
	m[v] = cur
	s.saveMeta(m)
}

// ToggleDone clamps day into [1, N] and flips its membership in the
// active variant's done set.
func (s *Store) ToggleDone(day int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.loadActive()
	m := s.loadMeta()
	cur := m[v]
	cur.Done = toggleDay(cur.Done, clampDay(day, Length(v)))
	m[v] = cur
	s.saveMeta(m)
}

// ClearCurrent resets only the active variant to unstarted.
func (s *Store) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.loadActive()
	m := s.loadMeta()
	m[v] = Meta{Start: "", Done: []int{}}
	s.saveMeta(m)
}
