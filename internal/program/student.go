package program

import (
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/the36day/classboard/internal/storage"
)

// Each student gets an independent program record under its own key,
// so parents can run their own calendar without touching the
// teacher-facing one.
const studentKeyPrefix = "the-program-student-v1:"

// StudentState is one student's program record: which variant is
// selected plus both variants' calendars.
type StudentState struct {
	Program string  `json:"program"`
	Meta    MetaSet `json:"meta"`
}

func defaultStudentState() StudentState {
	return StudentState{Program: "36", Meta: defaultMeta()}
}

// StudentStore manages the per-student program records.
type StudentStore struct {
	mu sync.Mutex
	kv storage.Store
}

func NewStudentStore(kv storage.Store) *StudentStore {
	return &StudentStore{kv: kv}
}

func (s *StudentStore) load(studentID string) StudentState {
	st := defaultStudentState()
	raw, ok, err := s.kv.Get(studentKeyPrefix + studentID)
	if err != nil {
		log.Printf("program: load student %s: %v", studentID, err)
	}
	if !ok {
		return st
	}
	var parsed StudentState
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return st
	}
	st.Program = normVariant(parsed.Program)
	for _, v := range Variants {
		if cur, ok := parsed.Meta[v]; ok {
			if cur.Done == nil {
				cur.Done = []int{}
			}
			st.Meta[v] = cur
		}
	}
	return st
}

func (s *StudentStore) save(studentID string, st StudentState) {
	raw, err := json.Marshal(st)
	if err != nil {
		log.Printf("program: marshal student %s: %v", studentID, err)
		return
	}
	if err := s.kv.Put(studentKeyPrefix+studentID, raw); err != nil {
		log.Printf("program: persist student %s: %v", studentID, err)
	}
}

// View returns the student's normalized program record.
func (s *StudentStore) View(studentID string) StudentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(studentID)
}

// SetProgram selects the student's variant; the other variant's
// calendar stays intact.
func (s *StudentStore) SetProgram(studentID, variant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.load(studentID)
	st.Program = normVariant(variant)
	s.save(studentID, st)
}

// SetStart sets the selected variant's start date.
func (s *StudentStore) SetStart(studentID, iso string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.load(studentID)
	cur := st.Meta[st.Program]
	cur.Start = strings.TrimSpace(iso)
	cur.Done = filterDone(cur.Done, Length(st.Program))
	st.Meta[st.Program] = cur
	s.save(studentID, st)
}

// ToggleDone flips a clamped day number in the selected variant.
func (s *StudentStore) ToggleDone(studentID string, day int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.load(studentID)
	cur := st.Meta[st.Program]
	cur.Done = toggleDay(cur.Done, clampDay(day, Length(st.Program)))
	st.Meta[st.Program] = cur
	s.save(studentID, st)
}

// Reset returns the selected variant to unstarted.
func (s *StudentStore) Reset(studentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.load(studentID)
	st.Meta[st.Program] = Meta{Start: "", Done: []int{}}
	s.save(studentID, st)
}
