package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/the36day/classboard/internal/dates"
	"github.com/the36day/classboard/internal/storage"
)

// blobKey is the storage key the whole classroom aggregate lives under.
const blobKey = "the36-store-v1"

// ErrInvalidShape rejects imports whose teachers/groups/students are
// missing or not arrays.
var ErrInvalidShape = errors.New("invalid data shape")

// Store is the sole writer of the classroom aggregate. Every mutation
// clones the current snapshot, applies one change, persists the result
// and publishes it; readers always see the last committed snapshot.
type Store struct {
	mu   sync.RWMutex
	kv   storage.Store
	data Data
}

// New loads the aggregate from kv, falling back to the empty initial
// shape when the blob is missing or unreadable.
func New(kv storage.Store) *Store {
	s := &Store{kv: kv, data: initialData()}
	raw, ok, err := kv.Get(blobKey)
	if err != nil {
		log.Printf("store: load: %v", err)
		return s
	}
	if !ok {
		return s
	}
	// Unmarshal over the initial shape so missing settings/daily/
	// dailyScore keep their defaults.
	d := initialData()
	if err := json.Unmarshal(raw, &d); err != nil {
		log.Printf("store: corrupt blob, starting empty: %v", err)
		return s
	}
	s.data = normalize(d)
	return s
}

// commit publishes d and writes it through. Persistence failures are
// logged, not surfaced: writes are optimistic and last-write-wins.
func (s *Store) commit(d Data) {
	s.data = d
	raw, err := json.Marshal(d)
	if err != nil {
		log.Printf("store: marshal: %v", err)
		return
	}
	if err := s.kv.Put(blobKey, raw); err != nil {
		log.Printf("store: persist: %v", err)
	}
}

// ===== Settings =====

// SetScoreMax stores v, falling back to the default when v is zero.
// Range clamping is the Settings view's job, not the store's.
func (s *Store) SetScoreMax(v int) {
	if v == 0 {
		v = DefaultScoreMax
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	d.Settings.ScoreMax = v
	s.commit(d)
}

func (s *Store) SetSessionScore(v int) {
	if v == 0 {
		v = DefaultSessionScore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	d.Settings.SessionScore = v
	s.commit(d)
}

func (s *Store) ResetSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	d.Settings = defaultSettings()
	s.commit(d)
}

// ===== CRUD =====

func (s *Store) AddTeacher(name string) string {
	t := Teacher{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	d.Teachers = append(d.Teachers, t)
	s.commit(d)
	return t.ID
}

type GroupInput struct {
	Name      string
	Level     string
	TeacherID string
}

// AddGroup does not check that TeacherID exists; dangling references
// render as "—".
func (s *Store) AddGroup(in GroupInput) string {
	g := Group{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(in.Name),
		Level:      in.Level,
		TeacherID:  in.TeacherID,
		StudentIDs: []string{},
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	d.Groups = append(d.Groups, g)
	s.commit(d)
	return g.ID
}

type StudentInput struct {
	Name    string
	GroupID string
	Avatar  string // optional; random pick when empty
}

func (s *Store) AddStudent(in StudentInput) string {
	avatar := in.Avatar
	if avatar == "" {
		avatar = Avatars[rand.Intn(len(Avatars))]
	}
	st := Student{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(in.Name),
		GroupID: in.GroupID,
		Avatar:  avatar,
		Vocab:   []VocabEntry{},
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	for i := range d.Groups {
		if d.Groups[i].ID == in.GroupID {
			d.Groups[i].StudentIDs = append(d.Groups[i].StudentIDs, st.ID)
		}
	}
	d.Students = append(d.Students, st)
	s.commit(d)
	return st.ID
}

// IncScore adds delta to the student's score, floored at zero, and
// appends the raw delta to today's score ledger. The ledger keeps the
// unfloored delta even when the floor absorbed part of it; the weekly
// leaderboard is built on these raw entries.
func (s *Store) IncScore(studentID string, delta int) {
	if delta == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	for i := range d.Students {
		if d.Students[i].ID == studentID {
			next := d.Students[i].Score + delta
			if next < 0 {
				next = 0
			}
			d.Students[i].Score = next
		}
	}
	key := dates.Key(time.Now())
	bucket := d.DailyScore[key]
	if bucket == nil {
		bucket = map[string]int{}
		d.DailyScore[key] = bucket
	}
	bucket[studentID] += delta
	s.commit(d)
}

// IncStreak adds delta to the streak, no floor.
func (s *Store) IncStreak(studentID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	for i := range d.Students {
		if d.Students[i].ID == studentID {
			d.Students[i].Streak += delta
		}
	}
	s.commit(d)
}

func (s *Store) AddVocab(studentID, word, meaning string) {
	v := VocabEntry{
		ID:      uuid.NewString(),
		Word:    strings.TrimSpace(word),
		Meaning: strings.TrimSpace(meaning),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	for i := range d.Students {
		if d.Students[i].ID == studentID {
			d.Students[i].Vocab = append(d.Students[i].Vocab, v)
		}
	}
	s.commit(d)
}

func (s *Store) ToggleLearned(studentID, vocabID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	for i := range d.Students {
		if d.Students[i].ID != studentID {
			continue
		}
		for j := range d.Students[i].Vocab {
			if d.Students[i].Vocab[j].ID == vocabID {
				d.Students[i].Vocab[j].Learned = !d.Students[i].Vocab[j].Learned
			}
		}
	}
	s.commit(d)
}

// SetParentPin stores the trimmed pin as-is; format validation is the
// caller's concern.
func (s *Store) SetParentPin(studentID, pin string) {
	pin = strings.TrimSpace(pin)
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	for i := range d.Students {
		if d.Students[i].ID == studentID {
			d.Students[i].ParentPin = pin
		}
	}
	s.commit(d)
}

// ===== Daily (attendance, note, homework) =====

// ensureDayGroup materializes the (dateKey, groupID) record in d.
func ensureDayGroup(d *Data, dateKey, groupID string) {
	day := d.Daily[dateKey]
	if day == nil {
		day = map[string]DayGroup{}
		d.Daily[dateKey] = day
	}
	g, ok := day[groupID]
	if !ok {
		g = DayGroup{Attendance: map[string]bool{}}
	}
	if g.Attendance == nil {
		g.Attendance = map[string]bool{}
	}
	day[groupID] = g
}

func (s *Store) ToggleAttendance(groupID, studentID, dateKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	ensureDayGroup(&d, dateKey, groupID)
	g := d.Daily[dateKey][groupID]
	g.Attendance[studentID] = !g.Attendance[studentID]
	d.Daily[dateKey][groupID] = g
	s.commit(d)
}

func (s *Store) SetGroupNote(groupID, text, dateKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	ensureDayGroup(&d, dateKey, groupID)
	g := d.Daily[dateKey][groupID]
	g.Note = text
	d.Daily[dateKey][groupID] = g
	s.commit(d)
}

func (s *Store) SetGroupHomework(groupID, text, dateKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := cloneData(s.data)
	ensureDayGroup(&d, dateKey, groupID)
	g := d.Daily[dateKey][groupID]
	g.Homework = text
	d.Daily[dateKey][groupID] = g
	s.commit(d)
}

// ClearDayGroup deletes the (dateKey, groupID) record; no-op when
// absent. The day map itself stays, even when it empties out.
func (s *Store) ClearDayGroup(groupID, dateKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.data.Daily[dateKey]
	if !ok {
		return
	}
	if _, ok := day[groupID]; !ok {
		return
	}
	d := cloneData(s.data)
	delete(d.Daily[dateKey], groupID)
	s.commit(d)
}

// ===== Backup / restore =====

// ClearAll replaces the whole aggregate with the empty initial shape.
// Irreversible.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(initialData())
}

// ReplaceAll is the sole bulk-import path. It validates the shape
// before touching anything: either the whole new snapshot is adopted
// or none of it.
func (s *Store) ReplaceAll(raw []byte) error {
	var probe struct {
		Settings   *Settings                      `json:"settings"`
		Teachers   *[]Teacher                     `json:"teachers"`
		Groups     *[]Group                       `json:"groups"`
		Students   *[]Student                     `json:"students"`
		Daily      map[string]map[string]DayGroup `json:"daily"`
		DailyScore map[string]map[string]int      `json:"dailyScore"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("invalid data: %w", err)
	}
	if probe.Teachers == nil || probe.Groups == nil || probe.Students == nil {
		return ErrInvalidShape
	}

	next := Data{
		Settings:   defaultSettings(),
		Teachers:   *probe.Teachers,
		Groups:     *probe.Groups,
		Students:   *probe.Students,
		Daily:      probe.Daily,
		DailyScore: probe.DailyScore,
	}
	if probe.Settings != nil {
		next.Settings = *probe.Settings
		if next.Settings.ScoreMax == 0 {
			next.Settings.ScoreMax = DefaultScoreMax
		}
		if next.Settings.SessionScore == 0 {
			next.Settings.SessionScore = DefaultSessionScore
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(normalize(next))
	return nil
}

// Export renders the aggregate as the pretty-printed backup document.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.MarshalIndent(s.data, "", "  ")
}

// Snapshot returns a deep copy of the current aggregate.
func (s *Store) Snapshot() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneData(s.data)
}

// normalize fills the containers a hand-reduced blob may lack.
func normalize(d Data) Data {
	if d.Teachers == nil {
		d.Teachers = []Teacher{}
	}
	if d.Groups == nil {
		d.Groups = []Group{}
	}
	if d.Students == nil {
		d.Students = []Student{}
	}
	if d.Daily == nil {
		d.Daily = map[string]map[string]DayGroup{}
	}
	if d.DailyScore == nil {
		d.DailyScore = map[string]map[string]int{}
	}
	return d
}

func cloneData(d Data) Data {
	out := d
	out.Teachers = append([]Teacher{}, d.Teachers...)

	out.Groups = make([]Group, len(d.Groups))
	for i, g := range d.Groups {
		g.StudentIDs = append([]string{}, g.StudentIDs...)
		out.Groups[i] = g
	}

	out.Students = make([]Student, len(d.Students))
	for i, st := range d.Students {
		st.Vocab = append([]VocabEntry{}, st.Vocab...)
		out.Students[i] = st
	}

	out.Daily = make(map[string]map[string]DayGroup, len(d.Daily))
	for key, day := range d.Daily {
		nd := make(map[string]DayGroup, len(day))
		for gid, dg := range day {
			att := make(map[string]bool, len(dg.Attendance))
			for sid, v := range dg.Attendance {
				att[sid] = v
			}
			dg.Attendance = att
			nd[gid] = dg
		}
		out.Daily[key] = nd
	}

	out.DailyScore = make(map[string]map[string]int, len(d.DailyScore))
	for key, bucket := range d.DailyScore {
		nb := make(map[string]int, len(bucket))
		for sid, v := range bucket {
			nb[sid] = v
		}
		out.DailyScore[key] = nb
	}
	return out
}
