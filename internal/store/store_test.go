package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/the36day/classboard/internal/dates"
	"github.com/the36day/classboard/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(storage.NewMemory())
}

// Builds the common classroom fixture: one teacher, one group, one
// student, mirroring a first setup session.
func fixture(t *testing.T, s *Store) (teacherID, groupID, studentID string) {
	t.Helper()
	teacherID = s.AddTeacher("Ms. Aye")
	groupID = s.AddGroup(GroupInput{Name: "Tigers", Level: "Beginner", TeacherID: teacherID})
	studentID = s.AddStudent(StudentInput{Name: "Min", GroupID: groupID})
	return
}

func TestSetupChain(t *testing.T) {
	s := newTestStore(t)
	teacherID, groupID, studentID := fixture(t, s)

	d := s.Snapshot()
	if d.TeacherName(teacherID) != "Ms. Aye" {
		t.Errorf("teacher name = %q", d.TeacherName(teacherID))
	}
	g, ok := d.Group(groupID)
	if !ok {
		t.Fatal("group missing")
	}
	if len(g.StudentIDs) != 1 || g.StudentIDs[0] != studentID {
		t.Errorf("group studentIds = %v, want [%s]", g.StudentIDs, studentID)
	}
	st, ok := d.Student(studentID)
	if !ok {
		t.Fatal("student missing")
	}
	if st.Avatar == "" {
		t.Error("student got no avatar")
	}
	if st.Score != 0 || st.Streak != 0 {
		t.Errorf("fresh student score/streak = %d/%d", st.Score, st.Streak)
	}
}

func TestIncScoreFloorsAtZero(t *testing.T) {
	s := newTestStore(t)
	_, _, studentID := fixture(t, s)

	s.IncScore(studentID, 10)
	s.IncScore(studentID, -25)

	st, _ := s.Snapshot().Student(studentID)
	if st.Score != 0 {
		t.Errorf("score = %d, want 0 (floored)", st.Score)
	}
}

// The daily ledger records the raw delta even when the floor absorbed
// part of it, so a week total can come out negative while the display
// score sits at zero.
func TestIncScoreLedgerKeepsRawDelta(t *testing.T) {
	s := newTestStore(t)
	_, _, studentID := fixture(t, s)

	s.IncScore(studentID, 10)
	s.IncScore(studentID, -25)

	d := s.Snapshot()
	key := dates.Key(time.Now())
	if got := d.DailyScore[key][studentID]; got != -15 {
		t.Errorf("ledger[%s] = %d, want -15", key, got)
	}
	if got := d.WeekTotals(time.Now())[studentID]; got != -15 {
		t.Errorf("week total = %d, want -15", got)
	}
}

func TestIncScoreZeroIsNoop(t *testing.T) {
	s := newTestStore(t)
	_, _, studentID := fixture(t, s)

	s.IncScore(studentID, 0)

	d := s.Snapshot()
	if len(d.DailyScore) != 0 {
		t.Errorf("zero delta created a ledger bucket: %v", d.DailyScore)
	}
}

func TestWeekTotalsIgnoresOtherWeeks(t *testing.T) {
	s := newTestStore(t)
	_, _, studentID := fixture(t, s)

	// Seed the ledger directly: one bucket in the target week, one in
	// the week before.
	s.mu.Lock()
	d := cloneData(s.data)
	d.DailyScore["2026-09-02"] = map[string]int{studentID: 7} // Wednesday
	d.DailyScore["2026-08-28"] = map[string]int{studentID: 5} // previous Friday
	s.commit(d)
	s.mu.Unlock()

	ref, _ := dates.ParseKey("2026-09-04")
	totals := s.Snapshot().WeekTotals(ref)
	if totals[studentID] != 7 {
		t.Errorf("week total = %d, want 7", totals[studentID])
	}
}

func TestToggleAttendanceTwice(t *testing.T) {
	s := newTestStore(t)
	_, groupID, studentID := fixture(t, s)
	key := "2026-09-01"

	s.ToggleAttendance(groupID, studentID, key)
	if !s.Snapshot().DayGroupFor(key, groupID).Attendance[studentID] {
		t.Fatal("first toggle: want present")
	}
	s.ToggleAttendance(groupID, studentID, key)
	if s.Snapshot().DayGroupFor(key, groupID).Attendance[studentID] {
		t.Fatal("second toggle: want absent")
	}
}

func TestClearDayGroup(t *testing.T) {
	s := newTestStore(t)
	_, groupID, studentID := fixture(t, s)
	key := "2026-09-01"

	s.ToggleAttendance(groupID, studentID, key)
	s.SetGroupNote(groupID, "good class", key)
	s.ClearDayGroup(groupID, key)

	d := s.Snapshot()
	day := d.DayGroupFor(key, groupID)
	if len(day.Attendance) != 0 || day.Note != "" {
		t.Errorf("day record survived clear: %+v", day)
	}
	// The day map itself stays behind, empty.
	if _, ok := d.Daily[key]; !ok {
		t.Error("day map removed entirely, want empty map kept")
	}

	// Clearing a day that was never recorded must not materialize one.
	s.ClearDayGroup(groupID, "2026-09-02")
	if _, ok := s.Snapshot().Daily["2026-09-02"]; ok {
		t.Error("clear of absent day created a record")
	}
}

func TestSettingsZeroMeansDefault(t *testing.T) {
	s := newTestStore(t)
	s.SetScoreMax(0)
	s.SetSessionScore(0)

	d := s.Snapshot()
	if d.Settings.ScoreMax != DefaultScoreMax {
		t.Errorf("scoreMax = %d, want default %d", d.Settings.ScoreMax, DefaultScoreMax)
	}
	if d.Settings.SessionScore != DefaultSessionScore {
		t.Errorf("sessionScore = %d, want default %d", d.Settings.SessionScore, DefaultSessionScore)
	}
}

func TestVocabLifecycle(t *testing.T) {
	s := newTestStore(t)
	_, _, studentID := fixture(t, s)

	s.AddVocab(studentID, "  apple  ", " a fruit ")
	st, _ := s.Snapshot().Student(studentID)
	if len(st.Vocab) != 1 {
		t.Fatalf("vocab len = %d", len(st.Vocab))
	}
	v := st.Vocab[0]
	if v.Word != "apple" || v.Meaning != "a fruit" {
		t.Errorf("entry not trimmed: %+v", v)
	}
	if v.Learned {
		t.Error("new word starts learned")
	}

	s.ToggleLearned(studentID, v.ID)
	st, _ = s.Snapshot().Student(studentID)
	if !st.Vocab[0].Learned {
		t.Error("toggle did not mark learned")
	}
}

func TestReplaceAllRejectsBadShape(t *testing.T) {
	s := newTestStore(t)
	_, _, studentID := fixture(t, s)
	s.IncScore(studentID, 5)
	before, _ := s.Export()

	for _, raw := range []string{`{}`, `{"teachers":[]}`, `{"teachers":[],"groups":[]}`} {
		err := s.ReplaceAll([]byte(raw))
		if !errors.Is(err, ErrInvalidShape) {
			t.Errorf("ReplaceAll(%s) err = %v, want ErrInvalidShape", raw, err)
		}
	}
	if err := s.ReplaceAll([]byte(`not json`)); err == nil {
		t.Error("ReplaceAll(not json): want error")
	}

	after, _ := s.Export()
	if string(before) != string(after) {
		t.Error("rejected import mutated the store")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	_, groupID, studentID := fixture(t, s)
	s.IncScore(studentID, 12)
	s.IncStreak(studentID, 3)
	s.AddVocab(studentID, "cat", "animal")
	s.ToggleAttendance(groupID, studentID, "2026-09-01")
	s.SetParentPin(studentID, "4321")

	raw, err := s.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	s2 := New(storage.NewMemory())
	if err := s2.ReplaceAll(raw); err != nil {
		t.Fatalf("import: %v", err)
	}

	a, _ := json.Marshal(s.Snapshot())
	b, _ := json.Marshal(s2.Snapshot())
	if string(a) != string(b) {
		t.Errorf("round trip diverged:\n%s\n%s", a, b)
	}
}

func TestPersistenceAcrossRestart(t *testing.T) {
	kv := storage.NewMemory()
	s := New(kv)
	_, _, studentID := fixture(t, s)
	s.IncScore(studentID, 8)

	s2 := New(kv)
	st, ok := s2.Snapshot().Student(studentID)
	if !ok {
		t.Fatal("student lost across restart")
	}
	if st.Score != 8 {
		t.Errorf("score = %d, want 8", st.Score)
	}
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)
	fixture(t, s)
	s.ClearAll()

	d := s.Snapshot()
	if len(d.Teachers)+len(d.Groups)+len(d.Students) != 0 {
		t.Error("ClearAll left entities behind")
	}
	if d.Settings.ScoreMax != DefaultScoreMax {
		t.Errorf("settings not reset: %+v", d.Settings)
	}
}

func TestPercent(t *testing.T) {
	cases := []struct {
		score, max, want int
	}{
		{0, 100, 0},
		{50, 100, 50},
		{1, 3, 33},
		{2, 3, 67}, // round half up
		{60, 50, 100},
		{-5, 100, 0},
		{10, 0, 100}, // max clamped to 1
	}
	for _, c := range cases {
		if got := Percent(c.score, c.max); got != c.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", c.score, c.max, got, c.want)
		}
	}
}
