package program

import (
	"reflect"
	"testing"
	"time"

	"github.com/the36day/classboard/internal/storage"
)

func TestNormVariant(t *testing.T) {
	cases := map[string]string{"30": "30", "36": "36", "": "36", "45": "36", "thirty": "36"}
	for in, want := range cases {
		if got := normVariant(in); got != want {
			t.Errorf("normVariant(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToggleDoneIsSelfInverse(t *testing.T) {
	s := NewStore(storage.NewMemory())

	s.ToggleDone(5)
	s.ToggleDone(2)
	_, cur := s.Current()
	if !reflect.DeepEqual(cur.Done, []int{2, 5}) {
		t.Errorf("done = %v, want [2 5] (sorted)", cur.Done)
	}

	s.ToggleDone(5)
	_, cur = s.Current()
	if !reflect.DeepEqual(cur.Done, []int{2}) {
		t.Errorf("done after untoggle = %v, want [2]", cur.Done)
	}
}

func TestToggleDoneClampsDay(t *testing.T) {
	s := NewStore(storage.NewMemory())

	s.ToggleDone(99) // clamps to 36
	s.ToggleDone(-3) // clamps to 1
	_, cur := s.Current()
	if !reflect.DeepEqual(cur.Done, []int{1, 36}) {
		t.Errorf("done = %v, want [1 36]", cur.Done)
	}
}

func TestToggleKeepsInactiveVariant(t *testing.T) {
	s := NewStore(storage.NewMemory())

	s.SetStartDate("2026-09-01")
	s.ToggleDone(3)

	s.Toggle()
	if v := s.Active(); v != "30" {
		t.Fatalf("active = %q, want 30", v)
	}
	_, cur := s.Current()
	if cur.Start != "" || len(cur.Done) != 0 {
		t.Errorf("fresh variant not empty: %+v", cur)
	}

	s.Toggle()
	_, cur = s.Current()
	if cur.Start != "2026-09-01" || !reflect.DeepEqual(cur.Done, []int{3}) {
		t.Errorf("original variant lost its data: %+v", cur)
	}
}

// Switching to the 30-day variant and setting a start date re-filters
// done days that only existed on the longer calendar.
func TestSetStartDateFiltersDone(t *testing.T) {
	s := NewStore(storage.NewMemory())
	s.ToggleDone(36)
	s.ToggleDone(10)

	s.SetActive("30")
	s.ToggleDone(28)
	s.SetStartDate("2026-09-01")
	_, cur := s.Current()
	if !reflect.DeepEqual(cur.Done, []int{28}) {
		t.Errorf("done = %v, want [28]", cur.Done)
	}

	s.SetActive("36")
	s.SetStartDate("  2026-09-02  ")
	_, cur = s.Current()
	if cur.Start != "2026-09-02" {
		t.Errorf("start not trimmed: %q", cur.Start)
	}
	if !reflect.DeepEqual(cur.Done, []int{10, 36}) {
		t.Errorf("done = %v, want [10 36]", cur.Done)
	}
}

func TestClearCurrentLeavesOtherVariant(t *testing.T) {
	s := NewStore(storage.NewMemory())
	s.SetStartDate("2026-09-01")
	s.ToggleDone(1)

	s.SetActive("30")
	s.SetStartDate("2026-09-05")
	s.ClearCurrent()

	_, cur := s.Current()
	if cur.Start != "" || len(cur.Done) != 0 {
		t.Errorf("ClearCurrent left data: %+v", cur)
	}

	s.SetActive("36")
	_, cur = s.Current()
	if cur.Start != "2026-09-01" || !reflect.DeepEqual(cur.Done, []int{1}) {
		t.Errorf("other variant was cleared too: %+v", cur)
	}
}

func TestTodayNumber(t *testing.T) {
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)

	if _, ok := TodayNumber("", 36, now); ok {
		t.Error("unstarted program reported a day")
	}
	if _, ok := TodayNumber("garbage", 36, now); ok {
		t.Error("unparsable start reported a day")
	}
	if n, ok := TodayNumber("2026-09-10", 36, now); !ok || n != 1 {
		t.Errorf("start day: got %d, want 1", n)
	}
	if n, ok := TodayNumber("2026-09-01", 36, now); !ok || n != 10 {
		t.Errorf("day ten: got %d, want 10", n)
	}
	// Far past start clamps to N, future start clamps to 1.
	if n, _ := TodayNumber("2020-01-01", 36, now); n != 36 {
		t.Errorf("long past: got %d, want 36", n)
	}
	if n, _ := TodayNumber("2026-12-01", 36, now); n != 1 {
		t.Errorf("future: got %d, want 1", n)
	}
}

func TestStudentStoreIsolation(t *testing.T) {
	kv := storage.NewMemory()
	sp := NewStudentStore(kv)

	sp.SetStart("alice", "2026-09-01")
	sp.ToggleDone("alice", 4)
	sp.SetProgram("bob", "30")

	a := sp.View("alice")
	if a.Program != "36" || a.Meta["36"].Start != "2026-09-01" {
		t.Errorf("alice state: %+v", a)
	}
	if !reflect.DeepEqual(a.Meta["36"].Done, []int{4}) {
		t.Errorf("alice done = %v", a.Meta["36"].Done)
	}

	b := sp.View("bob")
	if b.Program != "30" {
		t.Errorf("bob program = %q", b.Program)
	}
	if b.Meta["30"].Start != "" || len(b.Meta["30"].Done) != 0 {
		t.Errorf("bob inherited alice's calendar: %+v", b)
	}

	// Unknown students read as pristine defaults.
	c := sp.View("carol")
	if c.Program != "36" || len(c.Meta["36"].Done) != 0 {
		t.Errorf("default state: %+v", c)
	}
}

func TestStudentStoreResetOnlySelectedVariant(t *testing.T) {
	sp := NewStudentStore(storage.NewMemory())
	sp.SetStart("dave", "2026-09-01")
	sp.ToggleDone("dave", 2)
	sp.SetProgram("dave", "30")
	sp.SetStart("dave", "2026-09-03")
	sp.Reset("dave")

	st := sp.View("dave")
	if st.Meta["30"].Start != "" {
		t.Errorf("selected variant not reset: %+v", st.Meta["30"])
	}
	if st.Meta["36"].Start != "2026-09-01" {
		t.Errorf("other variant reset too: %+v", st.Meta["36"])
	}
}
