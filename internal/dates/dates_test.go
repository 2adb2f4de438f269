package dates

import (
	"testing"
	"time"
)

func TestKeyFormat(t *testing.T) {
	loc := time.FixedZone("X", 7*3600)
	got := Key(time.Date(2026, 3, 5, 23, 50, 0, 0, loc))
	if got != "2026-03-05" {
		t.Errorf("Key = %q, want 2026-03-05", got)
	}
}

// WeekStart must land on Monday for every weekday, including Sunday,
// which belongs to the preceding Monday's week.
func TestWeekStart(t *testing.T) {
	cases := []struct {
		day  string
		want string
	}{
		{"2026-08-31", "2026-08-31"}, // Monday
		{"2026-09-02", "2026-08-31"}, // Wednesday
		{"2026-09-05", "2026-08-31"}, // Saturday
		{"2026-09-06", "2026-08-31"}, // Sunday
		{"2026-09-07", "2026-09-07"}, // next Monday
	}
	for _, c := range cases {
		d, err := ParseKey(c.day)
		if err != nil {
			t.Fatalf("parse %s: %v", c.day, err)
		}
		if got := Key(WeekStart(d)); got != c.want {
			t.Errorf("WeekStart(%s) = %s, want %s", c.day, got, c.want)
		}
	}
}

func TestSameWeekBoundaries(t *testing.T) {
	ref, _ := ParseKey("2026-09-02") // Wednesday
	in := []string{"2026-08-31", "2026-09-06"}
	out := []string{"2026-08-30", "2026-09-07"}

	for _, day := range in {
		d, _ := ParseKey(day)
		if !SameWeek(d, ref) {
			t.Errorf("SameWeek(%s) = false, want true", day)
		}
	}
	for _, day := range out {
		d, _ := ParseKey(day)
		if SameWeek(d, ref) {
			t.Errorf("SameWeek(%s) = true, want false", day)
		}
	}
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2026, 9, 10, 8, 30, 0, 0, time.UTC)

	if n, err := DaysSince("2026-09-10", now); err != nil || n != 0 {
		t.Errorf("same day: got %d, %v; want 0", n, err)
	}
	if n, err := DaysSince("2026-09-01", now); err != nil || n != 9 {
		t.Errorf("nine days: got %d, %v; want 9", n, err)
	}
	if n, err := DaysSince("2026-09-20", now); err != nil || n != -10 {
		t.Errorf("future start: got %d, %v; want -10", n, err)
	}
	if _, err := DaysSince("not-a-date", now); err == nil {
		t.Error("bad start date: want error")
	}
}

// Day subtraction must stay exact across a DST transition: local clocks
// in Europe/Berlin lose an hour on 2026-03-29 but the calendar count
// may not drift.
func TestDaysSinceAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	now := time.Date(2026, 3, 31, 9, 0, 0, 0, loc)
	n, err := DaysSince("2026-03-27", now)
	if err != nil {
		t.Fatalf("DaysSince: %v", err)
	}
	if n != 4 {
		t.Errorf("across DST: got %d, want 4", n)
	}
}
