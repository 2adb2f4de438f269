package store

import (
	"time"

	"github.com/the36day/classboard/internal/dates"
)

// Pure read helpers over a snapshot. None of these touch storage.

func (d Data) Teacher(id string) (Teacher, bool) {
	for _, t := range d.Teachers {
		if t.ID == id {
			return t, true
		}
	}
	return Teacher{}, false
}

func (d Data) Group(id string) (Group, bool) {
	for _, g := range d.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

func (d Data) Student(id string) (Student, bool) {
	for _, s := range d.Students {
		if s.ID == id {
			return s, true
		}
	}
	return Student{}, false
}

// TeacherName resolves a teacher id for display, degrading dangling
// references to an em dash instead of failing.
func (d Data) TeacherName(id string) string {
	if t, ok := d.Teacher(id); ok {
		return t.Name
	}
	return "—"
}

func (d Data) StudentsInGroup(groupID string) []Student {
	var out []Student
	for _, s := range d.Students {
		if s.GroupID == groupID {
			out = append(out, s)
		}
	}
	return out
}

// DayGroupFor returns the (dateKey, groupID) record, or empty defaults
// when nothing has been recorded.
func (d Data) DayGroupFor(dateKey, groupID string) DayGroup {
	if day, ok := d.Daily[dateKey]; ok {
		if g, ok := day[groupID]; ok {
			if g.Attendance == nil {
				g.Attendance = map[string]bool{}
			}
			return g
		}
	}
	return DayGroup{Attendance: map[string]bool{}}
}

// WeekTotals sums the score ledger's deltas for the week containing
// now (Monday through the following Monday exclusive), per student.
func (d Data) WeekTotals(now time.Time) map[string]int {
	totals := map[string]int{}
	for key, bucket := range d.DailyScore {
		day, err := dates.ParseKey(key)
		if err != nil {
			continue
		}
		if !dates.SameWeek(day, now) {
			continue
		}
		for sid, delta := range bucket {
			totals[sid] += delta
		}
	}
	return totals
}

// Percent maps a score onto 0..100 against max, clamping both ends so
// a score above max still reads 100%.
func Percent(score, max int) int {
	if score < 0 {
		score = 0
	}
	if max < 1 {
		max = 1
	}
	p := (score*100 + max/2) / max // round half up
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
