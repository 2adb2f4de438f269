package handlers

import (
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/the36day/classboard/internal/dates"
	"github.com/the36day/classboard/internal/store"
)

type groupRowVM struct {
	Student store.Student
	Pct     int
	Rank    int // 1..3 for the podium, 0 otherwise
	Present bool
}

type groupPageVM struct {
	Title        string
	Group        store.Group
	TeacherName  string
	DateKey      string
	Count        int
	AvgScore     int
	ScoreMax     int
	SessionScore int
	Present      int
	Rows         []groupRowVM
	Top          []groupRowVM
	Note         string
	Homework     string
	Filter       string
	Flash        *Flash
}

// GroupPage renders one group's roster sorted by score, with today's
// attendance, note and homework.
func GroupPage(t *template.Template, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "groupID")
		d := st.Snapshot()
		g, ok := d.Group(groupID)
		if !ok {
			http.NotFound(w, r)
			return
		}

		dateKey := dates.Key(time.Now())
		day := d.DayGroupFor(dateKey, groupID)

		stus := d.StudentsInGroup(groupID)
		sort.SliceStable(stus, func(i, j int) bool { return stus[i].Score > stus[j].Score })

		filter := r.URL.Query().Get("filter")
		if filter != "present" && filter != "absent" {
			filter = "all"
		}

		vm := groupPageVM{
			Title:        g.Name,
			Group:        g,
			TeacherName:  d.TeacherName(g.TeacherID),
			DateKey:      dateKey,
			Count:        len(stus),
			ScoreMax:     d.Settings.ScoreMax,
			SessionScore: d.Settings.SessionScore,
			Note:         day.Note,
			Homework:     day.Homework,
			Filter:       filter,
			Flash:        MakeFlash(r, "", ""),
		}

		total := 0
		for _, s := range stus {
			total += s.Score
		}
		if len(stus) > 0 {
			vm.AvgScore = total / len(stus)
		}

		for i, s := range stus {
			row := groupRowVM{
				Student: s,
				Pct:     store.Percent(s.Score, d.Settings.ScoreMax),
				Present: day.Attendance[s.ID],
			}
			if i < 3 {
				row.Rank = i + 1
				vm.Top = append(vm.Top, row)
			}
			if row.Present {
				vm.Present++
			}
			switch filter {
			case "present":
				if row.Present {
					vm.Rows = append(vm.Rows, row)
				}
			case "absent":
				if !row.Present {
					vm.Rows = append(vm.Rows, row)
				}
			default:
				vm.Rows = append(vm.Rows, row)
			}
		}

		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(pagePath("group.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if err := view.ExecuteTemplate(w, "group.tmpl", vm); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}
}

func groupURL(groupID, suffix string) string {
	return "/group/" + groupID + suffix
}

// GroupScore handles the +/- score buttons. Non-numeric deltas are
// rejected at this boundary; zero deltas are a store-level no-op.
func GroupScore(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		groupID := chi.URLParam(r, "groupID")
		studentID := r.FormValue("student_id")
		delta, err := strconv.Atoi(strings.TrimSpace(r.FormValue("delta")))
		if err != nil {
			http.Redirect(w, r, groupURL(groupID, "?error=invalid_number"), http.StatusSeeOther)
			return
		}
		st.IncScore(studentID, delta)
		http.Redirect(w, r, groupURL(groupID, ""), http.StatusSeeOther)
	}
}

func GroupStreak(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		groupID := chi.URLParam(r, "groupID")
		st.IncStreak(r.FormValue("student_id"), 1)
		http.Redirect(w, r, groupURL(groupID, ""), http.StatusSeeOther)
	}
}

// GroupSession awards the session score and a streak point to one
// student, or to the whole group when all=1.
func GroupSession(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		groupID := chi.URLParam(r, "groupID")
		d := st.Snapshot()

		if r.FormValue("all") == "1" {
			for _, s := range d.StudentsInGroup(groupID) {
				st.IncScore(s.ID, d.Settings.SessionScore)
				st.IncStreak(s.ID, 1)
			}
		} else {
			studentID := r.FormValue("student_id")
			st.IncScore(studentID, d.Settings.SessionScore)
			st.IncStreak(studentID, 1)
		}
		http.Redirect(w, r, groupURL(groupID, ""), http.StatusSeeOther)
	}
}

func GroupAttendance(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		groupID := chi.URLParam(r, "groupID")
		st.ToggleAttendance(groupID, r.FormValue("student_id"), dates.Key(time.Now()))
		http.Redirect(w, r, groupURL(groupID, ""), http.StatusSeeOther)
	}
}

// GroupAllPresent flips everyone who isn't present yet.
func GroupAllPresent(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "groupID")
		dateKey := dates.Key(time.Now())
		d := st.Snapshot()
		day := d.DayGroupFor(dateKey, groupID)
		for _, s := range d.StudentsInGroup(groupID) {
			if !day.Attendance[s.ID] {
				st.ToggleAttendance(groupID, s.ID, dateKey)
			}
		}
		http.Redirect(w, r, groupURL(groupID, "?ok=all_present"), http.StatusSeeOther)
	}
}

func GroupNote(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		groupID := chi.URLParam(r, "groupID")
		st.SetGroupNote(groupID, r.FormValue("note"), dates.Key(time.Now()))
		http.Redirect(w, r, groupURL(groupID, "?ok=saved"), http.StatusSeeOther)
	}
}

func GroupHomework(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		groupID := chi.URLParam(r, "groupID")
		st.SetGroupHomework(groupID, r.FormValue("homework"), dates.Key(time.Now()))
		http.Redirect(w, r, groupURL(groupID, "?ok=saved"), http.StatusSeeOther)
	}
}

// GroupClearToday removes today's record for the group entirely.
func GroupClearToday(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "groupID")
		st.ClearDayGroup(groupID, dates.Key(time.Now()))
		http.Redirect(w, r, groupURL(groupID, "?ok=day_cleared"), http.StatusSeeOther)
	}
}
