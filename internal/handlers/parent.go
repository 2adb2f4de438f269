package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/the36day/classboard/internal/dates"
	"github.com/the36day/classboard/internal/program"
	"github.com/the36day/classboard/internal/store"
)

// The unlock flag lives in a session cookie (no expiry), so closing
// the browser re-locks the page. This is a soft gate, not a security
// boundary: the PIN is a plaintext string on the student record.
func parentAuthCookie(studentID string) string {
	return "parent_auth_" + studentID
}

func parentUnlocked(r *http.Request, s store.Student) bool {
	if s.ParentPin == "" {
		return true
	}
	c, err := r.Cookie(parentAuthCookie(s.ID))
	return err == nil && c.Value == "1"
}

// ParentPinSubmit checks the entered PIN against the student record
// and sets the session unlock cookie on a match.
func ParentPinSubmit(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		studentID := chi.URLParam(r, "studentID")
		d := st.Snapshot()
		s, ok := d.Student(studentID)
		if !ok {
			http.NotFound(w, r)
			return
		}
		pin := r.FormValue("pin")
		if s.ParentPin != "" && pin != s.ParentPin {
			http.Redirect(w, r, "/p/"+studentID+"?error=wrong_pin", http.StatusSeeOther)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     parentAuthCookie(studentID),
			Value:    "1",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, "/p/"+studentID, http.StatusSeeOther)
	}
}

type parentProgramVM struct {
	Variant     string
	Length      int
	Start       string
	Done        map[int]bool
	DoneCount   int
	Days        []int
	TodayNumber int
	HasToday    bool
}

type parentPageVM struct {
	Title       string
	Student     store.Student
	GroupName   string
	Level       string
	TeacherName string
	ScoreMax    int
	Pct         int
	Learned     int
	Total       int
	DateKey     string
	Note        string
	Homework    string
	ShareURL    string
	Program     parentProgramVM
	Flash       *Flash
}

// ParentView is the shareable read-only student page, addressed by the
// student's opaque id and optionally gated by a PIN. The per-student
// program calendar is the one thing on it a parent can edit.
func ParentView(t *template.Template, st *store.Store, sp *program.StudentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		d := st.Snapshot()
		s, ok := d.Student(studentID)
		if !ok {
			view, err := t.Clone()
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			if _, err := view.ParseFiles(pagePath("parent_missing.tmpl")); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			w.WriteHeader(http.StatusNotFound)
			_ = view.ExecuteTemplate(w, "parent_missing.tmpl", map[string]any{"Title": "Student not found"})
			return
		}

		if !parentUnlocked(r, s) {
			view, err := t.Clone()
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			if _, err := view.ParseFiles(pagePath("parent_pin.tmpl")); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			_ = view.ExecuteTemplate(w, "parent_pin.tmpl", map[string]any{
				"Title":   "Parent view",
				"Student": s,
				"Flash":   MakeFlash(r, "", ""),
			})
			return
		}

		vm := parentPageVM{
			Title:       "Parent view — " + s.Name,
			Student:     s,
			GroupName:   "—",
			Level:       "—",
			TeacherName: "—",
			ScoreMax:    d.Settings.ScoreMax,
			Pct:         store.Percent(s.Score, d.Settings.ScoreMax),
			Total:       len(s.Vocab),
			DateKey:     dates.Key(time.Now()),
			ShareURL:    "http://" + r.Host + "/p/" + s.ID,
			Flash:       MakeFlash(r, "", ""),
		}
		for _, v := range s.Vocab {
			if v.Learned {
				vm.Learned++
			}
		}
		if g, ok := d.Group(s.GroupID); ok {
			vm.GroupName = g.Name
			vm.Level = g.Level
			vm.TeacherName = d.TeacherName(g.TeacherID)

			day := d.DayGroupFor(vm.DateKey, g.ID)
			vm.Note = day.Note
			vm.Homework = day.Homework
		}

		ps := sp.View(s.ID)
		cur := ps.Meta[ps.Program]
		n := program.Length(ps.Program)
		pvm := parentProgramVM{
			Variant: ps.Program,
			Length:  n,
			Start:   cur.Start,
			Done:    map[int]bool{},
		}
		for _, dn := range cur.Done {
			pvm.Done[dn] = true
		}
		pvm.DoneCount = len(cur.Done)
		for i := 1; i <= n; i++ {
			pvm.Days = append(pvm.Days, i)
		}
		pvm.TodayNumber, pvm.HasToday = program.TodayNumber(cur.Start, n, time.Now())
		vm.Program = pvm

		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(pagePath("parent.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if err := view.ExecuteTemplate(w, "parent.tmpl", vm); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}
}

// Per-student program calendar actions, reachable once unlocked.

func parentGuard(st *store.Store, next func(w http.ResponseWriter, r *http.Request, s store.Student)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		s, ok := st.Snapshot().Student(studentID)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if !parentUnlocked(r, s) {
			http.Redirect(w, r, "/p/"+studentID, http.StatusSeeOther)
			return
		}
		next(w, r, s)
	}
}

func ParentProgramSelect(st *store.Store, sp *program.StudentStore) http.HandlerFunc {
	return parentGuard(st, func(w http.ResponseWriter, r *http.Request, s store.Student) {
		_ = r.ParseForm()
		sp.SetProgram(s.ID, r.FormValue("variant"))
		http.Redirect(w, r, "/p/"+s.ID, http.StatusSeeOther)
	})
}

func ParentProgramStart(st *store.Store, sp *program.StudentStore) http.HandlerFunc {
	return parentGuard(st, func(w http.ResponseWriter, r *http.Request, s store.Student) {
		_ = r.ParseForm()
		sp.SetStart(s.ID, r.FormValue("start"))
		http.Redirect(w, r, "/p/"+s.ID, http.StatusSeeOther)
	})
}

func ParentProgramToggleDay(st *store.Store, sp *program.StudentStore) http.HandlerFunc {
	return parentGuard(st, func(w http.ResponseWriter, r *http.Request, s store.Student) {
		_ = r.ParseForm()
		day, err := strconv.Atoi(r.FormValue("day"))
		if err != nil {
			http.Redirect(w, r, "/p/"+s.ID+"?error=invalid_number", http.StatusSeeOther)
			return
		}
		sp.ToggleDone(s.ID, day)
		http.Redirect(w, r, "/p/"+s.ID, http.StatusSeeOther)
	})
}

func ParentProgramReset(st *store.Store, sp *program.StudentStore) http.HandlerFunc {
	return parentGuard(st, func(w http.ResponseWriter, r *http.Request, s store.Student) {
		sp.Reset(s.ID)
		http.Redirect(w, r, "/p/"+s.ID, http.StatusSeeOther)
	})
}
