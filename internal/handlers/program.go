package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/the36day/classboard/internal/program"
)

// ProgramPage is the teacher-facing program calendar: variant switch,
// start date, done grid with today highlighted.
func ProgramPage(t *template.Template, pr *program.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variant, cur := pr.Current()
		n := program.Length(variant)

		done := map[int]bool{}
		for _, d := range cur.Done {
			done[d] = true
		}
		var days []int
		for i := 1; i <= n; i++ {
			days = append(days, i)
		}
		todayNumber, hasToday := program.TodayNumber(cur.Start, n, time.Now())

		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(pagePath("program.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		data := map[string]any{
			"Title":       "Program calendar",
			"Variant":     variant,
			"Length":      n,
			"Start":       cur.Start,
			"Done":        done,
			"DoneCount":   len(cur.Done),
			"Days":        days,
			"TodayNumber": todayNumber,
			"HasToday":    hasToday,
			"Complete":    len(cur.Done) == n,
			"Flash":       MakeFlash(r, "", ""),
		}
		if err := view.ExecuteTemplate(w, "program.tmpl", data); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}
}

func ProgramSelect(pr *program.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if v := r.FormValue("variant"); v != "" {
			pr.SetActive(v)
		} else {
			pr.Toggle()
		}
		http.Redirect(w, r, "/program", http.StatusSeeOther)
	}
}

func ProgramStart(pr *program.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		pr.SetStartDate(r.FormValue("start"))
		http.Redirect(w, r, "/program?ok=saved", http.StatusSeeOther)
	}
}

func ProgramToggleDay(pr *program.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		day, err := strconv.Atoi(r.FormValue("day"))
		if err != nil {
			http.Redirect(w, r, "/program?error=invalid_number", http.StatusSeeOther)
			return
		}
		pr.ToggleDone(day)
		http.Redirect(w, r, "/program", http.StatusSeeOther)
	}
}

func ProgramReset(pr *program.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pr.ClearCurrent()
		http.Redirect(w, r, "/program", http.StatusSeeOther)
	}
}
