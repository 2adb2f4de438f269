package handlers

import (
	"html/template"
	"net/http"
	"sort"
	"time"

	"github.com/the36day/classboard/internal/dates"
	"github.com/the36day/classboard/internal/store"
)

type homeGroupVM struct {
	Group       store.Group
	TeacherName string
	Count       int
	AvgScore    int
	AvgPct      int
	TopName     string
	TopPct      int
	HasTop      bool
	Present     int
	Avatars     []string
	More        int
}

// Home shows one card per group: teacher, size, average score against
// scoreMax, the top student, and today's attendance count.
func Home(t *template.Template, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := st.Snapshot()
		dateKey := dates.Key(time.Now())

		cards := make([]homeGroupVM, 0, len(d.Groups))
		for _, g := range d.Groups {
			stus := d.StudentsInGroup(g.ID)
			vm := homeGroupVM{
				Group:       g,
				TeacherName: d.TeacherName(g.TeacherID),
				Count:       len(stus),
			}

			total := 0
			for _, s := range stus {
				total += s.Score
			}
			if vm.Count > 0 {
				vm.AvgScore = total / vm.Count
			}
			vm.AvgPct = store.Percent(vm.AvgScore, d.Settings.ScoreMax)

			sorted := append([]store.Student{}, stus...)
			sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
			if len(sorted) > 0 {
				vm.HasTop = true
				vm.TopName = sorted[0].Name
				vm.TopPct = store.Percent(sorted[0].Score, d.Settings.ScoreMax)
			}

			day := d.DayGroupFor(dateKey, g.ID)
			for _, s := range stus {
				if day.Attendance[s.ID] {
					vm.Present++
				}
			}

			for i, s := range stus {
				if i == 6 {
					vm.More = len(stus) - 6
					break
				}
				vm.Avatars = append(vm.Avatars, s.Avatar)
			}
			cards = append(cards, vm)
		}

		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(pagePath("home.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		data := map[string]any{
			"Title":   "Classboard — Groups",
			"Groups":  cards,
			"Max":     d.Settings.ScoreMax,
			"DateKey": dateKey,
			"Flash":   MakeFlash(r, "", ""),
		}
		if err := view.ExecuteTemplate(w, "home.tmpl", data); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}
}
