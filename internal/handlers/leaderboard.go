package handlers

import (
	"html/template"
	"net/http"
	"sort"
	"time"

	"github.com/the36day/classboard/internal/store"
)

type boardRowVM struct {
	ID       string
	Name     string
	Avatar   string
	Streak   int
	AllScore int
	AllPct   int
	WScore   int
	WPct     int
}

// Leaderboard ranks students either by this week's ledger total or by
// the all-time score, optionally filtered to one group.
func Leaderboard(t *template.Template, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := st.Snapshot()

		period := r.URL.Query().Get("period")
		if period != "all" {
			period = "week"
		}
		groupID := r.URL.Query().Get("group")
		sortBy := r.URL.Query().Get("sort")
		if sortBy != "streak" {
			sortBy = "score"
		}

		weekTotals := d.WeekTotals(time.Now())

		var rows []boardRowVM
		for _, s := range d.Students {
			if groupID != "" && s.GroupID != groupID {
				continue
			}
			rows = append(rows, boardRowVM{
				ID:       s.ID,
				Name:     s.Name,
				Avatar:   s.Avatar,
				Streak:   s.Streak,
				AllScore: s.Score,
				AllPct:   store.Percent(s.Score, d.Settings.ScoreMax),
				WScore:   weekTotals[s.ID],
				WPct:     store.Percent(weekTotals[s.ID], d.Settings.ScoreMax),
			})
		}

		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if period == "week" {
				if a.WScore != b.WScore {
					return a.WScore > b.WScore
				}
				return a.AllScore > b.AllScore
			}
			if sortBy == "streak" {
				if a.Streak != b.Streak {
					return a.Streak > b.Streak
				}
				return a.AllScore > b.AllScore
			}
			if a.AllScore != b.AllScore {
				return a.AllScore > b.AllScore
			}
			return a.Streak > b.Streak
		})

		podium := rows
		if len(podium) > 3 {
			podium = podium[:3]
		}

		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(pagePath("leaderboard.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		data := map[string]any{
			"Title":   "Leaderboard",
			"Rows":    rows,
			"Podium":  podium,
			"Groups":  d.Groups,
			"Period":  period,
			"GroupID": groupID,
			"SortBy":  sortBy,
		}
		if err := view.ExecuteTemplate(w, "leaderboard.tmpl", data); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}
}
