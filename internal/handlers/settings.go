package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/the36day/classboard/internal/store"
)

func SettingsPage(t *template.Template, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := st.Snapshot()
		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(pagePath("settings.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		data := map[string]any{
			"Title":    "Settings",
			"Settings": d.Settings,
			"Flash":    MakeFlash(r, "", ""),
		}
		if err := view.ExecuteTemplate(w, "settings.tmpl", data); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}
}

// SettingsSave clamps both knobs here, at the view boundary: scoreMax
// into 10..1000, sessionScore into 1..200. Unparsable input falls back
// to the defaults.
func SettingsSave(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()

		scoreMax, err := strconv.Atoi(r.FormValue("score_max"))
		if err != nil {
			scoreMax = store.DefaultScoreMax
		}
		scoreMax = clampInt(scoreMax, 10, 1000)

		sessionScore, err := strconv.Atoi(r.FormValue("session_score"))
		if err != nil {
			sessionScore = store.DefaultSessionScore
		}
		sessionScore = clampInt(sessionScore, 1, 200)

		st.SetScoreMax(scoreMax)
		st.SetSessionScore(sessionScore)
		http.Redirect(w, r, "/settings?ok=saved", http.StatusSeeOther)
	}
}

func SettingsReset(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st.ResetSettings()
		http.Redirect(w, r, "/settings?ok=saved", http.StatusSeeOther)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
