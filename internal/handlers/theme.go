package handlers

import (
	"net/http"

	"github.com/the36day/classboard/internal/theme"
)

// ThemeToggle flips day/night and returns to the page that asked.
func ThemeToggle(th *theme.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		th.Toggle()
		next := r.Referer()
		if next == "" {
			next = "/"
		}
		http.Redirect(w, r, next, http.StatusSeeOther)
	}
}
