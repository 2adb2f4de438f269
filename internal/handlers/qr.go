package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/the36day/classboard/internal/store"
)

// QR serves the parent-link QR as a PNG. The size knob mirrors the
// share page's slider and is clamped to its 120..480 range.
func QR(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		if _, ok := st.Snapshot().Student(studentID); !ok {
			http.NotFound(w, r)
			return
		}

		size := 200
		if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
			size = v
		}
		if size < 120 {
			size = 120
		}
		if size > 480 {
			size = 480
		}

		// Encode a URL so scanning opens the parent view directly.
		url := "http://" + r.Host + "/p/" + studentID

		png, err := qrcode.Encode(url, qrcode.Medium, size)
		if err != nil {
			http.Error(w, "failed to generate qr", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}
