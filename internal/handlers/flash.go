package handlers

import (
	"net/http"
	"strings"
)

type Flash struct {
	Kind string // "ok" or "error"
	Text string
}

var okText = map[string]string{
	"saved":          "Saved.",
	"teacher_added":  "Teacher added.",
	"group_added":    "Group added.",
	"student_added":  "Student added.",
	"pin_set":        "PIN set.",
	"pin_removed":    "PIN removed.",
	"imported":       "Import OK.",
	"cleared":        "All data cleared.",
	"day_cleared":    "Today's attendance, note and homework cleared.",
	"all_present":    "Everyone marked present.",
	"word_added":     "Word added.",
	"words_added":    "Words added.",
	"csv_imported":   "CSV imported.",
	"rewarded":       "Reward applied.",
	"learned_marked": "Correct answers marked as learned.",
	"unlocked":       "PIN accepted.",
}

var errText = map[string]string{
	"missing":           "Required fields are missing.",
	"invalid_import":    "Import failed: check the JSON format.",
	"invalid_pin":       "PIN must be 4–6 digits.",
	"wrong_pin":         "Wrong PIN. Try again.",
	"student_not_found": "Student not found.",
	"group_not_found":   "Group not found.",
	"invalid_number":    "Invalid number.",
	"need_three_words":  "At least 3 words are needed to practice.",
	"invalid_csv":       "Could not read that CSV file.",
	"nothing_imported":  "No usable rows found in that file.",
	"invalid_date":      "Invalid date.",
}

// MakeFlash builds a Flash from ?ok= / ?error= query keys, falling back
// to handler-provided strings.
func MakeFlash(r *http.Request, errStr, msgStr string) *Flash {
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("error")); raw != "" {
		if t, ok := errText[strings.ToLower(raw)]; ok {
			return &Flash{Kind: "error", Text: t}
		}
		return &Flash{Kind: "error", Text: raw}
	}
	if raw := strings.TrimSpace(q.Get("ok")); raw != "" {
		if t, ok := okText[strings.ToLower(raw)]; ok {
			return &Flash{Kind: "ok", Text: t}
		}
		return &Flash{Kind: "ok", Text: raw}
	}

	if errStr != "" {
		return &Flash{Kind: "error", Text: errStr}
	}
	if msgStr != "" {
		return &Flash{Kind: "ok", Text: msgStr}
	}
	return nil
}
