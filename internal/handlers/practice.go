package handlers

import (
	"html/template"
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"github.com/the36day/classboard/internal/store"
)

type practiceQuestionVM struct {
	VocabID string
	Word    string
	Options []string // empty in typing mode
}

type practiceResultRowVM struct {
	Word    string
	Correct string
	Chosen  string
}

// PracticeStart deals a quiz deck: a random sample of the student's
// words, each with shuffled meaning options in multiple-choice mode.
// The deck is stateless; the form carries everything needed to grade.
func PracticeStart(t *template.Template, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		studentID := q.Get("student")
		d := st.Snapshot()
		s, ok := d.Student(studentID)
		if !ok {
			http.Redirect(w, r, "/vocab?error=student_not_found", http.StatusSeeOther)
			return
		}
		if len(s.Vocab) < 3 {
			http.Redirect(w, r, vocabURL(studentID, "&error=need_three_words"), http.StatusSeeOther)
			return
		}

		count, err := strconv.Atoi(q.Get("count"))
		if err != nil || count < 5 || count > 7 {
			count = 5
		}
		mode := q.Get("mode")
		if mode != "typing" {
			mode = "mc"
		}

		pool := s.Vocab
		if q.Get("unlearned") == "1" {
			var unlearned []store.VocabEntry
			for _, v := range s.Vocab {
				if !v.Learned {
					unlearned = append(unlearned, v)
				}
			}
			// Fall back to the full list when the unlearned pool is
			// smaller than the requested deck.
			if len(unlearned) >= count {
				pool = unlearned
			}
		}

		deck := sampleVocab(pool, count)
		questions := make([]practiceQuestionVM, 0, len(deck))
		for _, v := range deck {
			pq := practiceQuestionVM{VocabID: v.ID, Word: v.Word}
			if mode == "mc" {
				var others []store.VocabEntry
				for _, o := range s.Vocab {
					if o.ID != v.ID {
						others = append(others, o)
					}
				}
				wrongs := sampleVocab(others, 3)
				opts := []string{v.Meaning}
				for _, o := range wrongs {
					opts = append(opts, o.Meaning)
				}
				rand.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
				pq.Options = opts
			}
			questions = append(questions, pq)
		}

		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(pagePath("practice.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		data := map[string]any{
			"Title":     "Practice — " + s.Name,
			"Student":   s,
			"Mode":      mode,
			"Questions": questions,
		}
		if err := view.ExecuteTemplate(w, "practice.tmpl", data); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}
}

// PracticeGrade checks the submitted answers against the word list.
// Typing answers are compared case-insensitively after trimming.
func PracticeGrade(t *template.Template, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		studentID := r.FormValue("student_id")
		d := st.Snapshot()
		s, ok := d.Student(studentID)
		if !ok {
			http.Redirect(w, r, "/vocab?error=student_not_found", http.StatusSeeOther)
			return
		}

		byID := make(map[string]store.VocabEntry, len(s.Vocab))
		for _, v := range s.Vocab {
			byID[v.ID] = v
		}

		score := 0
		var correctIDs []string
		var wrong []practiceResultRowVM
		for _, id := range r.Form["id"] {
			v, ok := byID[id]
			if !ok {
				continue
			}
			chosen := strings.TrimSpace(r.FormValue("a_" + id))
			if strings.EqualFold(chosen, strings.TrimSpace(v.Meaning)) {
				score++
				correctIDs = append(correctIDs, id)
			} else {
				wrong = append(wrong, practiceResultRowVM{Word: v.Word, Correct: v.Meaning, Chosen: chosen})
			}
		}

		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(pagePath("practice_result.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		data := map[string]any{
			"Title":      "Practice result — " + s.Name,
			"Student":    s,
			"Score":      score,
			"Total":      len(r.Form["id"]),
			"Wrong":      wrong,
			"CorrectIDs": correctIDs,
		}
		if err := view.ExecuteTemplate(w, "practice_result.tmpl", data); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}
}

// PracticeReward grants +2 points per correct answer.
func PracticeReward(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		studentID := r.FormValue("student_id")
		correct, err := strconv.Atoi(r.FormValue("correct"))
		if err != nil || correct <= 0 {
			http.Redirect(w, r, vocabURL(studentID, ""), http.StatusSeeOther)
			return
		}
		st.IncScore(studentID, correct*2)
		http.Redirect(w, r, vocabURL(studentID, "&ok=rewarded"), http.StatusSeeOther)
	}
}

// PracticeMarkLearned flips the learned flag on each correctly answered
// word that isn't learned yet.
func PracticeMarkLearned(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		studentID := r.FormValue("student_id")
		d := st.Snapshot()
		s, ok := d.Student(studentID)
		if !ok {
			http.Redirect(w, r, "/vocab?error=student_not_found", http.StatusSeeOther)
			return
		}
		learned := make(map[string]bool, len(s.Vocab))
		for _, v := range s.Vocab {
			learned[v.ID] = v.Learned
		}
		for _, id := range r.Form["vocab_id"] {
			if done, ok := learned[id]; ok && !done {
				st.ToggleLearned(studentID, id)
			}
		}
		http.Redirect(w, r, vocabURL(studentID, "&ok=learned_marked"), http.StatusSeeOther)
	}
}
