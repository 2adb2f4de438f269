package handlers

import (
	"encoding/csv"
	"html/template"
	"math/rand"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/the36day/classboard/internal/store"
)

type vocabPageVM struct {
	Title       string
	Students    []store.Student
	Student     *store.Student
	GroupName   string
	Level       string
	TeacherName string
	Learned     int
	Total       int
	Unlearned   int
	Pct         int
	CanPractice bool
	Flashcards  []store.VocabEntry
	Flash       *Flash
}

// VocabPage shows one student's word list, mastery stats and the entry
// points for practice, flashcards and CSV transfer.
func VocabPage(t *template.Template, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := st.Snapshot()

		students := append([]store.Student{}, d.Students...)
		sort.SliceStable(students, func(i, j int) bool { return students[i].Name < students[j].Name })

		studentID := r.URL.Query().Get("student")
		if studentID == "" && len(students) > 0 {
			studentID = students[0].ID
		}

		vm := vocabPageVM{
			Title:       "Vocabulary",
			Students:    students,
			GroupName:   "—",
			Level:       "—",
			TeacherName: "—",
			Flash:       MakeFlash(r, "", ""),
		}

		if s, ok := d.Student(studentID); ok {
			vm.Student = &s
			if g, ok := d.Group(s.GroupID); ok {
				vm.GroupName = g.Name
				vm.Level = g.Level
				vm.TeacherName = d.TeacherName(g.TeacherID)
			}
			vm.Total = len(s.Vocab)
			for _, v := range s.Vocab {
				if v.Learned {
					vm.Learned++
				}
			}
			vm.Unlearned = vm.Total - vm.Learned
			if vm.Total > 0 {
				vm.Pct = store.Percent(vm.Learned, vm.Total)
			}
			vm.CanPractice = vm.Total >= 3

			if r.URL.Query().Get("flash") == "1" && vm.Total > 0 {
				n := 8
				if vm.Total < n {
					n = vm.Total
				}
				vm.Flashcards = sampleVocab(s.Vocab, n)
			}
		}

		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(pagePath("vocab.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if err := view.ExecuteTemplate(w, "vocab.tmpl", vm); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}
}

func vocabURL(studentID, suffix string) string {
	return "/vocab?student=" + studentID + suffix
}

func VocabAdd(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		studentID := r.FormValue("student_id")
		word := strings.TrimSpace(r.FormValue("word"))
		meaning := strings.TrimSpace(r.FormValue("meaning"))
		if studentID == "" || word == "" || meaning == "" {
			http.Redirect(w, r, vocabURL(studentID, "&error=missing"), http.StatusSeeOther)
			return
		}
		st.AddVocab(studentID, word, meaning)
		http.Redirect(w, r, vocabURL(studentID, "&ok=word_added"), http.StatusSeeOther)
	}
}

// VocabBulk accepts one entry per line, either "word - meaning" or
// "word,meaning". Unparsable lines are skipped.
func VocabBulk(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		studentID := r.FormValue("student_id")
		added := 0
		for _, line := range strings.Split(r.FormValue("lines"), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var word, meaning string
			if i := strings.Index(line, " - "); i >= 0 {
				word, meaning = line[:i], line[i+3:]
			} else if i := strings.Index(line, ","); i >= 0 {
				word, meaning = line[:i], line[i+1:]
			}
			word = strings.TrimSpace(word)
			meaning = strings.TrimSpace(meaning)
			if word != "" && meaning != "" {
				st.AddVocab(studentID, word, meaning)
				added++
			}
		}
		if added == 0 {
			http.Redirect(w, r, vocabURL(studentID, "&error=nothing_imported"), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, vocabURL(studentID, "&ok=words_added"), http.StatusSeeOther)
	}
}

func VocabToggleLearned(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		studentID := r.FormValue("student_id")
		st.ToggleLearned(studentID, r.FormValue("vocab_id"))
		http.Redirect(w, r, vocabURL(studentID, ""), http.StatusSeeOther)
	}
}

// VocabCSV exports a student's list as word,meaning,learned rows.
func VocabCSV(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		d := st.Snapshot()
		s, ok := d.Student(studentID)
		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+safeFilename(s.Name)+`-vocab.csv"`)

		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"word", "meaning", "learned"})
		for _, v := range s.Vocab {
			learned := "0"
			if v.Learned {
				learned = "1"
			}
			_ = cw.Write([]string{v.Word, v.Meaning, learned})
		}
		cw.Flush()
	}
}

// VocabImport reads the same CSV back. Only the first two columns are
// used; a learned column is ignored so imported words always start
// unlearned. The header row is skipped.
func VocabImport(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			http.Redirect(w, r, "/vocab?error=invalid_csv", http.StatusSeeOther)
			return
		}
		studentID := r.FormValue("student_id")
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Redirect(w, r, vocabURL(studentID, "&error=invalid_csv"), http.StatusSeeOther)
			return
		}
		defer f.Close()

		cr := csv.NewReader(f)
		cr.FieldsPerRecord = -1
		rows, err := cr.ReadAll()
		if err != nil {
			http.Redirect(w, r, vocabURL(studentID, "&error=invalid_csv"), http.StatusSeeOther)
			return
		}

		added := 0
		for i, row := range rows {
			if i == 0 || len(row) < 2 {
				continue
			}
			word := strings.TrimSpace(row[0])
			meaning := strings.TrimSpace(row[1])
			if word != "" && meaning != "" {
				st.AddVocab(studentID, word, meaning)
				added++
			}
		}
		if added == 0 {
			http.Redirect(w, r, vocabURL(studentID, "&error=nothing_imported"), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, vocabURL(studentID, "&ok=csv_imported"), http.StatusSeeOther)
	}
}

// safeFilename strips quotes and control characters so a student name
// can't break out of the quoted Content-Disposition filename.
func safeFilename(name string) string {
	out := strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	out = strings.TrimSpace(out)
	if out == "" {
		out = "student"
	}
	return out
}

func sampleVocab(pool []store.VocabEntry, n int) []store.VocabEntry {
	out := append([]store.VocabEntry{}, pool...)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
