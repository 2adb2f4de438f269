package handlers

import (
	"html/template"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/the36day/classboard/internal/store"
)

// pinRE is the only PIN format the setup form accepts. The store itself
// keeps whatever it is given; this boundary does the validating.
var pinRE = regexp.MustCompile(`^\d{4,6}$`)

type setupStudentVM struct {
	Student   store.Student
	GroupName string
	HasPin    bool
}

func SetupPage(t *template.Template, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := st.Snapshot()

		teachers := append([]store.Teacher{}, d.Teachers...)
		sort.SliceStable(teachers, func(i, j int) bool { return teachers[i].Name < teachers[j].Name })
		groups := append([]store.Group{}, d.Groups...)
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })

		students := make([]setupStudentVM, 0, len(d.Students))
		for _, s := range d.Students {
			vm := setupStudentVM{Student: s, GroupName: "—", HasPin: s.ParentPin != ""}
			if g, ok := d.Group(s.GroupID); ok {
				vm.GroupName = g.Name
			}
			students = append(students, vm)
		}

		view, err := t.Clone()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := view.ParseFiles(pagePath("setup.tmpl")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		data := map[string]any{
			"Title":    "Setup",
			"Teachers": teachers,
			"Groups":   groups,
			"Students": students,
			"Levels":   store.Levels,
			"Avatars":  store.Avatars,
			"Flash":    MakeFlash(r, "", ""),
		}
		if err := view.ExecuteTemplate(w, "setup.tmpl", data); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	}
}

func SetupAddTeacher(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		name := strings.TrimSpace(r.FormValue("name"))
		if name == "" {
			http.Redirect(w, r, "/setup?error=missing", http.StatusSeeOther)
			return
		}
		st.AddTeacher(name)
		http.Redirect(w, r, "/setup?ok=teacher_added", http.StatusSeeOther)
	}
}

func SetupAddGroup(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		name := strings.TrimSpace(r.FormValue("name"))
		teacherID := r.FormValue("teacher_id")
		if name == "" || teacherID == "" {
			http.Redirect(w, r, "/setup?error=missing", http.StatusSeeOther)
			return
		}
		st.AddGroup(store.GroupInput{
			Name:      name,
			Level:     r.FormValue("level"),
			TeacherID: teacherID,
		})
		http.Redirect(w, r, "/setup?ok=group_added", http.StatusSeeOther)
	}
}

func SetupAddStudent(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		name := strings.TrimSpace(r.FormValue("name"))
		groupID := r.FormValue("group_id")
		if name == "" || groupID == "" {
			http.Redirect(w, r, "/setup?error=missing", http.StatusSeeOther)
			return
		}
		st.AddStudent(store.StudentInput{
			Name:    name,
			GroupID: groupID,
			Avatar:  r.FormValue("avatar"), // empty = random
		})
		http.Redirect(w, r, "/setup?ok=student_added", http.StatusSeeOther)
	}
}

// SetupSetPin sets, changes or removes a student's parent PIN. An empty
// submission removes the PIN; anything else must be 4–6 digits.
func SetupSetPin(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		studentID := r.FormValue("student_id")
		pin := strings.TrimSpace(r.FormValue("pin"))

		if _, ok := st.Snapshot().Student(studentID); !ok {
			http.Redirect(w, r, "/setup?error=student_not_found", http.StatusSeeOther)
			return
		}
		if pin == "" {
			st.SetParentPin(studentID, "")
			http.Redirect(w, r, "/setup?ok=pin_removed", http.StatusSeeOther)
			return
		}
		if !pinRE.MatchString(pin) {
			http.Redirect(w, r, "/setup?error=invalid_pin", http.StatusSeeOther)
			return
		}
		st.SetParentPin(studentID, pin)
		http.Redirect(w, r, "/setup?ok=pin_set", http.StatusSeeOther)
	}
}

// BackupExport downloads the aggregate as a pretty-printed JSON file
// with a timestamped name.
func BackupExport(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := st.Export()
		if err != nil {
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		stamp := time.Now().UTC().Format("2006-01-02-15-04-05")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="the36-backup-`+stamp+`.json"`)
		_, _ = w.Write(raw)
	}
}

// BackupImport restores a backup file. Shape validation happens before
// any mutation, so a rejected file leaves the store untouched.
func BackupImport(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			http.Redirect(w, r, "/setup?error=invalid_import", http.StatusSeeOther)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Redirect(w, r, "/setup?error=invalid_import", http.StatusSeeOther)
			return
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			http.Redirect(w, r, "/setup?error=invalid_import", http.StatusSeeOther)
			return
		}
		if err := st.ReplaceAll(raw); err != nil {
			http.Redirect(w, r, "/setup?error=invalid_import", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/setup?ok=imported", http.StatusSeeOther)
	}
}

// BackupClear wipes everything. The form carries a confirm field so a
// stray POST can't do it by accident.
func BackupClear(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.FormValue("confirm") != "yes" {
			http.Redirect(w, r, "/setup", http.StatusSeeOther)
			return
		}
		st.ClearAll()
		http.Redirect(w, r, "/setup?ok=cleared", http.StatusSeeOther)
	}
}
