package web

import (
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/the36day/classboard/internal/handlers"
	"github.com/the36day/classboard/internal/program"
	"github.com/the36day/classboard/internal/store"
	"github.com/the36day/classboard/internal/theme"
)

func Router(st *store.Store, pr *program.Store, sp *program.StudentStore, th *theme.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	tmpl := mustParseTemplates(handlers.TemplatesBase(), th)

	r.Get("/", handlers.Home(tmpl, st))
	r.Get("/healthz", handlers.Health)
	r.Post("/theme/toggle", handlers.ThemeToggle(th))

	// Setup: teachers, groups, students, PINs, backup
	r.Get("/setup", handlers.SetupPage(tmpl, st))
	r.Post("/setup/teacher", handlers.SetupAddTeacher(st))
	r.Post("/setup/group", handlers.SetupAddGroup(st))
	r.Post("/setup/student", handlers.SetupAddStudent(st))
	r.Post("/setup/pin", handlers.SetupSetPin(st))
	r.Get("/backup.json", handlers.BackupExport(st))
	r.Post("/backup/import", handlers.BackupImport(st))
	r.Post("/backup/clear", handlers.BackupClear(st))

	// Group screen + its actions
	r.Route("/group/{groupID}", func(gr chi.Router) {
		gr.Get("/", handlers.GroupPage(tmpl, st))
		gr.Post("/score", handlers.GroupScore(st))
		gr.Post("/streak", handlers.GroupStreak(st))
		gr.Post("/session", handlers.GroupSession(st))
		gr.Post("/attendance", handlers.GroupAttendance(st))
		gr.Post("/attendance/all", handlers.GroupAllPresent(st))
		gr.Post("/note", handlers.GroupNote(st))
		gr.Post("/homework", handlers.GroupHomework(st))
		gr.Post("/clear", handlers.GroupClearToday(st))
	})

	r.Get("/leaderboard", handlers.Leaderboard(tmpl, st))

	// Vocabulary + practice
	r.Get("/vocab", handlers.VocabPage(tmpl, st))
	r.Post("/vocab/add", handlers.VocabAdd(st))
	r.Post("/vocab/bulk", handlers.VocabBulk(st))
	r.Post("/vocab/learned", handlers.VocabToggleLearned(st))
	r.Get("/vocab/{studentID}.csv", handlers.VocabCSV(st))
	r.Post("/vocab/import", handlers.VocabImport(st))
	r.Get("/vocab/practice", handlers.PracticeStart(tmpl, st))
	r.Post("/vocab/practice", handlers.PracticeGrade(tmpl, st))
	r.Post("/vocab/reward", handlers.PracticeReward(st))
	r.Post("/vocab/mark-learned", handlers.PracticeMarkLearned(st))

	// Teacher-facing program calendar
	r.Get("/program", handlers.ProgramPage(tmpl, pr))
	r.Post("/program/variant", handlers.ProgramSelect(pr))
	r.Post("/program/start", handlers.ProgramStart(pr))
	r.Post("/program/day", handlers.ProgramToggleDay(pr))
	r.Post("/program/reset", handlers.ProgramReset(pr))

	// Parent view: PIN-gated share page with its own program calendar
	r.Route("/p/{studentID}", func(pv chi.Router) {
		pv.Get("/", handlers.ParentView(tmpl, st, sp))
		pv.Post("/pin", handlers.ParentPinSubmit(st))
		pv.Get("/qr.png", handlers.QR(st))
		pv.Post("/program", handlers.ParentProgramSelect(st, sp))
		pv.Post("/program/start", handlers.ParentProgramStart(st, sp))
		pv.Post("/program/day", handlers.ParentProgramToggleDay(st, sp))
		pv.Post("/program/reset", handlers.ParentProgramReset(st, sp))
	})

	r.Get("/settings", handlers.SettingsPage(tmpl, st))
	r.Post("/settings", handlers.SettingsSave(st))
	r.Post("/settings/reset", handlers.SettingsReset(st))

	// Avatar assets
	r.Handle("/avatars/*", http.StripPrefix("/avatars/", http.FileServer(http.Dir("static/avatars"))))

	return r
}

func mustParseTemplates(baseDir string, th *theme.Store) *template.Template {
	funcs := template.FuncMap{
		"year":  func() string { return time.Now().Format("2006") },
		"theme": func() string { return th.Current() },
		"pct":   store.Percent,
		"inc":   func(i int) int { return i + 1 },
	}

	p := template.New("").Funcs(funcs)
	p = template.Must(p.ParseGlob(filepath.Join(baseDir, "layouts", "*.tmpl")))
	p = template.Must(p.ParseGlob(filepath.Join(baseDir, "partials", "*.tmpl")))
	return p
}
