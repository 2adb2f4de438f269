package main

import (
	"log"
	"net/http"
	"os"

	"github.com/the36day/classboard/internal/db"
	"github.com/the36day/classboard/internal/program"
	"github.com/the36day/classboard/internal/storage"
	"github.com/the36day/classboard/internal/store"
	"github.com/the36day/classboard/internal/theme"
	"github.com/the36day/classboard/internal/web"
)

func main() {
	// Init DB (creates classboard.db in working dir)
	if err := db.Init(); err != nil {
		log.Fatalf("db init: %v", err)
	}

	kv := storage.NewDB(db.Conn())
	st := store.New(kv)
	pr := program.NewStore(kv)
	sp := program.NewStudentStore(kv)
	th := theme.NewStore(kv)

	r := web.Router(st, pr, sp, th)

	addr := getEnv("ADDR", ":8080")
	log.Printf("Classboard listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
