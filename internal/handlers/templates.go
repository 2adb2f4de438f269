package handlers

import (
	"os"
	"path/filepath"
)

// TemplatesBase resolves the templates directory. The env override
// exists so tests can point at the repo copy from a package dir.
func TemplatesBase() string {
	if v := os.Getenv("CLASSBOARD_TEMPLATES"); v != "" {
		return v
	}
	return "templates"
}

func pagePath(name string) string {
	return filepath.Join(TemplatesBase(), "pages", name)
}
