// Package web holds the server-rendered pages.
package web

import (
	"embed"
	"html/template"
	"strings"

	"github.com/timmy/promptbay/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by gin's c.HTML.
const (
	PageHome    = "home.html"
	PagePrompts = "prompts.html"
	PageSubmit  = "submit.html"
	PageError   = "error.html"
)

// Templates parses every embedded page with the shared helper funcs.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"categoryName": domain.CategoryName,
		"excerpt":      excerpt,
		"selected":     selected,
	}).ParseFS(templateFS, "templates/*.html")
}

// excerpt shortens s to at most n runes, appending an ellipsis when cut.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

// selected reports whether a form option matches the current value.
func selected(option, current string) bool {
	return strings.EqualFold(strings.TrimSpace(option), strings.TrimSpace(current))
}
