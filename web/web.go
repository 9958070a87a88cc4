// Package web holds the HTML templates rendered by the handlers
package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses every page template. Timestamps are shown in loc.
func Templates(loc *time.Location) (*template.Template, error) {
	funcs := template.FuncMap{
		"localtime": func(t time.Time) string {
			return t.In(loc).Format("2006-01-02 15:04")
		},
		"date": func(t time.Time) string {
			return t.In(loc).Format("2006-01-02")
		},
	}

	return template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
