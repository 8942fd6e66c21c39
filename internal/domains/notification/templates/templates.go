// Package templates holds the guest-facing email bodies.
package templates

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed *.html
var files embed.FS

var funcs = template.FuncMap{
	"join":  strings.Join,
	"upper": strings.ToUpper,
}

// Parse loads every template; each event type has a template of the same name.
func Parse() (*template.Template, error) {
	return template.New("notification").Funcs(funcs).ParseFS(files, "*.html") //nolint:wrapcheck
}
