package util

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"default": func(defaultVal any, val any) any {
		if val == nil || val == "" {
			return defaultVal
		}
		return val
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"join": func(sep string, items []string) string {
		return strings.Join(items, sep)
	},
	"num": func(v float64) string {
		return fmt.Sprintf("%g", v)
	},
}

// MustTemplate parses a prompt template with the helper funcs. It panics on
// a malformed template and is meant for package-level prompt variables.
func MustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(text))
}

// Render executes tmpl with data. Prompts are plain text so no escaping is applied.
func Render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTemplate parses and renders text in one step.
func RenderTemplate(text string, data any) (string, error) {
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return text, nil
	}

	tmpl, err := template.New("prompt").Funcs(funcs).Parse(text)
	if err != nil {
		return "", err
	}
	return Render(tmpl, data)
}
