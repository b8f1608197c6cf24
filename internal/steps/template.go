package steps

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// templateData is what issue titles and bodies can refer to, for example
// "Widget is broken ({{.Context}})".
type templateData struct {
	Context string
	Event   string
	History []string
}

var templates sync.Map

// render executes text as a template. Text without actions is returned as is.
func render(text string, data templateData) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	var tmpl *template.Template
	if cached, ok := templates.Load(text); ok {
		tmpl = cached.(*template.Template)
	} else {
		parsed, err := template.New("issue").Option("missingkey=error").Parse(text)
		if err != nil {
			return "", fmt.Errorf("failed to parse template: %w", err)
		}
		actual, _ := templates.LoadOrStore(text, parsed)
		tmpl = actual.(*template.Template)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
