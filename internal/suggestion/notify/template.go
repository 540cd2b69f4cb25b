package notify

import (
	"bytes"
	"errors"
	"text/template"
)

const DefaultTemplate = `[Suggestion {{.EventLabel}}]
#{{.ID}} PLZ {{.PostalCode}}
Address: {{.Address}}
Reason: {{.Reason}}
Status: {{.Status}}
{{- if .Reviewer }}
Reviewed by: {{.Reviewer}}{{ if .Notes }} ({{.Notes}}){{ end }}
{{- end }}
{{- if .ReviewURL }}
Review: {{.ReviewURL}}
{{- end }}`

// TemplateData provides fields for rendering notification content.
type TemplateData struct {
	ID         int
	PostalCode string
	Address    string
	Reason     string
	Status     string
	Reviewer   string
	Notes      string
	Submitted  string
	ReviewURL  string
	Event      string
	EventLabel string
}

// Template renders notification content.
type Template struct {
	tpl *template.Template
}

// NewTemplate parses a notification template, falling back to DefaultTemplate.
func NewTemplate(tpl string) (*Template, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("suggestion-notification").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{tpl: parsed}, nil
}

// Render applies the template to data.
func (t *Template) Render(data TemplateData) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("suggestion template: nil")
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
