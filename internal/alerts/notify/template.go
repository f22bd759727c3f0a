package notify

import (
	"bytes"
	"errors"
	"text/template"
)

const DefaultTemplate = `[Alerta {{.EventLabel}}]
Válvula: {{.Valve}}{{ if .Location }} ({{.Location}}){{ end }}
Tipo: {{.Type}}
Severidad: {{.Severity}}
Estado: {{.PreviousState}} -> {{.State}}
Fecha: {{.Date}}
Descripción: {{.Description}}
Sugerencia: {{.Suggestion}}
{{ if .Role }}
Rol: {{.Role}}
{{ end }}`

// TemplateData provides fields for rendering notification content.
type TemplateData struct {
	AlertID       int64
	Valve         string
	Location      string
	Type          string
	Severity      string
	SeverityCode  string
	State         string
	StateCode     string
	PreviousState string
	Date          string
	Description   string
	Suggestion    string
	Role          string
	Event         string
	EventLabel    string
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
	parsed, err := template.New("alert-notification").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{tpl: parsed}, nil
}

// Render applies the template to data.
func (t *Template) Render(data TemplateData) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("alert template: nil")
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
