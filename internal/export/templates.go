package export

import (
	"bytes"
	"html/template"
	"strings"
	"time"
)

var documentTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
		"formatDate": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
	}
	documentTemplate = template.Must(template.New("document").Funcs(funcMap).Parse(documentTemplateText))
}

// TemplateData holds data for document template rendering
type TemplateData struct {
	Title     string
	CreatedAt time.Time
	Bilingual bool
	Blocks    []TemplateBlock
}

// TemplateBlock holds one rendered paragraph with its annotations
type TemplateBlock struct {
	TextHTML    template.HTML
	Translation string
	Notes       []TemplateNote
}

// TemplateNote holds grammar note data for the template
type TemplateNote struct {
	SourceText  string
	Explanation string
	Stale       bool
}

// RenderDocumentHTML renders the document template with provided data
func RenderDocumentHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const documentTemplateText = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Georgia, "Noto Serif CJK SC", serif; line-height: 2.1; max-width: 800px; margin: 2rem auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    ruby.annotated { background: #fff7d6; border-radius: 2px; }
    ruby.annotated rt { font-size: 0.6em; color: #a15c00; }
    sup.badge { color: #1a73e8; font-size: 0.7em; }
    .translation { color: #444; background: #f5f8ff; padding: 0.5rem 0.75rem; margin: 0.25rem 0 1rem; border-left: 3px solid #1a73e8; }
    .note { background: #f5f5f5; padding: 0.75rem 1rem; margin: 0.5rem 0; border-left: 3px solid #333; font-size: 0.9em; }
    .note .source { font-weight: bold; }
    .note.stale { opacity: 0.6; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">{{formatDate .CreatedAt "Jan 2, 2006"}}</div>
  {{range .Blocks}}
  <p>{{.TextHTML}}</p>
  {{if and $.Bilingual .Translation}}<div class="translation">{{.Translation}}</div>{{end}}
  {{range .Notes}}
  <div class="note{{if .Stale}} stale{{end}}"><span class="source">{{.SourceText}}</span>: {{.Explanation}}</div>
  {{end}}
  {{end}}
</body>
</html>`
