package render

import (
	"html/template"
	"io"

	"clubforms-backend/internal/domain"
)

// Page is the data behind the applicant-facing form page.
type Page struct {
	Title       string
	Description string
	Action      string
	Version     int32
	Prompts     []Prompt
	Closed      bool
}

// NewPage builds the page for def; action is the URL the form posts to.
func NewPage(def *domain.FormDefinition, title, description, action string) Page {
	return Page{
		Title:       title,
		Description: description,
		Action:      action,
		Version:     def.Version,
		Prompts:     Prompts(def),
		Closed:      !def.IsOpen(),
	}
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
</head>
<body>
<h1>{{ .Title }}</h1>
{{ with .Description }}<p class="description">{{ . }}</p>{{ end }}
{{ if .Closed }}
<p class="closed">Applications for this form are closed.</p>
{{ else }}
<form id="application" method="post" action="{{ .Action }}">
<input type="hidden" name="_version" value="{{ .Version }}">
{{ range .Prompts }}
<div class="field">
<label for="field-{{ .Name }}">{{ .Label }}{{ if .Required }} *{{ end }}</label>
<input id="field-{{ .Name }}" name="{{ .Name }}" type="{{ .InputType }}"{{ if eq .InputType "number" }} step="any"{{ end }}{{ if .Required }} required{{ end }}>
</div>
{{ end }}
<button type="submit">Submit</button>
</form>
{{ end }}
</body>
</html>
`

var pageTmpl = template.Must(template.New("form").Parse(pageTemplate))

// HTML writes the form page.
func HTML(w io.Writer, p Page) error {
	return pageTmpl.Execute(w, p)
}
