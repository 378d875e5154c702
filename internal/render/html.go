// Package render turns an executed plan into something a chat user can
// read: an HTML card rasterized to PNG, or plain text when no browser is
// available.
package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rahul/finbot/internal/catalog"
	"github.com/rahul/finbot/internal/engine"
	"github.com/rahul/finbot/internal/formula"
)

// CardSelector is the element captured by the screenshot.
const CardSelector = "#card"

var strict = bluemonday.StrictPolicy()

// clean strips any markup the plan generator put into free text.
// html/template escapes the result again on output.
func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

type cardStep struct {
	Number      int
	Name        string
	Template    string
	Substituted string
}

type cardData struct {
	Width          int
	Interpretation string
	Steps          []cardStep
	FinalVariable  string
	Final          string
}

var cardTemplate = template.Must(template.New("card").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { margin: 0; background: #FFFFFF; font-family: Arial, sans-serif; }
  #card { width: {{.Width}}px; padding: 40px; box-sizing: border-box; background: #FFFFFF; }
  h1 { color: #1E3A8A; font-size: 22px; text-align: center; margin: 0 0 20px 0; }
  hr { border: none; border-top: 1px solid #E5E7EB; margin: 0 0 25px 0; }
  .step { margin-bottom: 25px; }
  .name { color: #111827; font-weight: bold; font-size: 18px; margin-bottom: 10px; }
  .formula { color: #6B7280; font-family: 'Latin Modern Math', 'Courier New', monospace; font-size: 16px; margin: 0 0 10px 15px; }
  .calc { color: #1E88E5; font-family: 'Courier New', monospace; font-weight: bold; font-size: 15px; margin-left: 15px; word-break: break-all; }
  .final { margin-top: 10px; padding: 15px; background: #EFF6FF; color: #1E3A8A; font-weight: bold; font-size: 18px; border-radius: 6px; }
</style>
</head>
<body>
<div id="card">
  <h1>{{.Interpretation}}</h1>
  <hr>
  {{range .Steps}}
  <div class="step">
    <div class="name">{{.Number}}. {{.Name}}</div>
    <div class="formula">Fórmula: {{.Template}}</div>
    <div class="calc">Cálculo: {{.Substituted}}</div>
  </div>
  {{end}}
  {{if .Final}}<div class="final">Respuesta: {{.FinalVariable}} = {{.Final}}</div>{{end}}
</div>
</body>
</html>
`))

func buildCard(exec *engine.Execution, cat *catalog.Catalog, width int) cardData {
	data := cardData{
		Width:          width,
		Interpretation: clean(exec.Interpretation),
		FinalVariable:  exec.FinalVariable,
	}
	for i, s := range exec.Steps {
		data.Steps = append(data.Steps, cardStep{
			Number:      i + 1,
			Name:        clean(s.Name),
			Template:    cat.Template(s.Formula),
			Substituted: s.Substituted,
		})
	}
	if v, ok := exec.Final(); ok {
		data.Final = formula.Format(v)
	}
	return data
}

// HTML renders the solution card as a standalone document.
func HTML(exec *engine.Execution, cat *catalog.Catalog, width int) (string, error) {
	if exec == nil {
		return "", fmt.Errorf("render: nil execution")
	}
	if cat == nil {
		cat = catalog.Default()
	}
	if width <= 0 {
		width = 800
	}
	var buf bytes.Buffer
	if err := cardTemplate.Execute(&buf, buildCard(exec, cat, width)); err != nil {
		return "", fmt.Errorf("render card: %w", err)
	}
	return buf.String(), nil
}

// Text renders the solution as a chat message, used when no image can be
// produced.
func Text(exec *engine.Execution, cat *catalog.Catalog) string {
	if exec == nil {
		return ""
	}
	if cat == nil {
		cat = catalog.Default()
	}
	data := buildCard(exec, cat, 0)

	var b strings.Builder
	if data.Interpretation != "" {
		fmt.Fprintf(&b, "*%s*\n\n", data.Interpretation)
	}
	for _, s := range data.Steps {
		fmt.Fprintf(&b, "%d. %s\n", s.Number, s.Name)
		fmt.Fprintf(&b, "   Fórmula: %s\n", s.Template)
		fmt.Fprintf(&b, "   Cálculo: %s\n\n", s.Substituted)
	}
	if data.Final != "" {
		fmt.Fprintf(&b, "Respuesta: %s = %s", data.FinalVariable, data.Final)
	}
	return strings.TrimRight(b.String(), "\n")
}
