package render

import (
	"fmt"
	"html/template"
	"io"
	"slices"
	"strconv"

	"github.com/russross/blackfriday/v2"

	"github.com/lcap17/proyect-viernes/pages"
)

// ---------------------------------------------------------------------------
// HTML
// ---------------------------------------------------------------------------

// NavLink is one entry of the page menu.
type NavLink struct {
	Href  string
	Title string
}

// Nav links ps under base ("/pages"). With no pages it links the registry.
func Nav(base string, ps ...pages.Page) []NavLink {
	if len(ps) == 0 {
		ps = pages.Registry()
	}
	var out []NavLink
	for _, p := range ps {
		out = append(out, NavLink{Href: base + "/" + p.Slug, Title: p.Title})
	}
	return out
}

// HTMLFormatter renders a Document as a standalone HTML page. The controls
// and content share one GET form, so changing a control re-runs the page
// with the new query string.
type HTMLFormatter struct {
	Nav []NavLink
}

// HTML renders doc with the default page menu.
func HTML(w io.Writer, doc *pages.Document) error {
	return (&HTMLFormatter{Nav: Nav("/pages")}).Format(w, doc)
}

type htmlPage struct {
	Title  string
	Slug   string
	ID     string
	Nav    []NavLink
	Blocks []htmlBlock
}

// htmlBlock is a run of consecutive sections sharing a group.
type htmlBlock struct {
	Group    string
	Sections []htmlSection
}

type htmlSection struct {
	pages.Section
	Markdown template.HTML
	SVG      template.HTML
	ChartErr string
}

func (f *HTMLFormatter) Format(w io.Writer, doc *pages.Document) error {
	if doc == nil {
		return fmt.Errorf("render html: nil document")
	}
	page := htmlPage{Title: doc.Title, Slug: doc.Slug, ID: doc.ID, Nav: f.Nav}

	for _, s := range doc.Sections {
		hs := htmlSection{Section: s}
		switch s.Kind {
		case pages.SectionMarkdown:
			hs.Markdown = template.HTML(blackfriday.Run([]byte(s.Text))) //nolint:gosec // page authored text
		case pages.SectionChart:
			svg, err := ChartSVG(s.Chart)
			if err != nil {
				hs.ChartErr = err.Error()
			} else {
				hs.SVG = template.HTML(svg) //nolint:gosec // generated by go-chart
			}
		}

		if n := len(page.Blocks); n > 0 && page.Blocks[n-1].Group == s.Group {
			page.Blocks[n-1].Sections = append(page.Blocks[n-1].Sections, hs)
			continue
		}
		page.Blocks = append(page.Blocks, htmlBlock{Group: s.Group, Sections: []htmlSection{hs}})
	}

	if err := htmlTpl.Execute(w, page); err != nil {
		return fmt.Errorf("render html %s: %w", doc.Slug, err)
	}
	return nil
}

// Index renders the landing page listing nav.
func Index(w io.Writer, nav []NavLink) error {
	return indexTpl.Execute(w, nav)
}

var indexTpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>tablero</title>
<style>body{font-family:sans-serif;margin:2em;line-height:1.6}</style>
</head>
<body>
<h1>tablero</h1>
<ul>
{{range .}}<li><a href="{{.Href}}">{{.Title}}</a></li>
{{end}}</ul>
</body>
</html>
`))

var htmlTpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"has": func(values []string, v string) bool { return slices.Contains(values, v) },
	"at": func(values []string, i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	},
}).Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:sans-serif;margin:0;line-height:1.5;display:flex}
nav{width:14em;min-height:100vh;background:#f5f5f5;padding:1em;box-sizing:border-box}
nav a{display:block;padding:4px 0}
main{flex:1;padding:1em 2em;max-width:64em}
table{border-collapse:collapse;margin-bottom:1em}
th,td{border:1px solid #ddd;padding:4px 8px;text-align:left}
th{background:#f5f5f5}
td.number{text-align:right}
pre{background:#f5f5f5;padding:1em;border-radius:4px;overflow-x:auto}
.metrics{display:flex;gap:2em}
.metric .value{font-size:1.8em}
.warning{background:#fef3c7;padding:.5em 1em}
.error{background:#fee2e2;padding:.5em 1em}
.info{background:#dbeafe;padding:.5em 1em}
.success{background:#d1fae5;padding:.5em 1em}
.control{margin:.5em 0}
</style>
</head>
<body>
<nav>
<strong>tablero</strong>
{{range .Nav}}<a href="{{.Href}}">{{.Title}}</a>
{{end}}</nav>
<main>
<form method="get">
{{range .Blocks}}{{if .Group}}<details>
<summary>{{.Group}}</summary>
{{range .Sections}}{{template "section" .}}{{end}}</details>
{{else}}{{range .Sections}}{{template "section" .}}{{end}}{{end}}{{end}}<p><button type="submit">Aplicar</button></p>
</form>
</main>
</body>
</html>
{{define "section"}}{{if eq .Kind "title"}}<h1>{{.Text}}</h1>
{{else if eq .Kind "header"}}<h2>{{.Text}}</h2>
{{else if eq .Kind "subheader"}}<h3>{{.Text}}</h3>
{{else if eq .Kind "markdown"}}{{.Markdown}}
{{else if eq .Kind "text"}}<p>{{.Text}}</p>
{{else if eq .Kind "link"}}<p><a href="{{.URL}}">{{.Text}}</a></p>
{{else if eq .Kind "code"}}<pre><code>{{.Text}}</code></pre>
{{else if eq .Kind "warning"}}<p class="warning">{{.Text}}</p>
{{else if eq .Kind "error"}}<p class="error">{{.Text}}</p>
{{else if eq .Kind "info"}}<p class="info">{{.Text}}</p>
{{else if eq .Kind "success"}}<p class="success">{{.Text}}</p>
{{else if eq .Kind "table"}}{{template "table" .Table}}
{{else if eq .Kind "metrics"}}<div class="metrics">{{range .Metrics}}<div class="metric"><div>{{.Label}}</div><div class="value">{{.Value}}</div>{{if .Period}}<div class="period">{{.Period}}</div>{{end}}</div>{{end}}</div>
{{else if eq .Kind "chart"}}{{if .SVG}}<figure class="chart">{{.SVG}}</figure>{{else}}<p class="info">{{.ChartErr}}</p>{{end}}
{{else if eq .Kind "record"}}<h4>{{.Text}}</h4><table>{{range .Record}}<tr><th>{{.Name}}</th><td>{{.Value}}</td></tr>{{end}}</table>
{{else if eq .Kind "control"}}{{template "control" .Control}}
{{end}}{{end}}
{{define "table"}}{{if .}}{{if .Title}}<h4>{{.Title}}</h4>{{end}}<table>
<tr>{{range .Columns}}<th>{{.Label}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>{{end}}{{end}}
{{define "control"}}<div class="control">{{if eq .Type "checkbox"}}<label><input type="checkbox" name="{{.Name}}" value="on"{{if .Checked}} checked{{end}} onchange="this.form.submit()"> {{.Label}}</label>
{{else if eq .Type "slider"}}<label>{{.Label}} <input type="range" name="{{.Name}}" min="{{num .Min}}" max="{{num .Max}}" step="{{num .Step}}" value="{{.Value}}" onchange="this.form.submit()"></label> <output>{{.Value}}</output>
{{else if eq .Type "range"}}<label>{{.Label}} <input type="number" name="{{.MinName}}" min="{{num .Min}}" max="{{num .Max}}" step="{{num .Step}}" value="{{at .Values 0}}"> – <input type="number" name="{{.MaxName}}" min="{{num .Min}}" max="{{num .Max}}" step="{{num .Step}}" value="{{at .Values 1}}"></label>
{{else if eq .Type "number"}}<label>{{.Label}} <input type="number" name="{{.Name}}" min="{{num .Min}}" max="{{num .Max}}" step="{{num .Step}}" value="{{.Value}}"></label>
{{else if eq .Type "select"}}<label>{{.Label}} <select name="{{.Name}}" onchange="this.form.submit()">{{$v := .Value}}{{range .Options}}<option{{if eq . $v}} selected{{end}}>{{.}}</option>{{end}}</select></label>
{{else if eq .Type "multiselect"}}<label>{{.Label}} <input type="hidden" name="{{.Name}}" value=""><select name="{{.Name}}" multiple>{{$vs := .Values}}{{range .Options}}<option{{if has $vs .}} selected{{end}}>{{.}}</option>{{end}}</select></label>
{{else if eq .Type "radio"}}<fieldset><legend>{{.Label}}</legend>{{$n := .Name}}{{$v := .Value}}{{range .Options}}<label><input type="radio" name="{{$n}}" value="{{.}}"{{if eq . $v}} checked{{end}}> {{.}}</label> {{end}}</fieldset>
{{else if eq .Type "text"}}<label>{{.Label}} <input type="text" name="{{.Name}}" value="{{.Value}}"></label>
{{else if eq .Type "date"}}<label>{{.Label}} <input type="date" name="{{.Name}}" value="{{.Value}}"></label>
{{else if eq .Type "button"}}<button type="submit" name="{{.Name}}" value="1">{{.Label}}</button>
{{end}}</div>
{{end}}`))
