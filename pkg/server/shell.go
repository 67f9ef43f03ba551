package server

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"slices"

	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/dashboard"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/stats"
)

type shellData struct {
	Tabs    dashboard.Tabs
	Active  dashboard.Tab
	Query   dashboard.Query
	Frame   string
	KPIs    *stats.KPIs
	Genres  []string
	ColorBy []string
}

var shellFuncs = template.FuncMap{
	"count":    chart.FormatCount,
	"float":    chart.FormatFloat,
	"label":    chart.GenreLabel,
	"contains": slices.Contains[[]string],
	"has":      dashboard.Tab.HasControl,
}

var shellTemplate = template.Must(template.New("shell").Funcs(shellFuncs).Parse(shellHTML))

func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("tab")
	if id == "" {
		id = s.tabs[0].ID
	}
	tab, err := s.tabs.Find(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := dashboard.ParseQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := shellData{
		Tabs:    s.tabs,
		Active:  tab,
		Query:   q,
		Frame:   frameURL(tab, q),
		Genres:  s.data.GenreNames(),
		ColorBy: []string{chart.ColorByGenre, chart.ColorBySubgenre},
	}
	if tab.ID == s.tabs[0].ID {
		data.KPIs = &s.summary.KPIs
	}

	var buf bytes.Buffer
	if err := shellTemplate.Execute(&buf, data); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render shell"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// frameURL points the tab iframe at /tabs/{id}, forwarding the controls the
// tab exposes.
func frameURL(tab dashboard.Tab, q dashboard.Query) string {
	v := url.Values{}
	if tab.HasControl(dashboard.ControlGenre) && q.Genre != "" {
		v.Set(dashboard.ControlGenre, q.Genre)
	}
	if tab.HasControl(dashboard.ControlGenres) {
		for _, g := range q.Genres {
			v.Add(dashboard.ControlGenres, g)
		}
	}
	if tab.HasControl(dashboard.ControlColor) && q.ColorBy != "" {
		v.Set(dashboard.ControlColor, q.ColorBy)
	}
	u := url.URL{Path: "/tabs/" + url.PathEscape(tab.ID), RawQuery: v.Encode()}
	return u.String()
}

const shellHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Spotify Songs Analysis · {{.Active.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 0 auto; max-width: 1000px; color: #333; }
header { text-align: center; }
nav a { display: inline-block; padding: 8px 14px; color: #2E86AB; text-decoration: none; }
nav a.active { border-bottom: 3px solid #2E86AB; font-weight: bold; }
.kpis { display: flex; gap: 12px; justify-content: center; margin: 20px 0; }
.kpi { border: 1px solid #ddd; border-radius: 6px; padding: 10px 16px; text-align: center; }
.kpi b { display: block; font-size: 22px; color: #2E86AB; }
form { margin: 12px 0; }
iframe { border: 0; width: 100%; height: 1200px; }
</style>
</head>
<body>
<header><h1>Spotify Songs Analysis</h1></header>
<nav>
{{- range .Tabs}}
<a href="/?tab={{.ID}}"{{if eq .ID $.Active.ID}} class="active"{{end}}>{{.Title}}</a>
{{- end}}
</nav>
<section>
<h2>{{.Active.Title}}</h2>
<p>{{.Active.Summary}}</p>
<ul>
{{- range .Active.Questions}}
<li>{{.}}</li>
{{- end}}
</ul>
</section>
{{- with .KPIs}}
<div class="kpis">
<div class="kpi"><b>{{count .Songs}}</b>songs</div>
<div class="kpi"><b>{{count .Artists}}</b>artists</div>
<div class="kpi"><b>{{.Genres}}</b>genres</div>
<div class="kpi"><b>{{.Subgenres}}</b>subgenres</div>
<div class="kpi"><b>{{.YearRange}}</b>years</div>
<div class="kpi"><b>{{float .MeanPopularity}}</b>avg popularity</div>
</div>
{{- end}}
{{- if .Active.Controls}}
<form method="get" action="/">
<input type="hidden" name="tab" value="{{.Active.ID}}">
{{- if has .Active "genre"}}
<label>Genre <select name="genre">
{{- range .Genres}}
<option value="{{.}}"{{if eq . $.Query.Genre}} selected{{end}}>{{label .}}</option>
{{- end}}
</select></label>
{{- end}}
{{- if has .Active "genres"}}
<label>Genres <select name="genres" multiple>
{{- range .Genres}}
<option value="{{.}}"{{if contains $.Query.Genres .}} selected{{end}}>{{label .}}</option>
{{- end}}
</select></label>
{{- end}}
{{- if has .Active "color"}}
<label>Color by <select name="color">
{{- range .ColorBy}}
<option value="{{.}}"{{if eq . $.Query.ColorBy}} selected{{end}}>{{.}}</option>
{{- end}}
</select></label>
{{- end}}
<button type="submit">Apply</button>
</form>
{{- end}}
<iframe src="{{.Frame}}" title="{{.Active.Title}}"></iframe>
</body>
</html>
`
