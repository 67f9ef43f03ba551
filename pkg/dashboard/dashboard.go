// Package dashboard defines the dashboard's tabs and assembles their pages.
//
// Tabs are declared in an embedded YAML file: each has an id, a title, a
// short summary, the questions it answers, and the charts it shows. The
// server and the CLI resolve tabs through [Default] and render them with
// [Tab.Page].
package dashboard

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/errors"
)

//go:embed tabs.yaml
var tabsYAML []byte

// Controls a tab may expose. Each maps to a query parameter of the same name.
const (
	ControlGenre  = "genre"
	ControlGenres = "genres"
	ControlColor  = "color"
)

var knownControls = []string{ControlGenre, ControlGenres, ControlColor}

// Tab is one dashboard tab.
type Tab struct {
	ID        string   `yaml:"id" json:"id"`
	Title     string   `yaml:"title" json:"title"`
	Summary   string   `yaml:"summary" json:"summary"`
	Questions []string `yaml:"questions" json:"questions"`
	Charts    []string `yaml:"charts" json:"charts"`
	Controls  []string `yaml:"controls,omitempty" json:"controls,omitempty"`
}

// Tabs is an ordered tab list.
type Tabs []Tab

type tabsFile struct {
	Tabs Tabs `yaml:"tabs"`
}

// Parse decodes and validates a tabs document.
func Parse(data []byte) (Tabs, error) {
	var f tabsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse tabs")
	}
	if len(f.Tabs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no tabs defined")
	}

	names := chart.Names()
	seen := make(map[string]bool, len(f.Tabs))
	for _, t := range f.Tabs {
		if t.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "tab %q has no id", t.Title)
		}
		if seen[t.ID] {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "duplicate tab %q", t.ID)
		}
		seen[t.ID] = true
		if len(t.Charts) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "tab %q has no charts", t.ID)
		}
		for _, c := range t.Charts {
			if !slices.Contains(names, c) {
				return nil, errors.New(errors.ErrCodeInvalidConfig, "tab %q: unknown chart %q", t.ID, c)
			}
		}
		for _, c := range t.Controls {
			if !slices.Contains(knownControls, c) {
				return nil, errors.New(errors.ErrCodeInvalidConfig, "tab %q: unknown control %q", t.ID, c)
			}
		}
	}
	return f.Tabs, nil
}

// LoadFile reads a tabs document from path.
func LoadFile(path string) (Tabs, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "tabs file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Parse(data)
}

// Default returns the embedded tabs. The embedded file is checked by the
// tests, so an error here is a build defect.
func Default() Tabs {
	tabs, err := Parse(tabsYAML)
	if err != nil {
		panic(fmt.Sprintf("dashboard: embedded tabs: %v", err))
	}
	return tabs
}

// Find returns the tab with the given id.
func (ts Tabs) Find(id string) (Tab, error) {
	for _, t := range ts {
		if t.ID == id {
			return t, nil
		}
	}
	return Tab{}, errors.New(errors.ErrCodeTabNotFound, "unknown tab %q (must be one of: %s)", id, strings.Join(ts.IDs(), ", "))
}

// IDs returns the tab ids in display order.
func (ts Tabs) IDs() []string {
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	return ids
}

// NeedsPositions reports whether any chart of the tab plots strip positions.
func (t Tab) NeedsPositions() bool {
	return slices.ContainsFunc(t.Charts, chart.NeedsPositions)
}

// HasControl reports whether the tab exposes control c.
func (t Tab) HasControl(c string) bool {
	return slices.Contains(t.Controls, c)
}

// Query holds the control values of a tab request.
type Query struct {
	Genre   string
	Genres  []string
	ColorBy string
}

// ParseQuery reads the control query parameters. genres accepts both
// repeated parameters and a comma-separated list.
func ParseQuery(v url.Values) (Query, error) {
	q := Query{
		Genre:   strings.ToLower(strings.TrimSpace(v.Get(ControlGenre))),
		ColorBy: strings.TrimSpace(v.Get(ControlColor)),
	}
	if q.Genre != "" {
		if err := errors.ValidateGenre(q.Genre); err != nil {
			return Query{}, err
		}
	}
	for _, raw := range v[ControlGenres] {
		for _, g := range strings.Split(raw, ",") {
			g = strings.ToLower(strings.TrimSpace(g))
			if g == "" {
				continue
			}
			if err := errors.ValidateGenre(g); err != nil {
				return Query{}, err
			}
			if !slices.Contains(q.Genres, g) {
				q.Genres = append(q.Genres, g)
			}
		}
	}
	switch q.ColorBy {
	case "", chart.ColorByGenre, chart.ColorBySubgenre:
	default:
		return Query{}, errors.New(errors.ErrCodeInvalidInput, "color must be %s or %s, got %q", chart.ColorByGenre, chart.ColorBySubgenre, q.ColorBy)
	}
	return q, nil
}

// Apply copies the query into a chart input.
func (q Query) Apply(in chart.Input) chart.Input {
	if q.Genre != "" {
		in.Genre = q.Genre
	}
	if len(q.Genres) > 0 {
		in.Genres = q.Genres
	}
	if q.ColorBy != "" {
		in.ColorBy = q.ColorBy
	}
	return in
}

// BuildCharts builds every chart of the tab.
func (t Tab) BuildCharts(in chart.Input) ([]chart.Chart, error) {
	cs := make([]chart.Chart, 0, len(t.Charts))
	for _, name := range t.Charts {
		c, err := chart.Build(name, in)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "tab %s", t.ID)
		}
		cs = append(cs, c)
	}
	return cs, nil
}

// Page builds the tab's charts into one go-echarts page.
func (t Tab) Page(in chart.Input) (*components.Page, error) {
	cs, err := t.BuildCharts(in)
	if err != nil {
		return nil, err
	}
	return chart.Page(t.Title, cs...), nil
}
