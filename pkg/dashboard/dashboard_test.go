package dashboard

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/dataset"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/jitter"
)

func TestDefaultTabs(t *testing.T) {
	tabs := Default()
	assert.Equal(t, []string{"overview", "genres", "lyrics", "audio", "seasons"}, tabs.IDs())

	for _, tab := range tabs {
		assert.NotEmpty(t, tab.Title, tab.ID)
		assert.NotEmpty(t, tab.Summary, tab.ID)
		assert.NotEmpty(t, tab.Questions, tab.ID)
	}

	seasons, err := tabs.Find("seasons")
	require.NoError(t, err)
	assert.True(t, seasons.NeedsPositions())
	assert.True(t, seasons.HasControl(ControlColor))

	genres, err := tabs.Find("genres")
	require.NoError(t, err)
	assert.False(t, genres.NeedsPositions())
	assert.True(t, genres.HasControl(ControlGenre))
}

func TestDefaultTabsCoverEveryChart(t *testing.T) {
	shown := map[string]bool{}
	for _, tab := range Default() {
		for _, c := range tab.Charts {
			shown[c] = true
		}
	}
	for _, name := range chart.Names() {
		assert.True(t, shown[name], "chart %s is on no tab", name)
	}
}

func TestFindUnknown(t *testing.T) {
	_, err := Default().Find("charts")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTabNotFound, errors.GetCode(err))
}

func TestParseInvalid(t *testing.T) {
	tests := map[string]string{
		"empty":           "tabs: []",
		"no id":           "tabs:\n  - title: X\n    charts: [strip]",
		"duplicate":       "tabs:\n  - id: a\n    charts: [strip]\n  - id: a\n    charts: [strip]",
		"no charts":       "tabs:\n  - id: a",
		"unknown chart":   "tabs:\n  - id: a\n    charts: [pie]",
		"unknown control": "tabs:\n  - id: a\n    charts: [strip]\n    controls: [zoom]",
		"not yaml":        "tabs: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidConfig, errors.GetCode(err))
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tabs:
  - id: seasons
    title: Seasons
    charts: [strip]
    controls: [color]
`), 0o644))

	tabs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	assert.True(t, tabs[0].HasControl(ControlColor))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery(url.Values{
		"genre":  {" Rock "},
		"genres": {"pop,edm", "pop", "r&b"},
		"color":  {"subgenre"},
	})
	require.NoError(t, err)
	assert.Equal(t, "rock", q.Genre)
	assert.Equal(t, []string{"pop", "edm", "r&b"}, q.Genres)
	assert.Equal(t, chart.ColorBySubgenre, q.ColorBy)

	in := q.Apply(chart.Input{Genre: "pop", ColorBy: chart.ColorByGenre})
	assert.Equal(t, "rock", in.Genre)
	assert.Equal(t, chart.ColorBySubgenre, in.ColorBy)

	empty, err := ParseQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, chart.Input{Genre: "pop"}, empty.Apply(chart.Input{Genre: "pop"}))

	_, err = ParseQuery(url.Values{"color": {"artist"}})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))

	_, err = ParseQuery(url.Values{"genres": {"pop,<script>"}})
	assert.Equal(t, errors.ErrCodeInvalidGenre, errors.GetCode(err))
}

func TestTabPages(t *testing.T) {
	d, err := dataset.LoadFile("../dataset/testdata/spotify_songs_sample.csv")
	require.NoError(t, err)
	positions, err := jitter.Compute(d.JitterRecords(), jitter.DefaultOptions())
	require.NoError(t, err)
	in := chart.Input{Data: d, Positions: positions}

	for _, tab := range Default() {
		t.Run(tab.ID, func(t *testing.T) {
			page, err := tab.Page(in)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, page.Render(&buf))
			assert.Contains(t, buf.String(), tab.Title)
		})
	}
}

func TestTabPageBadGenre(t *testing.T) {
	d, err := dataset.LoadFile("../dataset/testdata/spotify_songs_sample.csv")
	require.NoError(t, err)
	genres, err := Default().Find("genres")
	require.NoError(t, err)

	_, err = genres.Page(chart.Input{Data: d, Genre: "polka"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidGenre, errors.GetCode(err))
}
