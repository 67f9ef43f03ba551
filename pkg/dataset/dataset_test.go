package dataset

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/jitter"
)

const samplePath = "testdata/spotify_songs_sample.csv"

func loadSample(t *testing.T) *Dataset {
	t.Helper()
	d, err := LoadFile(samplePath)
	require.NoError(t, err)
	return d
}

func TestLoadSample(t *testing.T) {
	d := loadSample(t)

	assert.Equal(t, 25, d.Len())
	assert.Equal(t, 1, d.Skipped, "row with non-numeric popularity")
	assert.Equal(t, 1, d.Undated)
	assert.Equal(t, []string{"edm", "latin", "pop", "r&b", "rap", "rock"}, d.GenreNames())
	assert.Len(t, d.Artists(), 9)

	first := d.Tracks[0]
	assert.Equal(t, "t000", first.ID)
	assert.Equal(t, "Midnight Drive", first.Name)
	assert.Equal(t, 72, first.Popularity)
	assert.Equal(t, 2000, first.Year)
	assert.Equal(t, time.January, first.Month)
	assert.Equal(t, "Winter", first.Season)
	assert.InDelta(t, 243998.0/60000, first.DurationMin, 1e-12)
	assert.Equal(t, "dance pop", first.Subgenre)
}

func TestLoadPartialDates(t *testing.T) {
	d := loadSample(t)

	byID := make(map[string]Track)
	for _, tr := range d.Tracks {
		byID[tr.ID] = tr
	}

	yearOnly := byID["t004"]
	assert.Equal(t, "2007", yearOnly.RawDate)
	assert.Equal(t, time.January, yearOnly.Month)
	assert.Equal(t, "Winter", yearOnly.Season)

	yearMonth := byID["t009"]
	assert.Equal(t, time.October, yearMonth.Month)
	assert.Equal(t, "Fall", yearMonth.Season)

	undated := byID["tbad2"]
	assert.False(t, undated.Dated())
	assert.Zero(t, undated.Year)
	assert.Empty(t, undated.Season)
}

func TestLoadMissingColumns(t *testing.T) {
	_, err := Load(strings.NewReader("track_id,track_name\nt1,x\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	assert.Contains(t, err.Error(), "track_popularity")
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := LoadFile("testdata/nope.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestLoadSkipsUnplottablePopularity(t *testing.T) {
	csv := "track_popularity,playlist_genre,energy,speechiness,track_album_release_date\n" +
		"72,pop,0.5,0.1,2019-07-01\n" +
		"101,pop,0.5,0.1,2019-07-01\n" +
		"Inf,rock,0.5,0.1,2019-07-01\n" +
		"-inf,rock,0.5,0.1,2019-07-01\n" +
		"-3,rock,0.5,0.1,2019-07-01\n" +
		"NaN,rock,0.5,0.1,2019-07-01\n" +
		"0,rock,0.5,0.1,2019-07-01\n" +
		"100,rap,0.5,0.1,2019-07-01\n"
	d, err := Load(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 5, d.Skipped)

	positions, err := jitter.Compute(d.JitterRecords(), jitter.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, positions, 3)
}

func TestLoadOptionalNumericsBecomeNaN(t *testing.T) {
	csv := "track_popularity,playlist_genre,energy,speechiness,track_album_release_date,tempo\n" +
		"50,Pop,0.5,0.1,2019-07-01,\n"
	d, err := Load(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, d.Len())
	tr := d.Tracks[0]
	assert.Equal(t, "pop", tr.Genre, "genres are lowercased")
	assert.True(t, math.IsNaN(tr.Tempo))
	assert.Equal(t, "Summer", tr.Season)
}

func TestSeason(t *testing.T) {
	tests := []struct {
		month time.Month
		want  string
	}{
		{time.January, "Winter"},
		{time.February, "Winter"},
		{time.March, "Spring"},
		{time.May, "Spring"},
		{time.June, "Summer"},
		{time.August, "Summer"},
		{time.September, "Fall"},
		{time.November, "Fall"},
		{time.December, "Winter"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Season(tt.month), tt.month.String())
	}

	for _, s := range []string{"Winter", "Spring", "Summer", "Fall"} {
		_, ok := Seasons.Index(s)
		assert.True(t, ok, s)
	}
}

func TestFilters(t *testing.T) {
	d := loadSample(t)

	assert.Equal(t, 24, d.WithReleaseDate().Len())
	assert.Equal(t, 16, d.MinYear(2007).Len())
	assert.Equal(t, 8, d.YearRange(2000, 2002).Len())
	assert.Equal(t, 6, d.Genres("POP").Len())
	assert.Equal(t, 6, d.Genres("edm", "latin", "r&b").Len())
	assert.Same(t, d, d.Genres())

	for _, tr := range d.PopularAbove(60).Tracks {
		assert.Greater(t, tr.Popularity, 60)
	}
	for _, tr := range d.MinPopularity(60).Tracks {
		assert.GreaterOrEqual(t, tr.Popularity, 60)
	}

	custom := d.Filter(func(tr Track) bool { return tr.Artist == "Kato" })
	for _, tr := range custom.Tracks {
		assert.Equal(t, "Kato", tr.Artist)
	}
}

func TestFiltersDoNotShareState(t *testing.T) {
	d := loadSample(t)
	f := d.MinYear(2010)
	require.NotEmpty(t, f.Tracks)
	f.Tracks[0].Name = "changed"
	for _, tr := range d.Tracks {
		assert.NotEqual(t, "changed", tr.Name)
	}
}

func TestHash(t *testing.T) {
	a := loadSample(t)
	b := loadSample(t)
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Len(t, a.Hash(), 64)

	assert.NotEqual(t, a.Hash(), a.MinYear(2007).Hash())
	assert.Equal(t, a.MinYear(2007).Hash(), b.MinYear(2007).Hash())
	assert.Equal(t, a.Genres("rap", "pop").Hash(), b.Genres("pop", "rap").Hash())

	tracks := []Track{{ID: "x", Popularity: 1, Tempo: math.NaN()}}
	assert.Len(t, New(tracks).Hash(), 64, "NaN features still hash")
}

func TestJitterRecords(t *testing.T) {
	d := loadSample(t)
	records := d.JitterRecords()
	require.Len(t, records, 24)

	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Category]++
	}
	assert.Equal(t, map[string]int{"Winter": 7, "Spring": 6, "Summer": 6, "Fall": 5}, counts)

	r := records[0]
	assert.Equal(t, 72.0, r.Value)
	assert.Equal(t, "Midnight Drive", r.Meta[MetaName])
	assert.Equal(t, "2000-01-01", r.Meta[MetaReleaseDate])
	assert.Equal(t, "pop", r.Meta[MetaGenre])
	assert.Equal(t, "72", r.Meta[MetaPopularity])

	positions, err := jitter.Compute(records, jitter.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, positions, len(records))
}

func TestFeature(t *testing.T) {
	tr := Track{Danceability: 0.1, Energy: 0.2, Tempo: 120}
	for _, name := range ProfileFeatures {
		_, ok := tr.Feature(name)
		assert.True(t, ok, name)
	}
	v, _ := tr.Feature(FeatureTempo)
	assert.Equal(t, 120.0, v)
	_, ok := tr.Feature("bogus")
	assert.False(t, ok)
}
