package dataset

import (
	"strconv"
	"time"

	"github.com/matzehuels/trackdash/pkg/jitter"
)

// Track is one row of the songs table plus derived fields.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Popularity  int    `json:"popularity"`
	AlbumID     string `json:"album_id"`
	AlbumName   string `json:"album_name"`
	RawDate     string `json:"release_date"`
	PlaylistID  string `json:"playlist_id"`
	Playlist    string `json:"playlist"`
	Genre       string `json:"genre"`
	Subgenre    string `json:"subgenre"`

	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              float64 `json:"key"`
	Loudness         float64 `json:"loudness"`
	Mode             float64 `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	DurationMs       float64 `json:"duration_ms"`

	// Derived. ReleaseDate is zero when RawDate could not be parsed, in
	// which case Year, Month and Season are zero values too.
	ReleaseDate time.Time  `json:"-"`
	Year        int        `json:"year,omitempty"`
	Month       time.Month `json:"month,omitempty"`
	Season      string     `json:"season,omitempty"`
	DurationMin float64    `json:"duration_min"`
}

// Dated reports whether the release date parsed.
func (t Track) Dated() bool { return !t.ReleaseDate.IsZero() }

// Feature names accepted by [Track.Feature].
const (
	FeatureDanceability     = "danceability"
	FeatureEnergy           = "energy"
	FeatureValence          = "valence"
	FeatureAcousticness     = "acousticness"
	FeatureSpeechiness      = "speechiness"
	FeatureInstrumentalness = "instrumentalness"
	FeatureLiveness         = "liveness"
	FeatureLoudness         = "loudness"
	FeatureTempo            = "tempo"
)

// ProfileFeatures are the 0-1 audio features shown on the overview and radar
// charts.
var ProfileFeatures = []string{
	FeatureDanceability,
	FeatureEnergy,
	FeatureValence,
	FeatureAcousticness,
	FeatureSpeechiness,
	FeatureInstrumentalness,
}

// Feature returns the named audio feature.
func (t Track) Feature(name string) (float64, bool) {
	switch name {
	case FeatureDanceability:
		return t.Danceability, true
	case FeatureEnergy:
		return t.Energy, true
	case FeatureValence:
		return t.Valence, true
	case FeatureAcousticness:
		return t.Acousticness, true
	case FeatureSpeechiness:
		return t.Speechiness, true
	case FeatureInstrumentalness:
		return t.Instrumentalness, true
	case FeatureLiveness:
		return t.Liveness, true
	case FeatureLoudness:
		return t.Loudness, true
	case FeatureTempo:
		return t.Tempo, true
	}
	return 0, false
}

// Season names a month's meteorological season (northern hemisphere).
func Season(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Spring"
	case time.June, time.July, time.August:
		return "Summer"
	case time.September, time.October, time.November:
		return "Fall"
	}
	return ""
}

// Seasons are the season lanes in display order.
var Seasons = jitter.Seasons

// dateLayouts are tried in order. Partial dates resolve to the first day of
// the period, so a year-only release lands in January.
var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Metadata keys attached to jitter records.
const (
	MetaID          = "id"
	MetaName        = "name"
	MetaArtist      = "artist"
	MetaReleaseDate = "release_date"
	MetaGenre       = "genre"
	MetaSubgenre    = "subgenre"
	MetaPopularity  = "popularity"
)

// Record converts a dated track into a strip-plot record.
func (t Track) Record() jitter.Record {
	return jitter.Record{
		Category: t.Season,
		Value:    float64(t.Popularity),
		Meta: map[string]string{
			MetaID:          t.ID,
			MetaName:        t.Name,
			MetaArtist:      t.Artist,
			MetaReleaseDate: t.ReleaseDate.Format("2006-01-02"),
			MetaGenre:       t.Genre,
			MetaSubgenre:    t.Subgenre,
			MetaPopularity:  strconv.Itoa(t.Popularity),
		},
	}
}
