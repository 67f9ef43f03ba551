package dataset

import (
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/trackdash/pkg/cache"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/jitter"
)

// Column names of the songs CSV.
const (
	colID               = "track_id"
	colName             = "track_name"
	colArtist           = "track_artist"
	colPopularity       = "track_popularity"
	colAlbumID          = "track_album_id"
	colAlbumName        = "track_album_name"
	colReleaseDate      = "track_album_release_date"
	colPlaylistName     = "playlist_name"
	colPlaylistID       = "playlist_id"
	colGenre            = "playlist_genre"
	colSubgenre         = "playlist_subgenre"
	colDanceability     = "danceability"
	colEnergy           = "energy"
	colKey              = "key"
	colLoudness         = "loudness"
	colMode             = "mode"
	colSpeechiness      = "speechiness"
	colAcousticness     = "acousticness"
	colInstrumentalness = "instrumentalness"
	colLiveness         = "liveness"
	colValence          = "valence"
	colTempo            = "tempo"
	colDurationMs       = "duration_ms"
)

// requiredColumns must be present in the header. Rows with an unusable
// popularity (missing, not finite or outside 0..100), genre, energy or
// speechiness are skipped; an unusable release
// date only marks the track undated.
var requiredColumns = []string{colPopularity, colGenre, colEnergy, colSpeechiness, colReleaseDate}

// Load parses a songs CSV. Rows that cannot be used are counted in
// [Dataset.Skipped] instead of failing the load.
func Load(r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read dataset")
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dataset is empty")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "missing columns: %s", strings.Join(missing, ", "))
	}

	d := &Dataset{hash: cache.Hash(raw)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if stderrors.As(err, &perr) {
			d.Skipped++
			continue
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read row")
		}

		t, ok := parseRow(row{rec: rec, cols: cols})
		if !ok {
			d.Skipped++
			continue
		}
		if !t.Dated() {
			d.Undated++
		}
		d.Tracks = append(d.Tracks, t)
	}
	return d, nil
}

// LoadFile opens and parses a local CSV.
func LoadFile(path string) (*Dataset, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Load(f)
}

// validPopularity keeps rows the jitter engine would reject as a whole.
func validPopularity(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= jitter.DefaultValueMin && p <= jitter.DefaultValueMax
}

type row struct {
	rec  []string
	cols map[string]int
}

func (r row) str(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

// num returns NaN for absent or malformed optional values.
func (r row) num(col string) float64 {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseRow(r row) (Track, bool) {
	pop, err := strconv.ParseFloat(r.str(colPopularity), 64)
	if err != nil || !validPopularity(pop) {
		return Track{}, false
	}
	genre := strings.ToLower(r.str(colGenre))
	if genre == "" {
		return Track{}, false
	}
	energy, speech := r.num(colEnergy), r.num(colSpeechiness)
	if math.IsNaN(energy) || math.IsNaN(speech) {
		return Track{}, false
	}

	t := Track{
		ID:               r.str(colID),
		Name:             r.str(colName),
		Artist:           r.str(colArtist),
		Popularity:       int(math.Round(pop)),
		AlbumID:          r.str(colAlbumID),
		AlbumName:        r.str(colAlbumName),
		RawDate:          r.str(colReleaseDate),
		PlaylistID:       r.str(colPlaylistID),
		Playlist:         r.str(colPlaylistName),
		Genre:            genre,
		Subgenre:         strings.ToLower(r.str(colSubgenre)),
		Danceability:     r.num(colDanceability),
		Energy:           energy,
		Key:              r.num(colKey),
		Loudness:         r.num(colLoudness),
		Mode:             r.num(colMode),
		Speechiness:      speech,
		Acousticness:     r.num(colAcousticness),
		Instrumentalness: r.num(colInstrumentalness),
		Liveness:         r.num(colLiveness),
		Valence:          r.num(colValence),
		Tempo:            r.num(colTempo),
		DurationMs:       r.num(colDurationMs),
	}
	t.DurationMin = t.DurationMs / 60000

	if date, ok := parseDate(t.RawDate); ok {
		t.ReleaseDate = date
		t.Year = date.Year()
		t.Month = date.Month()
		t.Season = Season(date.Month())
	}
	return t, true
}
