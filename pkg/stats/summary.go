package stats

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"

	mstats "github.com/montanaflynn/stats"

	"github.com/matzehuels/trackdash/pkg/dataset"
)

// finite drops NaN and infinite values.
func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// Mean returns the mean of the finite values in xs, or 0 if there are none.
func Mean(xs []float64) float64 {
	m, err := mstats.Mean(finite(xs))
	if err != nil {
		return 0
	}
	return m
}

// Median returns the median of the finite values in xs, or 0 if there are
// none.
func Median(xs []float64) float64 {
	m, err := mstats.Median(finite(xs))
	if err != nil {
		return 0
	}
	return m
}

func round1(x float64) float64 {
	r, err := mstats.Round(x, 1)
	if err != nil {
		return x
	}
	return r
}

func popularities(tracks []dataset.Track) []float64 {
	out := make([]float64, len(tracks))
	for i, t := range tracks {
		out[i] = float64(t.Popularity)
	}
	return out
}

// KPIs are the headline numbers of the overview tab.
type KPIs struct {
	Songs          int     `json:"total_songs"`
	Artists        int     `json:"total_artists"`
	Genres         int     `json:"total_genres"`
	Subgenres      int     `json:"total_subgenres"`
	FirstYear      int     `json:"first_year"`
	LastYear       int     `json:"last_year"`
	MeanPopularity float64 `json:"avg_popularity"`
}

// YearRange formats the release year span, e.g. "1957-2020".
func (k KPIs) YearRange() string {
	if k.FirstYear == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d-%d", k.FirstYear, k.LastYear)
}

// ComputeKPIs summarizes d.
func ComputeKPIs(d *dataset.Dataset) KPIs {
	k := KPIs{
		Songs:          d.Len(),
		Artists:        len(d.Artists()),
		Genres:         len(d.GenreNames()),
		Subgenres:      len(d.Subgenres()),
		MeanPopularity: Mean(popularities(d.Tracks)),
	}
	for _, t := range d.Tracks {
		if !t.Dated() {
			continue
		}
		if k.FirstYear == 0 || t.Year < k.FirstYear {
			k.FirstYear = t.Year
		}
		k.LastYear = max(k.LastYear, t.Year)
	}
	return k
}

// Share is one genre's slice of the dataset.
type Share struct {
	Genre   string  `json:"genre"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// GenreShare returns track counts per genre, largest first. Percentages are
// rounded to one decimal.
func GenreShare(d *dataset.Dataset) []Share {
	counts := make(map[string]int)
	for _, t := range d.Tracks {
		counts[t.Genre]++
	}
	out := make([]Share, 0, len(counts))
	for g, n := range counts {
		out = append(out, Share{Genre: g, Count: n, Percent: round1(float64(n) / float64(d.Len()) * 100)})
	}
	slices.SortFunc(out, func(a, b Share) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Genre, b.Genre)
	})
	return out
}

// Bucket is a labelled count.
type Bucket struct {
	Label string `json:"label"`
	Start int    `json:"start"`
	Count int    `json:"count"`
}

// DecadeCounts counts dated tracks per decade, oldest first.
func DecadeCounts(d *dataset.Dataset) []Bucket {
	counts := make(map[int]int)
	for _, t := range d.Tracks {
		if t.Dated() {
			counts[t.Year/10*10]++
		}
	}
	out := make([]Bucket, 0, len(counts))
	for start, n := range counts {
		out = append(out, Bucket{Label: fmt.Sprintf("%ds", start), Start: start, Count: n})
	}
	slices.SortFunc(out, func(a, b Bucket) int { return cmp.Compare(a.Start, b.Start) })
	return out
}

// NamedValue pairs a label with a number.
type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// FeatureMeans returns the mean of each named audio feature over d, in the
// order given. Unknown feature names are skipped.
func FeatureMeans(d *dataset.Dataset, features []string) []NamedValue {
	out := make([]NamedValue, 0, len(features))
	for _, f := range features {
		if _, ok := (dataset.Track{}).Feature(f); !ok {
			continue
		}
		xs := make([]float64, len(d.Tracks))
		for i, t := range d.Tracks {
			xs[i], _ = t.Feature(f)
		}
		out = append(out, NamedValue{Name: f, Value: Mean(xs)})
	}
	return out
}

// HistBin is one histogram bar covering [Lo, Hi).
type HistBin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// PopularityHistogram splits [0, 100] into n equal bins; 100 falls in the
// last one.
func PopularityHistogram(d *dataset.Dataset, n int) []HistBin {
	if n <= 0 {
		n = 20
	}
	const lo, hi = 0.0, 100.0
	width := (hi - lo) / float64(n)
	out := make([]HistBin, n)
	for i := range out {
		out[i] = HistBin{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	for _, t := range d.Tracks {
		p := float64(t.Popularity)
		if p < lo || p > hi {
			continue
		}
		i := min(int((p-lo)/width), n-1)
		out[i].Count++
	}
	return out
}

// YearStat aggregates one release year.
type YearStat struct {
	Year           int     `json:"year"`
	Count          int     `json:"song_count"`
	MeanPopularity float64 `json:"avg_popularity"`
	Genres         int     `json:"genre_diversity"`
}

// YearlyOverview returns per-year counts, mean popularity and genre
// diversity for dated tracks, oldest first.
func YearlyOverview(d *dataset.Dataset) []YearStat {
	byYear := groupByYear(d.Tracks)
	out := make([]YearStat, 0, len(byYear))
	for _, y := range sortedKeys(byYear) {
		tracks := byYear[y]
		genres := make(map[string]bool)
		for _, t := range tracks {
			genres[t.Genre] = true
		}
		out = append(out, YearStat{
			Year:           y,
			Count:          len(tracks),
			MeanPopularity: Mean(popularities(tracks)),
			Genres:         len(genres),
		})
	}
	return out
}

func groupByYear(tracks []dataset.Track) map[int][]dataset.Track {
	out := make(map[int][]dataset.Track)
	for _, t := range tracks {
		if t.Dated() {
			out[t.Year] = append(out[t.Year], t)
		}
	}
	return out
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
