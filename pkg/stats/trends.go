package stats

import (
	"cmp"
	"slices"

	"github.com/matzehuels/trackdash/pkg/dataset"
)

// Point is one (x, y) sample of a series.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is a named sequence of points.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// GenreEvolution returns, per genre, the mean popularity of each release
// year. Series are ordered by genre name; points by year.
func GenreEvolution(d *dataset.Dataset) []Series {
	byGenre := make(map[string][]dataset.Track)
	for _, t := range d.Tracks {
		if t.Dated() {
			byGenre[t.Genre] = append(byGenre[t.Genre], t)
		}
	}
	out := make([]Series, 0, len(byGenre))
	for _, g := range sortedKeys(byGenre) {
		byYear := groupByYear(byGenre[g])
		s := Series{Name: g}
		for _, y := range sortedKeys(byYear) {
			s.Points = append(s.Points, Point{X: float64(y), Y: Mean(popularities(byYear[y]))})
		}
		out = append(out, s)
	}
	return out
}

// Period is an inclusive range of release years.
type Period struct {
	Label string `json:"label"`
	From  int    `json:"from"`
	To    int    `json:"to"`
}

// DefaultPeriods are the heatmap columns.
var DefaultPeriods = []Period{
	{"2000-2004", 2000, 2004},
	{"2005-2008", 2005, 2008},
	{"2009-2012", 2009, 2012},
	{"2013-2016", 2013, 2016},
	{"2017-2020", 2017, 2020},
}

func periodOf(periods []Period, year int) int {
	for i, p := range periods {
		if year >= p.From && year <= p.To {
			return i
		}
	}
	return -1
}

// Heatmap is a row-major matrix of mean popularity.
type Heatmap struct {
	Rows    []string    `json:"rows"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// SubgenreHeatmap computes mean popularity per (subgenre, period). Cells
// with no tracks are 0. Rows are sorted by their mean across all periods
// (empty cells included), highest first, and cut to the top rows.
func SubgenreHeatmap(d *dataset.Dataset, periods []Period, top int) Heatmap {
	if len(periods) == 0 {
		periods = DefaultPeriods
	}
	type cell struct {
		sum float64
		n   int
	}
	grid := make(map[string][]cell)
	for _, t := range d.Tracks {
		if !t.Dated() || t.Subgenre == "" {
			continue
		}
		p := periodOf(periods, t.Year)
		if p < 0 {
			continue
		}
		row, ok := grid[t.Subgenre]
		if !ok {
			row = make([]cell, len(periods))
			grid[t.Subgenre] = row
		}
		row[p].sum += float64(t.Popularity)
		row[p].n++
	}

	type scored struct {
		name   string
		values []float64
		avg    float64
	}
	rows := make([]scored, 0, len(grid))
	for name, cells := range grid {
		vals := make([]float64, len(cells))
		for i, c := range cells {
			if c.n > 0 {
				vals[i] = c.sum / float64(c.n)
			}
		}
		rows = append(rows, scored{name: name, values: vals, avg: Mean(vals)})
	}
	slices.SortFunc(rows, func(a, b scored) int {
		if c := cmp.Compare(b.avg, a.avg); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}

	h := Heatmap{}
	for _, p := range periods {
		h.Columns = append(h.Columns, p.Label)
	}
	for _, r := range rows {
		h.Rows = append(h.Rows, r.name)
		h.Values = append(h.Values, r.values)
	}
	return h
}

// Profile compares one genre's mean audio features with the whole dataset.
type Profile struct {
	Genre    string    `json:"genre"`
	Features []string  `json:"features"`
	Selected []float64 `json:"selected"`
	Overall  []float64 `json:"overall"`
}

// FeatureProfile returns the radar chart values for genre.
func FeatureProfile(d *dataset.Dataset, genre string, features []string) Profile {
	sel := FeatureMeans(d.Genres(genre), features)
	all := FeatureMeans(d, features)
	p := Profile{Genre: genre}
	for i := range all {
		p.Features = append(p.Features, all[i].Name)
		p.Overall = append(p.Overall, all[i].Value)
		p.Selected = append(p.Selected, sel[i].Value)
	}
	return p
}

// Growth is a genre's change in mean popularity between two periods.
type Growth struct {
	Genre string  `json:"genre"`
	Early float64 `json:"early"`
	Late  float64 `json:"late"`
	Delta float64 `json:"growth"`
}

// Growth windows.
var (
	EarlyPeriod = Period{"2000-2002", 2000, 2002}
	LatePeriod  = Period{"2018-2020", 2018, 2020}
)

// GenreGrowth returns late minus early mean popularity for every genre
// present in both windows, smallest change first.
func GenreGrowth(d *dataset.Dataset) []Growth {
	early := meanPopularityByGenre(d.YearRange(EarlyPeriod.From, EarlyPeriod.To))
	late := meanPopularityByGenre(d.YearRange(LatePeriod.From, LatePeriod.To))

	var out []Growth
	for g, e := range early {
		l, ok := late[g]
		if !ok {
			continue
		}
		out = append(out, Growth{Genre: g, Early: e, Late: l, Delta: l - e})
	}
	slices.SortFunc(out, func(a, b Growth) int {
		if c := cmp.Compare(a.Delta, b.Delta); c != 0 {
			return c
		}
		return cmp.Compare(a.Genre, b.Genre)
	})
	return out
}

func meanPopularityByGenre(d *dataset.Dataset) map[string]float64 {
	groups := make(map[string][]float64)
	for _, t := range d.Tracks {
		groups[t.Genre] = append(groups[t.Genre], float64(t.Popularity))
	}
	out := make(map[string]float64, len(groups))
	for g, xs := range groups {
		out[g] = Mean(xs)
	}
	return out
}

// DurationTrend returns the mean duration in minutes per release year for
// tracks with popularity >= 60 released in 2000 or later.
func DurationTrend(d *dataset.Dataset) []Point {
	byYear := groupByYear(d.MinPopularity(60).MinYear(2000).Tracks)
	out := make([]Point, 0, len(byYear))
	for _, y := range sortedKeys(byYear) {
		xs := make([]float64, len(byYear[y]))
		for i, t := range byYear[y] {
			xs[i] = t.DurationMin
		}
		out = append(out, Point{X: float64(y), Y: Mean(xs)})
	}
	return out
}

// SpeechPoint is the speechiness summary of one year.
type SpeechPoint struct {
	Year   int     `json:"year"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// SpeechinessTrend returns mean and median speechiness per year for tracks
// with popularity above 60.
func SpeechinessTrend(d *dataset.Dataset) []SpeechPoint {
	byYear := groupByYear(d.PopularAbove(60).Tracks)
	out := make([]SpeechPoint, 0, len(byYear))
	for _, y := range sortedKeys(byYear) {
		xs := make([]float64, len(byYear[y]))
		for i, t := range byYear[y] {
			xs[i] = t.Speechiness
		}
		out = append(out, SpeechPoint{Year: y, Mean: Mean(xs), Median: Median(xs)})
	}
	return out
}

// TempoPoint is one track on the danceability/tempo scatter.
type TempoPoint struct {
	Tempo        float64 `json:"tempo"`
	Danceability float64 `json:"danceability"`
	Popularity   int     `json:"popularity"`
	Name         string  `json:"name"`
}

// DanceTempo groups tracks that have both features by genre.
func DanceTempo(d *dataset.Dataset) map[string][]TempoPoint {
	out := make(map[string][]TempoPoint)
	for _, t := range d.Tracks {
		if len(finite([]float64{t.Tempo, t.Danceability})) != 2 {
			continue
		}
		out[t.Genre] = append(out[t.Genre], TempoPoint{
			Tempo:        t.Tempo,
			Danceability: t.Danceability,
			Popularity:   t.Popularity,
			Name:         t.Name,
		})
	}
	return out
}
