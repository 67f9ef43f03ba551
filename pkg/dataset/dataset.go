// Package dataset loads the songs table and exposes filtered views of it.
//
// A [Dataset] is immutable once loaded: every filter returns a new Dataset
// sharing no slice with its parent, so one loaded table can serve many
// concurrent requests.
package dataset

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/trackdash/pkg/cache"
	"github.com/matzehuels/trackdash/pkg/jitter"
)

// Dataset is a loaded (and possibly filtered) set of tracks.
type Dataset struct {
	Tracks []Track

	// Skipped counts rows dropped at load time. Undated counts tracks whose
	// release date did not parse.
	Skipped int
	Undated int

	hashOnce sync.Once
	hash     string
}

// New wraps tracks in a Dataset. Its hash is derived from the content.
func New(tracks []Track) *Dataset {
	return &Dataset{Tracks: tracks}
}

// Len returns the number of tracks.
func (d *Dataset) Len() int { return len(d.Tracks) }

// Hash identifies the dataset content for cache keys.
func (d *Dataset) Hash() string {
	d.hashOnce.Do(func() {
		if d.hash != "" {
			return
		}
		h, err := cache.HashJSON(d.Tracks)
		if err != nil {
			// NaN features do not encode; fall back to the identifying fields.
			var b strings.Builder
			for _, t := range d.Tracks {
				fmt.Fprintf(&b, "%s|%d|%s|%s\n", t.ID, t.Popularity, t.RawDate, t.Genre)
			}
			h = cache.Hash([]byte(b.String()))
		}
		d.hash = h
	})
	return d.hash
}

func (d *Dataset) derive(tag string, tracks []Track) *Dataset {
	return &Dataset{
		Tracks:  tracks,
		Skipped: d.Skipped,
		hash:    cache.Hash([]byte(d.Hash() + "|" + tag)),
		Undated: countUndated(tracks),
	}
}

func countUndated(tracks []Track) int {
	n := 0
	for _, t := range tracks {
		if !t.Dated() {
			n++
		}
	}
	return n
}

// Filter keeps tracks for which keep returns true.
func (d *Dataset) Filter(keep func(Track) bool) *Dataset {
	out := &Dataset{Skipped: d.Skipped}
	for _, t := range d.Tracks {
		if keep(t) {
			out.Tracks = append(out.Tracks, t)
		}
	}
	out.Undated = countUndated(out.Tracks)
	return out
}

func (d *Dataset) named(tag string, keep func(Track) bool) *Dataset {
	var tracks []Track
	for _, t := range d.Tracks {
		if keep(t) {
			tracks = append(tracks, t)
		}
	}
	return d.derive(tag, tracks)
}

// MinYear keeps dated tracks released in year y or later.
func (d *Dataset) MinYear(y int) *Dataset {
	return d.named(fmt.Sprintf("min_year=%d", y), func(t Track) bool {
		return t.Dated() && t.Year >= y
	})
}

// YearRange keeps dated tracks released in [from, to].
func (d *Dataset) YearRange(from, to int) *Dataset {
	return d.named(fmt.Sprintf("years=%d-%d", from, to), func(t Track) bool {
		return t.Dated() && t.Year >= from && t.Year <= to
	})
}

// MinPopularity keeps tracks with popularity >= p.
func (d *Dataset) MinPopularity(p int) *Dataset {
	return d.named(fmt.Sprintf("pop>=%d", p), func(t Track) bool { return t.Popularity >= p })
}

// PopularAbove keeps tracks with popularity > p.
func (d *Dataset) PopularAbove(p int) *Dataset {
	return d.named(fmt.Sprintf("pop>%d", p), func(t Track) bool { return t.Popularity > p })
}

// Genres keeps tracks whose genre is one of names. No names keeps all.
func (d *Dataset) Genres(names ...string) *Dataset {
	if len(names) == 0 {
		return d
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}
	sorted := slices.Sorted(maps.Keys(want))
	return d.named("genres="+strings.Join(sorted, ","), func(t Track) bool { return want[t.Genre] })
}

// WithReleaseDate drops undated tracks.
func (d *Dataset) WithReleaseDate() *Dataset {
	return d.named("dated", Track.Dated)
}

// GenreNames returns the distinct genres, sorted.
func (d *Dataset) GenreNames() []string {
	return d.distinct(func(t Track) string { return t.Genre })
}

// Subgenres returns the distinct subgenres, sorted.
func (d *Dataset) Subgenres() []string {
	return d.distinct(func(t Track) string { return t.Subgenre })
}

// Artists returns the distinct artists, sorted.
func (d *Dataset) Artists() []string {
	return d.distinct(func(t Track) string { return t.Artist })
}

func (d *Dataset) distinct(field func(Track) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range d.Tracks {
		v := field(t)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// JitterRecords returns one strip-plot record per dated track, in table
// order.
func (d *Dataset) JitterRecords() []jitter.Record {
	out := make([]jitter.Record, 0, len(d.Tracks))
	for _, t := range d.Tracks {
		if t.Dated() {
			out = append(out, t.Record())
		}
	}
	return out
}
