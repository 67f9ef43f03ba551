package stats

import (
	"math"

	"github.com/matzehuels/trackdash/pkg/dataset"
)

// Level buckets speechiness.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
)

// Levels lists every level in display order.
var Levels = []Level{LevelLow, LevelMedium, LevelHigh}

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "Low (0.0-0.2)"
	case LevelMedium:
		return "Medium (0.2-0.5)"
	case LevelHigh:
		return "High (0.5-1.0)"
	}
	return ""
}

// Color is the waffle fill of the level.
func (l Level) Color() string {
	switch l {
	case LevelLow:
		return "#A6CEE3"
	case LevelMedium:
		return "#1F78B4"
	case LevelHigh:
		return "#33A02C"
	}
	return "#FFFFFF"
}

// SpeechinessLevel classifies v: below 0.2 is low, below 0.5 medium.
func SpeechinessLevel(v float64) Level {
	switch {
	case v < 0.2:
		return LevelLow
	case v < 0.5:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// LevelCount is the number of tracks at one level.
type LevelCount struct {
	Level Level `json:"level"`
	Count int   `json:"count"`
}

// LevelCounts counts tracks per speechiness level, in [Levels] order.
func LevelCounts(d *dataset.Dataset) []LevelCount {
	out := make([]LevelCount, len(Levels))
	for i, l := range Levels {
		out[i].Level = l
	}
	for _, t := range d.Tracks {
		out[SpeechinessLevel(t.Speechiness)].Count++
	}
	return out
}

// WaffleCell is one square of a waffle chart. Filled is false for padding
// cells.
type WaffleCell struct {
	Row    int     `json:"row"`
	Col    int     `json:"col"`
	Filled bool    `json:"filled"`
	Level  Level   `json:"level"`
	Share  float64 `json:"share"`
}

// Waffle lays total squares out in rows of cols, top row first. Each level
// gets round(share*total) squares in order; rounding shortfall is padded with
// empty squares and any excess is cut.
func Waffle(counts []LevelCount, total, cols int) []WaffleCell {
	if total <= 0 {
		total = 100
	}
	if cols <= 0 {
		cols = 10
	}
	sum := 0
	for _, c := range counts {
		sum += c.Count
	}

	cells := make([]WaffleCell, 0, total)
	if sum > 0 {
		for _, c := range counts {
			share := float64(c.Count) / float64(sum)
			n := int(math.Round(share * float64(total)))
			for range n {
				if len(cells) == total {
					break
				}
				cells = append(cells, WaffleCell{Filled: true, Level: c.Level, Share: share * 100})
			}
		}
	}
	for len(cells) < total {
		cells = append(cells, WaffleCell{})
	}
	for i := range cells {
		cells[i].Row = i / cols
		cells[i].Col = i % cols
	}
	return cells
}
