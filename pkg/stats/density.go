package stats

import (
	"math"

	mmstats "github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"

	"github.com/matzehuels/trackdash/pkg/dataset"
)

// WeightedHistogramDensity bins xs into n equal bins over [lo, hi] and
// normalizes the weighted counts so the histogram integrates to 1. Values
// outside the range are ignored; hi falls in the last bin. It returns the
// bin centers and densities. All densities are 0 if no weight falls inside
// the range.
func WeightedHistogramDensity(xs, ws []float64, n int, lo, hi float64) (centers, density []float64) {
	if n <= 0 || !(hi > lo) {
		return nil, nil
	}
	width := (hi - lo) / float64(n)
	centers = make([]float64, n)
	density = make([]float64, n)
	for i := range centers {
		centers[i] = lo + (float64(i)+0.5)*width
	}

	total := 0.0
	for i, x := range xs {
		if math.IsNaN(x) || x < lo || x > hi {
			continue
		}
		w := 1.0
		if ws != nil {
			w = ws[i]
		}
		b := min(int((x-lo)/width), n-1)
		density[b] += w
		total += w
	}
	if total == 0 {
		return centers, density
	}
	for i := range density {
		density[i] /= total * width
	}
	return centers, density
}

// MovingAverage smooths xs with a box window of k samples and returns a
// slice of the same length. Samples beyond either end count as 0, so the
// edges are damped.
func MovingAverage(xs []float64, k int) []float64 {
	if k <= 1 {
		return append([]float64(nil), xs...)
	}
	out := make([]float64, len(xs))
	shift := (k - 1) / 2
	for i := range out {
		sum := 0.0
		for j := i + shift - (k - 1); j <= i+shift; j++ {
			if j >= 0 && j < len(xs) {
				sum += xs[j]
			}
		}
		out[i] = sum / float64(k)
	}
	return out
}

// Energy density defaults.
const (
	DensityBins      = 50
	DensityWindow    = 5
	DensityMinTracks = 10
)

// EnergyDensity returns, for each requested genre with more than minTracks
// tracks, the popularity-weighted energy histogram smoothed with a moving
// average. Genres are returned in the order requested.
func EnergyDensity(d *dataset.Dataset, genres []string, minTracks int) []Series {
	var out []Series
	for _, g := range genres {
		sub := d.Genres(g)
		if sub.Len() <= minTracks {
			continue
		}
		xs, ws := energyWeights(sub)
		centers, dens := WeightedHistogramDensity(xs, ws, DensityBins, 0, 1)
		smooth := MovingAverage(dens, DensityWindow)
		s := Series{Name: g, Points: make([]Point, len(centers))}
		for i := range centers {
			s.Points[i] = Point{X: centers[i], Y: smooth[i]}
		}
		out = append(out, s)
	}
	return out
}

// EnergyKDESeries is [EnergyDensity] using a Gaussian kernel density
// estimate instead of the smoothed histogram.
func EnergyKDESeries(d *dataset.Dataset, genres []string, minTracks, n int) []Series {
	var out []Series
	for _, g := range genres {
		sub := d.Genres(g)
		if sub.Len() <= minTracks {
			continue
		}
		xs, ws := energyWeights(sub)
		grid, pdf := EnergyKDE(xs, ws, n)
		s := Series{Name: g, Points: make([]Point, len(grid))}
		for i := range grid {
			s.Points[i] = Point{X: grid[i], Y: pdf[i]}
		}
		out = append(out, s)
	}
	return out
}

func energyWeights(d *dataset.Dataset) (xs, ws []float64) {
	for _, t := range d.Tracks {
		if math.IsNaN(t.Energy) {
			continue
		}
		xs = append(xs, t.Energy)
		ws = append(ws, float64(t.Popularity))
	}
	return xs, ws
}

// fallbackBandwidth is used when Scott's rule degenerates (all samples
// equal).
const fallbackBandwidth = 0.05

// EnergyKDE estimates the weighted density of xs on [0, 1] with a Gaussian
// kernel, reflecting mass at both boundaries. It returns n evenly spaced
// grid points and the density at each.
func EnergyKDE(xs, ws []float64, n int) (grid, pdf []float64) {
	if n < 2 {
		n = 2
	}
	grid = vec.Linspace(0, 1, n)
	sample := mmstats.Sample{Xs: xs, Weights: ws}
	if len(xs) == 0 || sample.Weight() == 0 {
		return grid, make([]float64, n)
	}

	bw := mmstats.BandwidthScott(sample)
	if !(bw > 0) || math.IsInf(bw, 0) {
		bw = fallbackBandwidth
	}
	kde := mmstats.KDE{
		Sample:         sample,
		Kernel:         mmstats.GaussianKernel,
		Bandwidth:      bw,
		BoundaryMethod: mmstats.BoundaryReflect,
		BoundaryMin:    0,
		BoundaryMax:    1,
	}
	return grid, vec.Map(kde.PDF, grid)
}
