package jitter

import (
	"math"

	"github.com/matzehuels/trackdash/pkg/errors"
)

// Default layout constants.
const (
	DefaultBinSize          = 1.0
	DefaultJitterStep       = 0.005
	DefaultMaxJitterRange   = 0.45
	DefaultXJitterMagnitude = 0.95
	DefaultSeed             = uint64(42)
	DefaultValueMin         = 0.0
	DefaultValueMax         = 100.0
)

// laneHalfWidth is half the distance between adjacent lanes.
const laneHalfWidth = 0.5

// Lanes is the ordered set of categories. A category's index is its lane.
type Lanes []string

// Seasons are the release-season lanes, bottom to top.
var Seasons = Lanes{"Winter", "Spring", "Summer", "Fall"}

// Index returns the lane of category c.
func (l Lanes) Index(c string) (int, bool) {
	for i, name := range l {
		if name == c {
			return i, true
		}
	}
	return 0, false
}

// Options configures [Compute].
type Options struct {
	// BinSize is the quantization width used to group records that would
	// land on the same x value. Default: 1.
	BinSize float64

	// JitterStep is the vertical spacing, in lane units, between successive
	// records stacked in one bin. Default: 0.005.
	JitterStep float64

	// MaxJitterRange caps the absolute vertical offset from the lane center.
	// Must be below 0.5 so adjacent lanes never touch. Default: 0.45.
	MaxJitterRange float64

	// XJitterMagnitude is the total width of the uniform horizontal noise
	// window centered on each value. Default: 0.95.
	XJitterMagnitude float64

	// Seed fixes the horizontal noise. Default: 42.
	Seed uint64

	// Lanes enumerates the valid categories. Default: [Seasons].
	Lanes Lanes

	// [ValueMin, ValueMax] is the accepted scalar domain. If both are 0 the
	// domain is unbounded. Default: [0, 100].
	ValueMin float64
	ValueMax float64

	// CenterSingletons places the first record of every bin on the lane
	// center (offset 0) and starts the fan-out from the second record.
	// Off by default.
	CenterSingletons bool
}

// DefaultOptions returns the options used by the dashboard.
func DefaultOptions() Options {
	return Options{
		BinSize:          DefaultBinSize,
		JitterStep:       DefaultJitterStep,
		MaxJitterRange:   DefaultMaxJitterRange,
		XJitterMagnitude: DefaultXJitterMagnitude,
		Seed:             DefaultSeed,
		Lanes:            Seasons,
		ValueMin:         DefaultValueMin,
		ValueMax:         DefaultValueMax,
	}
}

// Validate checks the options once, before any record is visited.
func (o Options) Validate() error {
	switch {
	case !(o.BinSize > 0) || math.IsInf(o.BinSize, 0):
		return errors.New(errors.ErrCodeInvalidConfig, "bin size must be positive, got %v", o.BinSize)
	case !(o.JitterStep > 0):
		return errors.New(errors.ErrCodeInvalidConfig, "jitter step must be positive, got %v", o.JitterStep)
	case !(o.MaxJitterRange > 0) || o.MaxJitterRange >= laneHalfWidth:
		return errors.New(errors.ErrCodeInvalidConfig, "max jitter range must be in (0, %v), got %v", laneHalfWidth, o.MaxJitterRange)
	case o.JitterStep > o.MaxJitterRange:
		return errors.New(errors.ErrCodeInvalidConfig, "jitter step %v exceeds max jitter range %v", o.JitterStep, o.MaxJitterRange)
	case !(o.XJitterMagnitude >= 0) || o.XJitterMagnitude >= 1:
		return errors.New(errors.ErrCodeInvalidConfig, "x jitter magnitude must be in [0, 1), got %v", o.XJitterMagnitude)
	case len(o.Lanes) == 0:
		return errors.New(errors.ErrCodeInvalidConfig, "at least one lane is required")
	case o.ValueMin > o.ValueMax:
		return errors.New(errors.ErrCodeInvalidConfig, "value domain [%v, %v] is empty", o.ValueMin, o.ValueMax)
	}

	seen := make(map[string]bool, len(o.Lanes))
	for _, name := range o.Lanes {
		if name == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "lane names cannot be empty")
		}
		if seen[name] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate lane %q", name)
		}
		seen[name] = true
	}
	return nil
}

// MaxStack returns how many records a single bin holds before offsets clip.
func (o Options) MaxStack() int {
	if !(o.JitterStep > 0) {
		return 0
	}
	n := int(math.Floor(o.MaxJitterRange/o.JitterStep+1e-9)) * 2
	if o.CenterSingletons {
		n++
	}
	return n
}

func (o Options) bounded() bool {
	return o.ValueMin != 0 || o.ValueMax != 0
}
