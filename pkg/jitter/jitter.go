package jitter

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/trackdash/pkg/errors"
)

// Record is one input row.
type Record struct {
	Category string            `json:"category"`
	Value    float64           `json:"value"`
	Meta     map[string]string `json:"meta,omitempty"`
}

// Position is the computed plotting coordinate of one record.
type Position struct {
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
	Lane     int               `json:"lane"`
	Bin      float64           `json:"bin"`
	Slot     int               `json:"slot"`
	Offset   float64           `json:"offset"`
	Category string            `json:"category"`
	Value    float64           `json:"value"`
	Meta     map[string]string `json:"meta,omitempty"`
}

// Compute returns one position per record, in input order.
// The records slice is not modified.
func Compute(records []Record, opts Options) ([]Position, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	out := make([]Position, len(records))
	for i, r := range records {
		lane, ok := opts.Lanes.Index(r.Category)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidCategory, "record %d: unknown category %q", i, r.Category)
		}
		if err := checkValue(i, r.Value, opts); err != nil {
			return nil, err
		}
		out[i] = Position{
			Lane:     lane,
			Bin:      bin(r.Value, opts.BinSize),
			Category: r.Category,
			Value:    r.Value,
			Meta:     r.Meta,
		}
	}

	stack(out, opts)
	spread(out, opts)
	return out, nil
}

func checkValue(i int, v float64, opts Options) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New(errors.ErrCodeInvalidScalar, "record %d: value is not a finite number", i)
	}
	if opts.bounded() && (v < opts.ValueMin || v > opts.ValueMax) {
		return errors.New(errors.ErrCodeInvalidScalar, "record %d: value %v outside [%v, %v]", i, v, opts.ValueMin, opts.ValueMax)
	}
	return nil
}

func bin(v, size float64) float64 {
	return math.Floor(v/size) * size
}

// stack assigns slots and vertical offsets. Records are visited grouped by
// lane, ascending by bin; the stable sort keeps input order inside a bin.
func stack(out []Position, opts Options) {
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if c := cmp.Compare(out[a].Lane, out[b].Lane); c != 0 {
			return c
		}
		return cmp.Compare(out[a].Bin, out[b].Bin)
	})

	slot := 0
	for k, i := range order {
		if k > 0 {
			prev := out[order[k-1]]
			if prev.Lane != out[i].Lane || prev.Bin != out[i].Bin {
				slot = 0
			}
		}
		p := &out[i]
		p.Slot = slot
		p.Offset = SlotOffset(slot, opts)
		p.Y = float64(p.Lane) + p.Offset
		slot++
	}
}

// SlotOffset returns the clipped vertical offset of the given stack slot.
func SlotOffset(slot int, opts Options) float64 {
	if opts.CenterSingletons {
		if slot == 0 {
			return 0
		}
		slot--
	}
	mag := min(float64(slot/2+1)*opts.JitterStep, opts.MaxJitterRange)
	if slot%2 == 1 {
		return -mag
	}
	return mag
}

// spread adds the horizontal noise, one draw per record in input order.
func spread(out []Position, opts Options) {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef))
	for i := range out {
		out[i].X = out[i].Value + (rng.Float64()-0.5)*opts.XJitterMagnitude
	}
}

// Group is a set of positions sharing one metadata value.
type Group struct {
	Name      string
	Positions []Position
}

// Partition splits positions by the metadata field key, in order of first
// appearance. Positions without the field land in a group named "".
func Partition(positions []Position, key string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, p := range positions {
		name := p.Meta[key]
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].Positions = append(groups[i].Positions, p)
	}
	return groups
}
