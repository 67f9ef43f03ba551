package sink

import (
	"encoding/json"

	"github.com/matzehuels/trackdash/pkg/jitter"
)

// JSONOption configures [RenderPositionsJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	opts    *jitter.Options
	dataset string
	compact bool
}

// WithJSONOptions records the layout options so the positions can be
// reproduced.
func WithJSONOptions(o jitter.Options) JSONOption { return func(r *jsonRenderer) { r.opts = &o } }

// WithJSONDataset records the hash of the dataset the positions came from.
func WithJSONDataset(hash string) JSONOption { return func(r *jsonRenderer) { r.dataset = hash } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Dataset   string            `json:"dataset,omitempty"`
	Layout    *jsonLayout       `json:"layout,omitempty"`
	Count     int               `json:"count"`
	Positions []jitter.Position `json:"positions"`
}

type jsonLayout struct {
	BinSize          float64  `json:"bin_size"`
	JitterStep       float64  `json:"jitter_step"`
	MaxJitterRange   float64  `json:"max_jitter_range"`
	XJitterMagnitude float64  `json:"x_jitter_magnitude"`
	Seed             uint64   `json:"seed"`
	Lanes            []string `json:"lanes"`
	ValueMin         float64  `json:"value_min"`
	ValueMax         float64  `json:"value_max"`
	CenterSingletons bool     `json:"center_singletons,omitempty"`
}

// RenderPositionsJSON exports positions in input order. A nil slice is
// written as an empty array.
func RenderPositionsJSON(positions []jitter.Position, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if positions == nil {
		positions = []jitter.Position{}
	}

	out := jsonOutput{
		Dataset:   r.dataset,
		Count:     len(positions),
		Positions: positions,
	}
	if o := r.opts; o != nil {
		out.Layout = &jsonLayout{
			BinSize:          o.BinSize,
			JitterStep:       o.JitterStep,
			MaxJitterRange:   o.MaxJitterRange,
			XJitterMagnitude: o.XJitterMagnitude,
			Seed:             o.Seed,
			Lanes:            o.Lanes,
			ValueMin:         o.ValueMin,
			ValueMax:         o.ValueMax,
			CenterSingletons: o.CenterSingletons,
		}
	}

	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
