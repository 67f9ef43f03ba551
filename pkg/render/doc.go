// Package render holds the static output formats of the dashboard.
//
// The interactive charts live in [github.com/matzehuels/trackdash/pkg/chart];
// everything that has to work without a browser (an SVG of the strip plot, a
// PNG of the energy densities, a JSON export of the computed positions) is in
// the [sink] subpackage.
//
//	svg := sink.RenderStripSVG(positions, sink.WithTitle("Release season"))
//	png, err := sink.RenderDensityPNG(series)
//	doc, err := sink.RenderPositionsJSON(positions, sink.WithJSONOptions(opts))
package render
