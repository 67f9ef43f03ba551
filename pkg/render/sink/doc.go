// Package sink renders computed layouts and aggregates into files.
//
// # SVG Output
//
// [RenderStripSVG] draws jitter positions as a strip plot: one horizontal
// band per lane, a popularity grid, one circle per position colored by
// genre (or subgenre) and a legend. Options:
//
//   - [WithSize]: canvas size in pixels (default 900x520)
//   - [WithTitle]: heading drawn above the plot
//   - [WithColorBy]: metadata key used for colors and legend
//   - [WithLanes]: lane names, bottom to top (default seasons)
//
// # PNG Output
//
// [RenderDensityPNG] plots density series as lines with gonum/plot.
//
// # JSON Output
//
// [RenderPositionsJSON] exports positions together with the layout options
// that produced them, so the same plot can be reproduced later.
package sink
