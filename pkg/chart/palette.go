package chart

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// GenreColors are the fixed genre colors used across every chart.
var GenreColors = map[string]string{
	"pop":   "#ff7f0e",
	"rock":  "#d62728",
	"rap":   "#2ca02c",
	"edm":   "#9467bd",
	"r&b":   "#8c564b",
	"latin": "#e377c2",
}

// fallback cycles for categories without a fixed color (subgenres).
var fallback = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Accent colors of the single-series charts.
const (
	colorPrimary   = "#2E86AB"
	colorHighlight = "#A23B72"
	colorFeature   = "#F18F01"
	colorPositive  = "#2ca02c"
	colorNegative  = "#d62728"
	colorOverall   = "#1f77b4"
)

// ColorFor returns the color of genre, or a stable palette color picked by
// index for anything else.
func ColorFor(name string, index int) string {
	if c, ok := GenreColors[name]; ok {
		return c
	}
	return fallback[index%len(fallback)]
}

var printer = message.NewPrinter(language.English)

// Casers are stateful, so every call gets its own.

// GenreLabel renders a genre the way legends show it ("R&B", "EDM").
func GenreLabel(g string) string { return cases.Upper(language.English).String(g) }

// TitleLabel capitalizes each word ("album rock" -> "Album Rock").
func TitleLabel(s string) string { return cases.Title(language.English).String(s) }

// FormatCount groups thousands ("32,833").
func FormatCount(n int) string { return printer.Sprintf("%d", n) }

// FormatFloat formats with one decimal and grouped thousands.
func FormatFloat(f float64) string { return printer.Sprintf("%.1f", f) }
