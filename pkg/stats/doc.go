// Package stats computes the aggregates behind the dashboard charts.
//
// Every function takes a [dataset.Dataset] (or plain slices) and returns
// plain values ready for charting; nothing here knows about rendering.
// Means and medians come from github.com/montanaflynn/stats, the
// kernel density estimate from github.com/aclements/go-moremath. Non-finite
// feature values (missing cells in the CSV) are ignored.
//
// Groupings are always returned in a deterministic order so that charts and
// cached artifacts are reproducible.
package stats
