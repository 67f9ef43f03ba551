// Package jitter lays out a categorical strip plot so that coincident points
// stay readable.
//
// Input records carry a discrete category (the release season) and an
// integer-like scalar (the popularity score). Each category owns a horizontal
// lane at an integer y coordinate; within a lane, records that fall into the
// same scalar bin are fanned out vertically around the lane center, and every
// record gets a small amount of seeded horizontal noise.
//
// # Vertical stacking
//
// Records of one category are visited in ascending bin order (ties keep their
// input order). The n-th record of a bin (its stack slot, starting at 0)
// receives the offset
//
//	(slot/2 + 1) * JitterStep, positive for even slots, negative for odd
//
// which yields +1, -1, +2, -2, +3 ... steps. Offsets are clipped to
// MaxJitterRange (keeping their sign), so an overfull bin piles up at the
// lane edge instead of spilling into its neighbour.
//
// # Horizontal noise
//
// One uniform draw u in [0, 1) is taken per record, in input order, from a
// generator created for the call from [Options.Seed]. The record's x
// coordinate is Value + (u-0.5)*XJitterMagnitude. Two calls with the same
// seed and input produce identical output; calls never share generator state.
//
// # Errors
//
// A record whose category is not one of [Options.Lanes] fails the whole call
// with code INVALID_CATEGORY; a NaN, infinite or out-of-domain value fails
// with INVALID_SCALAR. No partial output is returned.
//
// # Usage
//
//	opts := jitter.DefaultOptions()
//	positions, err := jitter.Compute(records, opts)
//	if err != nil {
//	    return err
//	}
//	for _, g := range jitter.Partition(positions, "genre") {
//	    // one scatter series per genre
//	}
package jitter
