// Package partials holds the result of additive (sinusoidal plus noise)
// analysis of an audio signal: a set of partial tracks, each a time series of
// breakpoints carrying amplitude, frequency, bandwidth and phase.
//
// A Set is the mutable form. Filters such as CutHighs and CleanOutliers run on
// a Set. Finalize computes Stats and moves the tracks into a Ready value; frame
// lookups are only available on Ready, so they always see stats that match the
// tracks they index.
//
//	set := partials.NewSet(prov)
//	set.Tracks = tracks
//	set.CutHighs(4000)
//	set.CleanOutliers()
//	r := set.Finalize()
//	f, ok := r.FrameAt(0, 0.25)
//
// Nothing in this package synchronizes. A Set has one owner; a Ready may be
// shared between readers once its owner stops stamping provenance on it.
package partials
