package partials

import (
	"fmt"
	"sort"

	"github.com/cwbudde/algo-partials/internal/monitoring"
)

// Stats are derived from a track list by ComputeStats.
type Stats struct {
	TimeRange      Extent
	AmpRange       Extent
	FreqRange      Extent
	BandwidthRange Extent

	NumPartials int
	// MaxFrames is the breakpoint count of the longest track.
	MaxFrames int

	// PartialTimeRanges holds one time range per track, {0, 0} for an
	// empty track.
	PartialTimeRanges []Interval

	// MaxActivePartials is the peak number of simultaneously active
	// tracks and MaxActiveTime the time it is first reached.
	MaxActivePartials int
	MaxActiveTime     float32
}

// ComputeStats derives range, per-track and polyphony stats from tracks.
func ComputeStats(tracks []Track) Stats {
	st := Stats{
		TimeRange:         paramRange(tracks, func(t Track) []float32 { return t.Time }),
		AmpRange:          paramRange(tracks, func(t Track) []float32 { return t.Amp }),
		FreqRange:         paramRange(tracks, func(t Track) []float32 { return t.Freq }),
		BandwidthRange:    paramRange(tracks, func(t Track) []float32 { return t.Bandwidth }),
		NumPartials:       len(tracks),
		PartialTimeRanges: make([]Interval, len(tracks)),
	}
	for i, t := range tracks {
		if r, ok := extrema(t.Time); ok {
			st.PartialTimeRanges[i] = r
		}
		if t.Len() > st.MaxFrames {
			st.MaxFrames = t.Len()
		}
	}
	st.MaxActivePartials, st.MaxActiveTime = peakPolyphony(st.PartialTimeRanges)

	monitoring.Logf("partials: stats: %d partials, time range %v, max active %d at %gs",
		st.NumPartials, st.TimeRange, st.MaxActivePartials, st.MaxActiveTime)
	return st
}

func paramRange(tracks []Track, field func(Track) []float32) Extent {
	var e Extent
	for _, t := range tracks {
		if r, ok := extrema(field(t)); ok {
			e = e.Include(r)
		}
	}
	return e
}

// Event kinds in processing order for equal timestamps.
const (
	eventEnd = iota
	eventStart
	eventInstantEnd
)

type sweepEvent struct {
	time float32
	kind int
}

// peakPolyphony walks start/end events in time order and returns the peak
// number of overlapping ranges and the time it is first reached.
//
// At equal timestamps, ends of ranges with positive width come first, then
// starts, then ends of zero-width ranges. A range ending exactly where
// another begins does not overlap it; a zero-width range is active at its
// instant.
func peakPolyphony(ranges []Interval) (int, float32) {
	events := make([]sweepEvent, 0, 2*len(ranges))
	for _, r := range ranges {
		end := eventEnd
		if r.Hi <= r.Lo {
			end = eventInstantEnd
		}
		events = append(events, sweepEvent{time: r.Lo, kind: eventStart})
		events = append(events, sweepEvent{time: r.Hi, kind: end})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].time == events[j].time {
			return events[i].kind < events[j].kind
		}
		return events[i].time < events[j].time
	})

	active, maxActive := 0, 0
	var maxTime float32
	for _, e := range events {
		if e.kind == eventStart {
			active++
			if active > maxActive {
				maxActive = active
				maxTime = e.time
			}
			continue
		}
		active--
	}
	if active != 0 {
		panic(fmt.Sprintf("partials: unbalanced polyphony sweep: %d active after %d events", active, len(events)))
	}
	return maxActive, maxTime
}
