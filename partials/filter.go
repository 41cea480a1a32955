package partials

import "github.com/cwbudde/algo-partials/internal/monitoring"

// CutHighs empties every track whose frequency exceeds cutoff at any
// breakpoint. Tracks keep their positions; call CleanOutliers afterwards to
// drop the emptied tracks. It returns the number of tracks emptied.
func (s *Set) CutHighs(cutoff float32) int {
	cut := 0
	for i, t := range s.Tracks {
		r, ok := extrema(t.Freq)
		if !ok {
			continue
		}
		if r.Hi > cutoff {
			s.Tracks[i] = Track{}
			cut++
		}
	}
	return cut
}

// CleanOutliers removes tracks with at most one breakpoint, keeping the
// order of the rest. It returns the number of tracks removed.
func (s *Set) CleanOutliers() int {
	before := len(s.Tracks)
	kept := s.Tracks[:0]
	for _, t := range s.Tracks {
		if !t.Degenerate() {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < before; i++ {
		s.Tracks[i] = Track{}
	}
	s.Tracks = kept
	monitoring.Logf("partials: cleanOutliers: before %d, after %d", before, len(kept))
	return before - len(kept)
}
