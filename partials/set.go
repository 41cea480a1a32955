package partials

// FileVersion is the partials file format version written by the codecs.
const FileVersion float32 = 1

// Params are the analysis parameters that produced a Set.
type Params struct {
	Resolution  float32
	WindowWidth float32
	AmpFloor    float32
	FreqDrift   float32
	LoCut       float32
	HiCut       float32
	Fundamental float32
}

// Provenance records where a Set came from.
type Provenance struct {
	Version float32
	Type    string

	SourceFile string
	// SourceDuration is the length of the whole source in seconds. It is
	// usually longer than the time range covered by the tracks.
	SourceDuration float32

	Params Params
}

// Set is the mutable partial set.
type Set struct {
	Tracks []Track
	Provenance
}

// NewSet returns an empty set carrying prov. A zero Version is replaced
// with FileVersion.
func NewSet(prov Provenance) *Set {
	if prov.Version == 0 {
		prov.Version = FileVersion
	}
	return &Set{Provenance: prov}
}

// Len returns the number of tracks.
func (s *Set) Len() int { return len(s.Tracks) }

// Finalize computes stats for the current tracks and moves them into a
// Ready value. s is left without tracks.
func (s *Set) Finalize() *Ready {
	r := &Ready{
		tracks: s.Tracks,
		prov:   s.Provenance,
		stats:  ComputeStats(s.Tracks),
	}
	s.Tracks = nil
	return r
}

// Ready is a finalized partial set whose Stats match its tracks.
type Ready struct {
	tracks []Track
	prov   Provenance
	stats  Stats
}

// Len returns the number of tracks.
func (r *Ready) Len() int { return len(r.tracks) }

// Track returns track i.
// The returned slices are shared with r and must not be modified.
func (r *Ready) Track(i int) (Track, bool) {
	if i < 0 || i >= len(r.tracks) {
		return Track{}, false
	}
	return r.tracks[i], true
}

// Stats returns the stats computed by Finalize.
// PartialTimeRanges is shared with r and must not be modified.
func (r *Ready) Stats() Stats { return r.stats }

// Provenance returns the provenance of r.
func (r *Ready) Provenance() Provenance { return r.prov }

// SetProvenance replaces the provenance of r. Tracks and stats are
// unaffected. It must not be called once r is shared with readers.
func (r *Ready) SetProvenance(p Provenance) { r.prov = p }

// View returns a Set sharing the tracks of r, for encoders and other
// read-only consumers. The returned Set must not be modified.
func (r *Ready) View() *Set {
	return &Set{Tracks: r.tracks, Provenance: r.prov}
}

// Edit moves the tracks back into a new mutable Set. r is left empty and
// every lookup on it reports no data.
func (r *Ready) Edit() *Set {
	s := &Set{Tracks: r.tracks, Provenance: r.prov}
	r.tracks = nil
	r.stats = Stats{}
	return s
}
