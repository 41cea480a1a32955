package partials

import "fmt"

// Interval is the closed numeric range [Lo, Hi].
type Interval struct {
	Lo float32
	Hi float32
}

// Width returns Hi - Lo.
func (r Interval) Width() float32 { return r.Hi - r.Lo }

// Contains reports whether x lies in the half-open range [Lo, Hi).
// An interval with Lo == Hi contains nothing.
func (r Interval) Contains(x float32) bool { return x >= r.Lo && x < r.Hi }

// Union returns the smallest interval covering both r and o.
func (r Interval) Union(o Interval) Interval {
	return Interval{Lo: minf(r.Lo, o.Lo), Hi: maxf(r.Hi, o.Hi)}
}

func (r Interval) String() string { return fmt.Sprintf("[%g, %g]", r.Lo, r.Hi) }

// Extent is an Interval that may hold no data. The zero value is empty.
type Extent struct {
	iv Interval
	ok bool
}

// ExtentOf returns a non-empty extent covering iv.
func ExtentOf(iv Interval) Extent { return Extent{iv: iv, ok: true} }

// Interval returns the covered range and whether any data contributed to it.
func (e Extent) Interval() (Interval, bool) { return e.iv, e.ok }

// Empty reports whether no data contributed to e.
func (e Extent) Empty() bool { return !e.ok }

// Lo returns the lower bound, or 0 when e is empty.
func (e Extent) Lo() float32 { return e.iv.Lo }

// Hi returns the upper bound, or 0 when e is empty.
func (e Extent) Hi() float32 { return e.iv.Hi }

// Include widens e to cover iv.
func (e Extent) Include(iv Interval) Extent {
	if !e.ok {
		return ExtentOf(iv)
	}
	return Extent{iv: e.iv.Union(iv), ok: true}
}

func (e Extent) String() string {
	if !e.ok {
		return "[empty]"
	}
	return e.iv.String()
}

// extrema returns the min and max of v, and false when v is empty.
func extrema(v []float32) (Interval, bool) {
	if len(v) == 0 {
		return Interval{}, false
	}
	r := Interval{Lo: v[0], Hi: v[0]}
	for _, x := range v[1:] {
		r.Lo = minf(r.Lo, x)
		r.Hi = maxf(r.Hi, x)
	}
	return r, true
}

func maxf(a float32, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a float32, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
