package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/cwbudde/algo-partials/internal/monitoring"
	"github.com/cwbudde/algo-partials/partials"
)

// EncodeJSON writes s in the .utu text format. Scalars come first in a
// fixed order, then one object per track keyed p0, p1, ... The type field
// is always TypeJSON.
func EncodeJSON(s *partials.Set) ([]byte, error) {
	b := make([]byte, 0, 256)
	b = append(b, "{\n"...)

	var err error
	b = appendKey(b, "version")
	if b, err = appendFloat(b, fileVersion(s)); err != nil {
		return nil, fmt.Errorf("codec: version: %w", err)
	}
	b = appendKey(append(b, ",\n"...), "type")
	b = appendString(b, TypeJSON)
	b = appendKey(append(b, ",\n"...), "source")
	b = appendString(b, s.SourceFile)

	prov := s.Provenance
	for _, f := range scalarFields {
		b = appendKey(append(b, ",\n"...), f.name)
		if b, err = appendFloat(b, *f.ptr(&prov)); err != nil {
			return nil, fmt.Errorf("codec: %s: %w", f.name, err)
		}
	}

	for i, t := range s.Tracks {
		key := trackKey(i)
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTrackShape, key, err)
		}
		b = appendKey(append(b, ",\n"...), key)
		b = append(b, '{')
		for j, arr := range trackArrays(t) {
			if j > 0 {
				b = append(b, ", "...)
			}
			b = appendKey(b, arrayNames[j])
			b = append(b, '[')
			for k, v := range arr {
				if k > 0 {
					b = append(b, ',')
				}
				if b, err = appendFloat(b, v); err != nil {
					return nil, fmt.Errorf("codec: %s.%s[%d]: %w", key, arrayNames[j], k, err)
				}
			}
			b = append(b, ']')
		}
		b = append(b, '}')
	}
	b = append(b, "\n}\n"...)
	return b, nil
}

func appendKey(b []byte, key string) []byte {
	b = appendString(b, key)
	return append(b, ": "...)
}

func appendString(b []byte, s string) []byte {
	q, _ := json.Marshal(s)
	return append(b, q...)
}

// appendFloat writes v as the shortest decimal that parses back to the
// same float32.
func appendFloat(b []byte, v float32) ([]byte, error) {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return b, fmt.Errorf("non-finite value %v", v)
	}
	return strconv.AppendFloat(b, float64(v), 'g', -1, 32), nil
}

// DecodeJSON parses a .utu document and finalizes the result. Keys may
// appear in any order. Unknown keys and malformed values are logged and
// skipped; absent or unreadable scalars stay zero. A track whose time array
// cannot be read is dropped; any other unreadable array is zero-filled.
func DecodeJSON(data []byte) (*partials.Ready, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("codec: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrNotObject
	}

	type indexedTrack struct {
		index int
		track partials.Track
	}
	var (
		set    partials.Set
		tracks []indexedTrack
		err    error
	)
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		switch {
		case value.Type == gjson.Number:
			ptr := scalarField(&set.Provenance, name)
			if name == "version" {
				ptr = &set.Version
			}
			if ptr == nil {
				monitoring.Logf("codec: skipping unknown number %q", name)
				break
			}
			v, perr := parseFloat32(value)
			if perr != nil {
				monitoring.Logf("codec: skipping %q: %v", name, perr)
				break
			}
			*ptr = v
		case value.Type == gjson.String:
			switch name {
			case "type":
				set.Type = value.Str
			case "source":
				set.SourceFile = value.Str
			default:
				monitoring.Logf("codec: skipping unknown string %q", name)
			}
		case value.IsObject():
			idx, ok := trackIndex(name)
			if !ok {
				monitoring.Logf("codec: skipping unknown object %q", name)
				break
			}
			var t partials.Track
			if t, ok, err = decodeJSONTrack(name, value); ok && err == nil {
				tracks = append(tracks, indexedTrack{index: idx, track: t})
			}
		default:
			monitoring.Logf("codec: skipping %q of type %s", name, value.Type)
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	if set.Type != "" && set.Type != TypeJSON {
		monitoring.Logf("codec: unexpected type %q in text file", set.Type)
	}

	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].index < tracks[j].index })
	set.Tracks = make([]partials.Track, len(tracks))
	for i, it := range tracks {
		set.Tracks[i] = it.track
	}
	return set.Finalize(), nil
}

// decodeJSONTrack reads one track object. It reports false when the track
// has no readable time array and must be dropped.
func decodeJSONTrack(key string, obj gjson.Result) (partials.Track, bool, error) {
	var (
		arrays  [5][]float32
		present [5]bool
	)
	obj.ForEach(func(k, v gjson.Result) bool {
		slot := arrayIndex(k.String())
		if slot < 0 || !v.IsArray() {
			monitoring.Logf("codec: %s: skipping unknown data %q", key, k.String())
			return true
		}
		out, err := parseFloat32Array(v)
		if err != nil {
			monitoring.Logf("codec: %s.%s: %v", key, arrayNames[slot], err)
			return true
		}
		arrays[slot], present[slot] = out, true
		return true
	})
	if !present[0] {
		monitoring.Logf("codec: %s has no readable time array, dropping it", key)
		return partials.Track{}, false, nil
	}
	t, err := assembleTrack(key, arrays, present)
	return t, err == nil, err
}

func parseFloat32Array(v gjson.Result) ([]float32, error) {
	items := v.Array()
	out := make([]float32, len(items))
	for i, item := range items {
		if item.Type != gjson.Number {
			return nil, fmt.Errorf("element %d is not a number", i)
		}
		f, err := parseFloat32(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// parseFloat32 parses the raw number text directly at 32-bit precision so
// values written by appendFloat come back bit-exact. Values outside the
// float32 range are rejected.
func parseFloat32(r gjson.Result) (float32, error) {
	v, err := strconv.ParseFloat(r.Raw, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", r.Raw, err)
	}
	return float32(v), nil
}
