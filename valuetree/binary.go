package valuetree

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Magic prefixes every encoded tree.
const Magic = "VTR1"

var (
	// ErrBadMagic is returned when data does not start with Magic.
	ErrBadMagic = errors.New("valuetree: bad magic")
	// ErrTruncated is returned when a record runs past the end of data.
	ErrTruncated = errors.New("valuetree: truncated data")
)

const (
	fieldEntry protowire.Number = 1

	fieldPath   protowire.Number = 1
	fieldFloat  protowire.Number = 2
	fieldUint   protowire.Number = 3
	fieldString protowire.Number = 4
	fieldBlob   protowire.Number = 5
)

// MarshalBinary encodes the tree.
func (t *Tree) MarshalBinary() ([]byte, error) {
	out := append([]byte(nil), Magic...)
	var entry []byte
	for _, p := range t.paths {
		v := t.vals[p]
		entry = entry[:0]
		entry = protowire.AppendTag(entry, fieldPath, protowire.BytesType)
		entry = protowire.AppendString(entry, string(p))
		switch v.kind {
		case KindFloat:
			entry = protowire.AppendTag(entry, fieldFloat, protowire.Fixed32Type)
			entry = protowire.AppendFixed32(entry, math.Float32bits(v.f))
		case KindUint:
			entry = protowire.AppendTag(entry, fieldUint, protowire.VarintType)
			entry = protowire.AppendVarint(entry, v.u)
		case KindString:
			entry = protowire.AppendTag(entry, fieldString, protowire.BytesType)
			entry = protowire.AppendString(entry, v.s)
		case KindBlob:
			entry = protowire.AppendTag(entry, fieldBlob, protowire.BytesType)
			entry = protowire.AppendBytes(entry, v.b)
		default:
			return nil, fmt.Errorf("valuetree: %q has no value", p)
		}
		out = protowire.AppendTag(out, fieldEntry, protowire.BytesType)
		out = protowire.AppendBytes(out, entry)
	}
	return out, nil
}

// Unmarshal decodes data written by MarshalBinary. Unknown fields are
// skipped.
func Unmarshal(data []byte) (*Tree, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, ErrBadMagic
	}
	t := New()
	b := data[len(Magic):]
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
		}
		b = b[n:]
		if num != fieldEntry || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		raw, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
		}
		b = b[n:]
		p, v, err := decodeEntry(raw)
		if err != nil {
			return nil, err
		}
		t.Set(p, v)
	}
	return t, nil
}

func decodeEntry(b []byte) (Path, Value, error) {
	var (
		p       Path
		v       Value
		hasPath bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", Value{}, fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldPath && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(b)
			n = m
			p, hasPath = Path(s), true
		case num == fieldFloat && typ == protowire.Fixed32Type:
			x, m := protowire.ConsumeFixed32(b)
			n = m
			v = Float(math.Float32frombits(x))
		case num == fieldUint && typ == protowire.VarintType:
			x, m := protowire.ConsumeVarint(b)
			n = m
			v = Uint(x)
		case num == fieldString && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(b)
			n = m
			v = String(s)
		case num == fieldBlob && typ == protowire.BytesType:
			x, m := protowire.ConsumeBytes(b)
			n = m
			v = Blob(append([]byte{}, x...))
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return "", Value{}, fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
		}
		b = b[n:]
	}
	if !hasPath {
		return "", Value{}, fmt.Errorf("valuetree: entry without path")
	}
	if v.IsNone() {
		return "", Value{}, fmt.Errorf("valuetree: entry %q without value", p)
	}
	return p, v, nil
}
