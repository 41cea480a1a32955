package valuetree

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Kind identifies the type held by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindFloat
	KindUint
	KindString
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindUint:
		return "uint"
	case KindString:
		return "string"
	case KindBlob:
		return "blob"
	default:
		return "none"
	}
}

// Value is a tree leaf. The zero Value has KindNone.
type Value struct {
	kind Kind
	f    float32
	u    uint64
	s    string
	b    []byte
}

// Float returns a float leaf.
func Float(v float32) Value { return Value{kind: KindFloat, f: v} }

// Uint returns an unsigned integer leaf.
func Uint(v uint64) Value { return Value{kind: KindUint, u: v} }

// String returns a string leaf.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Blob returns a blob leaf. The slice is not copied.
func Blob(v []byte) Value { return Value{kind: KindBlob, b: v} }

// Kind returns the type held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v holds nothing.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Float returns the value as a float32, converting from uint. Other kinds
// read as 0.
func (v Value) Float() float32 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindUint:
		return float32(v.u)
	}
	return 0
}

// Uint returns the value as an unsigned integer, truncating floats. Other
// kinds read as 0.
func (v Value) Uint() uint64 {
	switch v.kind {
	case KindUint:
		return v.u
	case KindFloat:
		if v.f <= 0 || math.IsNaN(float64(v.f)) {
			return 0
		}
		return uint64(v.f)
	}
	return 0
}

// Str returns the string held by v, or "" for other kinds.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// Bytes returns the blob held by v, or nil for other kinds.
func (v Value) Bytes() []byte {
	if v.kind != KindBlob {
		return nil
	}
	return v.b
}

// Float32Blob packs v as little-endian IEEE-754 floats.
func Float32Blob(v []float32) Value {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(x))
	}
	return Blob(b)
}

// Float32s unpacks a blob written by Float32Blob. A missing value yields
// an empty slice.
func (v Value) Float32s() ([]float32, error) {
	switch v.kind {
	case KindNone:
		return []float32{}, nil
	case KindBlob:
	default:
		return nil, fmt.Errorf("valuetree: %s value is not a float blob", v.kind)
	}
	b := v.Bytes()
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("valuetree: blob of %d bytes is not a float32 array", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

// Path addresses a leaf. Symbols are joined with '/'.
type Path string

// NewPath joins symbols into a Path.
func NewPath(symbols ...string) Path { return Path(strings.Join(symbols, "/")) }

// Head returns the first symbol of p.
func (p Path) Head() string {
	head, _, _ := strings.Cut(string(p), "/")
	return head
}

// Tail returns p without its first symbol.
func (p Path) Tail() Path {
	_, tail, _ := strings.Cut(string(p), "/")
	return Path(tail)
}
