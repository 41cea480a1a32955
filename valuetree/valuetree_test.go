package valuetree

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTree() *Tree {
	t := New()
	t.Set("version", Float(1))
	t.Set("type", String("VutuPartials2"))
	t.Set("n_partials", Uint(2))
	t.Set(NewPath("p0", "time"), Float32Blob([]float32{0, 0.5, 1}))
	t.Set(NewPath("p1", "time"), Float32Blob(nil))
	return t
}

func TestRoundTripPreservesOrderAndValues(t *testing.T) {
	src := sampleTree()
	data, err := src.MarshalBinary()
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, src.Paths(), got.Paths())
	require.Equal(t, float32(1), got.Get("version").Float())
	require.Equal(t, "VutuPartials2", got.Get("type").Str())
	require.Equal(t, uint64(2), got.Get("n_partials").Uint())

	times, err := got.Get(NewPath("p0", "time")).Float32s()
	require.NoError(t, err)
	require.Equal(t, []float32{0, 0.5, 1}, times)

	empty, err := got.Get(NewPath("p1", "time")).Float32s()
	require.NoError(t, err)
	require.Empty(t, empty)

	again, err := got.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, data, again, "re-encoding a decoded tree must be byte-identical")
}

func TestSetReplacesInPlace(t *testing.T) {
	tr := sampleTree()
	tr.Set("type", String("other"))
	require.Equal(t, Path("type"), tr.Paths()[1])
	require.Equal(t, 5, tr.Len())
}

func TestFloatBlobIsBitExact(t *testing.T) {
	in := []float32{float32(math.Pi), -0, math.SmallestNonzeroFloat32, math.MaxFloat32, float32(math.Inf(-1))}
	out, err := Float32Blob(in).Float32s()
	require.NoError(t, err)
	for i := range in {
		require.Equal(t, math.Float32bits(in[i]), math.Float32bits(out[i]), "index %d", i)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := Unmarshal([]byte("nope"))
	require.True(t, errors.Is(err, ErrBadMagic))

	data, err := sampleTree().MarshalBinary()
	require.NoError(t, err)
	_, err = Unmarshal(data[:len(data)-3])
	require.True(t, errors.Is(err, ErrTruncated), "got %v", err)

	_, err = Blob([]byte{1, 2, 3}).Float32s()
	require.Error(t, err)
	_, err = String("x").Float32s()
	require.Error(t, err)
}

func TestValueConversions(t *testing.T) {
	require.Equal(t, float32(3), Uint(3).Float())
	require.Equal(t, uint64(7), Float(7.9).Uint())
	require.Equal(t, uint64(0), Float(-1).Uint())
	require.Equal(t, "", Float(1).Str())
	require.True(t, New().Get("missing").IsNone())
}

func TestChildren(t *testing.T) {
	tr := sampleTree()
	tr.Set(NewPath("p0", "amp"), Float32Blob([]float32{1}))
	require.Equal(t, []Path{"p0/time", "p0/amp"}, tr.Children("p0"))
	require.Equal(t, "p0", Path("p0/amp").Head())
	require.Equal(t, Path("amp"), Path("p0/amp").Tail())
}
