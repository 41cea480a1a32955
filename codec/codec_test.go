package codec

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-partials/internal/monitoring"
	"github.com/cwbudde/algo-partials/partials"
	"github.com/cwbudde/algo-partials/valuetree"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	m.Run()
}

func sampleSet(typ string) *partials.Set {
	s := partials.NewSet(partials.Provenance{
		Type:           typ,
		SourceFile:     "cello \"A\".wav",
		SourceDuration: 3.25,
		Params: partials.Params{
			Resolution:  40,
			WindowWidth: 80,
			AmpFloor:    -60,
			FreqDrift:   40,
			LoCut:       20,
			HiCut:       20000,
			Fundamental: 220.5,
		},
	})
	s.Tracks = []partials.Track{
		{
			Time:      []float32{0.1, 0.2, 0.30000001},
			Amp:       []float32{1e-7, 0.5, float32(math.Pi)},
			Freq:      []float32{220, 220.25, 219.875},
			Bandwidth: []float32{0, 0.125, 1},
			Phase:     []float32{-3.1415925, 0, 1.5707964},
		},
		{
			Time:      []float32{0.05, 1.75},
			Amp:       []float32{math.MaxFloat32, math.SmallestNonzeroFloat32},
			Freq:      []float32{440, 441},
			Bandwidth: []float32{0.5, 0.5},
			Phase:     []float32{2, -2},
		},
	}
	return s
}

var equateEmpty = cmpopts.EquateEmpty()

func TestJSONRoundTrip(t *testing.T) {
	src := sampleSet(TypeJSON)
	data, err := EncodeJSON(src)
	require.NoError(t, err)

	r, err := DecodeJSON(data)
	require.NoError(t, err)
	if diff := cmp.Diff(src, r.View(), equateEmpty); diff != "" {
		t.Fatalf("decoded set mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 2, r.Stats().NumPartials)

	again, err := EncodeJSON(r.View())
	require.NoError(t, err)
	require.Equal(t, string(data), string(again))
}

func TestBinaryRoundTrip(t *testing.T) {
	src := sampleSet(TypeBinary)
	data, err := EncodeBinary(src)
	require.NoError(t, err)

	r, err := DecodeBinary(data)
	require.NoError(t, err)
	if diff := cmp.Diff(src, r.View(), equateEmpty); diff != "" {
		t.Fatalf("decoded set mismatch (-want +got):\n%s", diff)
	}

	again, err := EncodeBinary(r.View())
	require.NoError(t, err)
	require.Equal(t, data, again)
}

func TestCrossFormatConversionKeepsTracks(t *testing.T) {
	data, err := EncodeJSON(sampleSet(TypeJSON))
	require.NoError(t, err)
	r, err := DecodeJSON(data)
	require.NoError(t, err)
	bin, err := EncodeBinary(r.View())
	require.NoError(t, err)
	back, err := DecodeBinary(bin)
	require.NoError(t, err)

	require.Equal(t, TypeBinary, back.Provenance().Type)
	if diff := cmp.Diff(sampleSet(TypeJSON).Tracks, back.View().Tracks, equateEmpty); diff != "" {
		t.Fatalf("tracks changed across formats (-want +got):\n%s", diff)
	}
}

func TestDecodeJSONAnyKeyOrder(t *testing.T) {
	doc := `{
  "p1": {"phase": [0, 0], "bw": [0, 0], "freq": [50, 60], "amp": [0.1, 0.2], "time": [0, 1]},
  "fundamental": 110,
  "mystery": 42,
  "type": "VutuPartials",
  "p0": {"time": [0, 1], "freq": [100, 5000], "amp": [1, 1], "bw": [0, 0], "phase": [0, 0], "extra": [1]},
  "source": "x.wav",
  "version": 1,
  "flags": [1, 2]
}`
	r, err := DecodeJSON([]byte(doc))
	require.NoError(t, err)
	prov := r.Provenance()
	require.Equal(t, float32(110), prov.Params.Fundamental)
	require.Equal(t, float32(0), prov.Params.Resolution)
	require.Equal(t, float32(0), prov.SourceDuration)
	require.Equal(t, "x.wav", prov.SourceFile)

	t0, _ := r.Track(0)
	t1, _ := r.Track(1)
	require.Equal(t, []float32{100, 5000}, t0.Freq, "tracks must be ordered by index, not position")
	require.Equal(t, []float32{50, 60}, t1.Freq)
}

func TestLoadCutAndCleanScenario(t *testing.T) {
	doc := `{"version": 1, "type": "VutuPartials", "source": "s.wav",
"p0": {"time": [0, 1], "amp": [1, 1], "freq": [100, 5000], "bw": [0, 0], "phase": [0, 0]},
"p1": {"time": [0, 1], "amp": [1, 1], "freq": [50, 60], "bw": [0, 0], "phase": [0, 0]}}`
	r, err := DecodeJSON([]byte(doc))
	require.NoError(t, err)

	s := r.Edit()
	s.CutHighs(4000)
	s.CleanOutliers()
	r = s.Finalize()
	require.Equal(t, 1, r.Stats().NumPartials)
	tr, ok := r.Track(0)
	require.True(t, ok)
	require.Equal(t, []float32{50, 60}, tr.Freq)
}

func TestDecodeJSONMissingArrayIsZeroFilled(t *testing.T) {
	doc := `{"version": 1, "p0": {"time": [0, 1, 2], "amp": [1, 1, 1], "freq": [5, 5, 5], "bw": [0, 0, 0]}}`
	r, err := DecodeJSON([]byte(doc))
	require.NoError(t, err)
	tr, _ := r.Track(0)
	require.Equal(t, []float32{0, 0, 0}, tr.Phase)
}

func TestDecodeJSONErrors(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"p0": `))
	require.Error(t, err)

	_, err = DecodeJSON([]byte(`[1, 2]`))
	require.True(t, errors.Is(err, ErrNotObject))

	_, err = DecodeJSON([]byte(`{"p0": {"time": [0, 1], "amp": [1]}}`))
	require.True(t, errors.Is(err, ErrTrackShape), "got %v", err)
}

func TestDecodeJSONSkipsMalformedValues(t *testing.T) {
	doc := `{"version": 1, "resolution": 1e39, "window_width": 80,
"p0": {"time": [0, 1], "amp": [1, null], "freq": [100, 1e40], "bw": [0, 0], "phase": [0, 0]},
"p1": {"time": [0, "x"], "amp": [1, 1]},
"p2": {"time": [0, 1], "amp": [0.5, 0.5], "freq": [300, 310], "bw": [0, 0], "phase": [0, 0]}}`
	r, err := DecodeJSON([]byte(doc))
	require.NoError(t, err)

	prov := r.Provenance()
	require.Equal(t, float32(0), prov.Params.Resolution)
	require.Equal(t, float32(80), prov.Params.WindowWidth)

	require.Equal(t, 2, r.Len(), "track without readable time must be dropped")
	t0, _ := r.Track(0)
	require.Equal(t, []float32{0, 0}, t0.Amp)
	require.Equal(t, []float32{0, 0}, t0.Freq)
	t1, _ := r.Track(1)
	require.Equal(t, []float32{300, 310}, t1.Freq)
}

func TestJSONKeepsFileVersion(t *testing.T) {
	src := sampleSet(TypeJSON)
	src.Version = 2
	doc, err := EncodeJSON(src)
	require.NoError(t, err)
	require.Contains(t, string(doc), `"version": 2,`)

	r, err := DecodeJSON(doc)
	require.NoError(t, err)
	require.Equal(t, float32(2), r.Provenance().Version)
	again, err := EncodeJSON(r.View())
	require.NoError(t, err)
	require.Equal(t, string(doc), string(again))

	bin, err := EncodeBinary(r.View())
	require.NoError(t, err)
	back, err := DecodeBinary(bin)
	require.NoError(t, err)
	require.Equal(t, float32(2), back.Provenance().Version)

	src.Version = 0
	doc, err = EncodeJSON(src)
	require.NoError(t, err)
	require.Contains(t, string(doc), `"version": 1,`)
}

func TestDecodeBinaryIgnoresStrayLeaves(t *testing.T) {
	tree := valuetree.New()
	tree.Set("type", valuetree.Float(3))
	tree.Set("n_partials", valuetree.Uint(1))
	tree.Set("p0/time", valuetree.Float32Blob([]float32{0, 1}))
	tree.Set("p0/freq", valuetree.Float32Blob([]float32{100, 200}))
	tree.Set("p0/color", valuetree.String("red"))
	tree.Set("p1/time", valuetree.Float32Blob([]float32{5, 6}))
	tree.Set("extra", valuetree.Uint(7))
	data, err := tree.MarshalBinary()
	require.NoError(t, err)

	r, err := DecodeBinary(data)
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())
	require.Equal(t, "", r.Provenance().Type)
	tr, _ := r.Track(0)
	require.Equal(t, []float32{100, 200}, tr.Freq)
	require.Equal(t, []float32{0, 0}, tr.Amp)
}

func TestEncodeRejectsBadTracks(t *testing.T) {
	s := sampleSet(TypeJSON)
	s.Tracks[0].Amp = s.Tracks[0].Amp[:1]
	_, err := EncodeJSON(s)
	require.True(t, errors.Is(err, ErrTrackShape))
	_, err = EncodeBinary(s)
	require.True(t, errors.Is(err, ErrTrackShape))

	s = sampleSet(TypeJSON)
	s.Tracks[1].Freq[0] = float32(math.NaN())
	_, err = EncodeJSON(s)
	require.Error(t, err)
}

func TestDecodeBinaryWithoutPartialsIsEmpty(t *testing.T) {
	tree := valuetree.New()
	tree.Set("version", valuetree.Float(1))
	tree.Set("type", valuetree.String(TypeBinary))
	tree.Set("resolution", valuetree.Float(40))
	data, err := tree.MarshalBinary()
	require.NoError(t, err)

	r, err := DecodeBinary(data)
	require.NoError(t, err)
	require.Equal(t, 0, r.Len())
	require.True(t, r.Stats().TimeRange.Empty())
	require.Equal(t, float32(40), r.Provenance().Params.Resolution)
}

func TestDecodeBinaryErrors(t *testing.T) {
	_, err := DecodeBinary([]byte("garbage"))
	require.True(t, errors.Is(err, valuetree.ErrBadMagic))

	tree := valuetree.New()
	tree.Set("n_partials", valuetree.Uint(1))
	tree.Set("p0/time", valuetree.Blob([]byte{1, 2, 3}))
	data, err := tree.MarshalBinary()
	require.NoError(t, err)
	_, err = DecodeBinary(data)
	require.Error(t, err)

	tree = valuetree.New()
	tree.Set("n_partials", valuetree.Uint(1<<40))
	data, err = tree.MarshalBinary()
	require.NoError(t, err)
	_, err = DecodeBinary(data)
	require.Error(t, err)
}

func TestTrackIndex(t *testing.T) {
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"p0", 0, true},
		{"p12", 12, true},
		{"p", 0, false},
		{"p01", 0, false},
		{"q1", 0, false},
		{"p-1", 0, false},
		{"phase", 0, false},
	}
	for _, tt := range tests {
		got, ok := trackIndex(tt.key)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("trackIndex(%q) = %d, %v; want %d, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}
