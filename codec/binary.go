package codec

import (
	"fmt"

	"github.com/cwbudde/algo-partials/internal/monitoring"
	"github.com/cwbudde/algo-partials/partials"
	"github.com/cwbudde/algo-partials/valuetree"
)

// EncodeBinary writes s in the .ut2 format: scalar leaves followed by one
// float32 blob per track array at path p<i>/<array>. The type leaf is
// always TypeBinary.
func EncodeBinary(s *partials.Set) ([]byte, error) {
	tree := valuetree.New()
	tree.Set("version", valuetree.Float(fileVersion(s)))
	tree.Set("type", valuetree.String(TypeBinary))
	tree.Set("source", valuetree.String(s.SourceFile))
	prov := s.Provenance
	for _, f := range scalarFields {
		tree.Set(valuetree.Path(f.name), valuetree.Float(*f.ptr(&prov)))
	}
	tree.Set("n_partials", valuetree.Uint(uint64(len(s.Tracks))))

	for i, t := range s.Tracks {
		key := trackKey(i)
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTrackShape, key, err)
		}
		for j, arr := range trackArrays(t) {
			tree.Set(valuetree.NewPath(key, arrayNames[j]), valuetree.Float32Blob(arr))
		}
	}
	return tree.MarshalBinary()
}

// DecodeBinary parses a .ut2 file and finalizes the result. A missing or
// zero n_partials yields an empty set.
func DecodeBinary(data []byte) (*partials.Ready, error) {
	tree, err := valuetree.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}

	var set partials.Set
	set.Version = tree.Get("version").Float()
	set.Type = tree.Get("type").Str()
	set.SourceFile = tree.Get("source").Str()
	for _, f := range scalarFields {
		*f.ptr(&set.Provenance) = tree.Get(valuetree.Path(f.name)).Float()
	}
	if set.Type != "" && set.Type != TypeBinary {
		monitoring.Logf("codec: unexpected type %q in binary file", set.Type)
	}

	n := tree.Get("n_partials").Uint()
	if n > uint64(tree.Len()) {
		return nil, fmt.Errorf("codec: n_partials %d exceeds %d tree entries", n, tree.Len())
	}
	checkLeaves(tree, n)

	set.Tracks = make([]partials.Track, n)
	for i := range set.Tracks {
		key := trackKey(i)
		var (
			arrays  [5][]float32
			present [5]bool
		)
		for _, p := range tree.Children(key) {
			j := arrayIndex(string(p.Tail()))
			if j < 0 {
				monitoring.Logf("codec: skipping unknown leaf %q", p)
				continue
			}
			if arrays[j], err = tree.Get(p).Float32s(); err != nil {
				return nil, fmt.Errorf("codec: %s: %w", p, err)
			}
			present[j] = true
		}
		if set.Tracks[i], err = assembleTrack(key, arrays, present); err != nil {
			return nil, err
		}
	}
	return set.Finalize(), nil
}

// checkLeaves logs top-level leaves of the wrong kind, unknown leaves and
// track subtrees beyond n_partials. None of them stop decoding.
func checkLeaves(tree *valuetree.Tree, n uint64) {
	stray := make(map[string]bool)
	for _, p := range tree.Paths() {
		head := p.Head()
		if idx, ok := trackIndex(head); ok {
			if uint64(idx) >= n && !stray[head] {
				stray[head] = true
				monitoring.Logf("codec: ignoring track %q beyond n_partials %d", head, n)
			}
			continue
		}
		kind := tree.Get(p).Kind()
		switch {
		case p.Tail() != "":
			monitoring.Logf("codec: skipping unknown leaf %q", p)
		case head == "type" || head == "source":
			if kind != valuetree.KindString {
				monitoring.Logf("codec: %q is a %s, want string", head, kind)
			}
		case head == "version" || head == "n_partials" || scalarField(&partials.Provenance{}, head) != nil:
			if kind != valuetree.KindFloat && kind != valuetree.KindUint {
				monitoring.Logf("codec: %q is a %s, want number", head, kind)
			}
		default:
			monitoring.Logf("codec: skipping unknown leaf %q", p)
		}
	}
}
