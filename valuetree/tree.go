package valuetree

// Tree is an insertion-ordered map from Path to Value.
type Tree struct {
	paths []Path
	vals  map[Path]Value
	kids  map[string][]Path
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{vals: make(map[Path]Value), kids: make(map[string][]Path)}
}

// Set stores v at p. Replacing an existing leaf keeps its position.
func (t *Tree) Set(p Path, v Value) {
	if _, ok := t.vals[p]; !ok {
		t.paths = append(t.paths, p)
		if p.Tail() != "" {
			t.kids[p.Head()] = append(t.kids[p.Head()], p)
		}
	}
	t.vals[p] = v
}

// Get returns the value at p, or a KindNone value when p is absent.
func (t *Tree) Get(p Path) Value { return t.vals[p] }

// Lookup returns the value at p and whether it exists.
func (t *Tree) Lookup(p Path) (Value, bool) {
	v, ok := t.vals[p]
	return v, ok
}

// Len returns the number of leaves.
func (t *Tree) Len() int { return len(t.paths) }

// Paths returns the leaf paths in insertion order.
func (t *Tree) Paths() []Path {
	out := make([]Path, len(t.paths))
	copy(out, t.paths)
	return out
}

// Children returns the leaves below the first-level symbol head, keyed by
// the remaining path, in insertion order.
func (t *Tree) Children(head string) []Path {
	kids := t.kids[head]
	if len(kids) == 0 {
		return nil
	}
	out := make([]Path, len(kids))
	copy(out, kids)
	return out
}
