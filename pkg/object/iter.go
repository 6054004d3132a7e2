package object

// TreeIter is a forward-only cursor over one tree's entries. Each call
// to Tree.Iter starts an independent cursor, so concurrent iterators
// over the same tree never interfere; a consumed iterator is never
// reset.
type TreeIter struct {
	tree *Tree
	pos  int
}

// Iter returns a fresh iterator over t's entries in canonical order.
func (t *Tree) Iter() *TreeIter {
	return &TreeIter{tree: t}
}

// Next returns an owned copy of the entry under the cursor and advances.
// The second result is false once the entries are exhausted; that is the
// end of the sequence, not an error.
func (it *TreeIter) Next() (*Entry, bool) {
	if it.pos >= len(it.tree.entries) {
		return nil, false
	}
	e := it.tree.entries[it.pos]
	e.store = it.tree.store
	it.pos++
	return &e, true
}
