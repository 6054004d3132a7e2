package object

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Tree is an immutable, content-addressed directory snapshot: entries
// pre-sorted in canonical order with names unique within the tree. A
// Tree loaded from a store keeps that store attached so its entries can
// be resolved further; a detached Tree still answers in-memory lookups
// but refuses anything that needs the store.
type Tree struct {
	id      OID
	entries []Entry
	store   *Store
}

// NewTree builds a detached tree, sorting entries into canonical order
// and rejecting duplicate names. Trees read from a store arrive
// pre-sorted and validated instead.
func NewTree(id OID, entries []Entry) (*Tree, error) {
	es := make([]Entry, len(entries))
	copy(es, entries)
	sort.Slice(es, func(i, j int) bool { return CompareEntries(&es[i], &es[j]) < 0 })
	for i := 1; i < len(es); i++ {
		prev, cur := &es[i-1], &es[i]
		if PathCompare(prev.name, prev.mode.IsTree(), cur.name, cur.mode.IsTree()) == 0 {
			return nil, fmt.Errorf("new tree: duplicate entry name %q", cur.name)
		}
	}
	return &Tree{id: id, entries: es}, nil
}

// EmptyTree returns the canonical empty tree, detached from any store.
func EmptyTree() *Tree {
	return &Tree{id: EmptyTreeID}
}

// ID returns the tree's content identifier. Detached trees built in
// memory may carry the zero id.
func (t *Tree) ID() OID { return t.id }

// Kind returns KindTree.
func (t *Tree) Kind() Kind { return KindTree }

// Len returns the number of direct children, not the recursive count.
func (t *Tree) Len() int { return len(t.entries) }

// Store returns the object store the tree is attached to, or nil for a
// detached tree.
func (t *Tree) Store() *Store { return t.store }

// EntryByIndex returns an owned copy of the i-th entry in canonical
// order. Negative indices count from the end, -1 being the last entry;
// the valid range is [-Len, Len-1]. Out-of-range indices fail with an
// *IndexError carrying i as given.
func (t *Tree) EntryByIndex(i int) (*Entry, error) {
	pos := i
	if pos < 0 {
		pos += len(t.entries)
	}
	if pos < 0 || pos >= len(t.entries) {
		return nil, &IndexError{Index: i, Len: len(t.entries)}
	}
	e := t.entries[pos]
	e.store = t.store
	return &e, nil
}

// EntryByPath descends a /-separated path and returns the final entry
// without dereferencing it into an object. Multi-segment paths resolve
// through the store in a single ResolvePath call; the store walks the
// intermediate subtrees itself. Absent segments fail with a *PathError
// keyed on the full path argument. A detached tree serves single-segment
// lookups from memory and fails deeper ones with ErrNoStore.
func (t *Tree) EntryByPath(path string) (*Entry, error) {
	segs, wantTree, err := splitTreePath(path)
	if err != nil {
		return nil, err
	}
	if t.store != nil {
		return t.store.ResolvePath(t, path)
	}
	if len(segs) > 1 {
		return nil, ErrNoStore
	}
	e, ok := t.findEntry(segs[0])
	if !ok || (wantTree && e.Kind() != KindTree) {
		return nil, &PathError{Path: path, Err: ErrNotFound}
	}
	return e, nil
}

// Contains reports whether path resolves to an entry. Not-found is the
// answer false; any other failure (malformed path, missing store, store
// fault) propagates untouched.
func (t *Tree) Contains(path string) (bool, error) {
	_, err := t.EntryByPath(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	}
	return false, err
}

// findEntry locates a direct child by exact name. Entries sort with the
// virtual-'/' rule, so a single lexicographic probe can land away from a
// tree entry whose name prefixes a sibling file name ("a" tree next to
// "a.b" file). Probing the name once as a file and once as a directory
// covers both placements; the file probe goes first so a blob wins when
// a tree shares its name.
func (t *Tree) findEntry(name string) (*Entry, bool) {
	for _, asDir := range [2]bool{false, true} {
		i := sort.Search(len(t.entries), func(i int) bool {
			e := &t.entries[i]
			return PathCompare(e.name, e.mode.IsTree(), name, asDir) >= 0
		})
		if i < len(t.entries) && t.entries[i].name == name {
			e := t.entries[i]
			e.store = t.store
			return &e, true
		}
	}
	return nil, false
}

// splitTreePath validates and splits a lookup path. A single trailing
// slash is allowed and constrains the final entry to be a tree; an empty
// path, a NUL byte, a leading slash, or an empty interior segment is
// malformed.
func splitTreePath(path string) (segs []string, wantTree bool, err error) {
	if path == "" || strings.IndexByte(path, 0) >= 0 || path[0] == '/' {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	p := path
	if strings.HasSuffix(p, "/") {
		wantTree = true
		p = p[:len(p)-1]
	}
	segs = strings.Split(p, "/")
	for _, s := range segs {
		if s == "" {
			return nil, false, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segs, wantTree, nil
}
