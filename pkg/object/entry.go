package object

import (
	"unicode/utf8"
)

// Entry is one record of a tree: a name, an enumerated file mode, and
// the id of the object the name points at. Entries are immutable; every
// lookup and iteration step hands out an independent copy, so an Entry
// outlives the traversal that produced it.
type Entry struct {
	name  string // raw bytes, not guaranteed valid UTF-8
	mode  FileMode
	id    OID
	store *Store // nil for entries of a detached tree
}

// NewEntry builds a detached entry, the input shape WriteTree and
// NewTree accept. Entries handed out by lookups carry their tree's
// store instead.
func NewEntry(name string, mode FileMode, id OID) Entry {
	return Entry{name: name, mode: mode, id: id}
}

// Name returns the entry name exactly as the tree payload stores it.
// The bytes need not form valid text; Text decodes them fallibly.
func (e *Entry) Name() string { return e.name }

// Text decodes the entry name as UTF-8 text, failing with
// ErrNameEncoding when the raw bytes are not valid UTF-8.
func (e *Entry) Text() (string, error) {
	if !utf8.ValidString(e.name) {
		return "", ErrNameEncoding
	}
	return e.name, nil
}

// Mode returns the enumerated file mode.
func (e *Entry) Mode() FileMode { return e.mode }

// ID returns the content identifier the entry points at.
func (e *Entry) ID() OID { return e.id }

// Kind derives the pointed-at object kind from the mode.
func (e *Entry) Kind() Kind { return e.mode.Kind() }

// Compare orders e against other: canonical name order first, byte-wise
// id comparison to break ties.
func (e *Entry) Compare(other *Entry) int { return CompareEntries(e, other) }

// Tree resolves the entry into the subtree it points at. Only valid for
// tree entries, and only when the entry came from a store-attached tree.
func (e *Entry) Tree() (*Tree, error) {
	if e.Kind() != KindTree {
		return nil, &TypeError{ID: e.id, Want: KindTree, Got: e.Kind()}
	}
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.LookupTree(e.id)
}

// Blob resolves the entry into the blob it points at.
func (e *Entry) Blob() (*Blob, error) {
	if e.Kind() != KindBlob {
		return nil, &TypeError{ID: e.id, Want: KindBlob, Got: e.Kind()}
	}
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.LookupBlob(e.id)
}

// Object resolves the entry into whatever the store holds under its id:
// a *Tree, a *Blob, or a *Commit for commit-link entries.
func (e *Entry) Object() (Object, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.LookupObject(e.id)
}

// Contains reports whether path resolves inside the subtree this entry
// points at. Only valid for tree entries. Not-found becomes false; every
// other failure propagates.
func (e *Entry) Contains(path string) (bool, error) {
	sub, err := e.Tree()
	if err != nil {
		return false, err
	}
	return sub.Contains(path)
}

// EntryByIndex resolves the subtree and looks up a direct child by
// position, negative indices included.
func (e *Entry) EntryByIndex(i int) (*Entry, error) {
	sub, err := e.Tree()
	if err != nil {
		return nil, err
	}
	return sub.EntryByIndex(i)
}

// EntryByPath resolves the subtree and descends the given path, crossing
// nested subtree boundaries.
func (e *Entry) EntryByPath(path string) (*Entry, error) {
	sub, err := e.Tree()
	if err != nil {
		return nil, err
	}
	return sub.EntryByPath(path)
}
