package object

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/grove-vcs/grove/pkg/trace"
)

// Store is a loose-object store rooted at a repository state directory.
// Objects live at objects/<2 hex>/<38 hex>, zlib-compressed, wrapped in
// the "<type> <size>\x00" envelope the id is computed over.
type Store struct {
	root string
}

// NewStore opens a store under dir. The objects directory is created
// lazily on first write, so opening never touches the disk.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

func (s *Store) objectPath(id OID) string {
	hex := id.String()
	return filepath.Join(s.root, "objects", hex[:2], hex[2:])
}

// HashObject computes the id content of the given kind would be stored
// under, without writing anything.
func HashObject(kind Kind, data []byte) OID {
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", kind, len(data))
	h.Write(data)
	var id OID
	copy(id[:], h.Sum(nil))
	return id
}

// Has reports whether the store holds an object with the given id.
func (s *Store) Has(id OID) bool {
	_, err := os.Stat(s.objectPath(id))
	return err == nil
}

// writeObject stores envelope-wrapped, compressed content and returns
// its id. An object that already exists is left untouched; the write
// goes through a temp file and a rename so readers never observe a
// partial object.
func (s *Store) writeObject(kind Kind, data []byte) (OID, error) {
	id := HashObject(kind, data)
	path := s.objectPath(id)

	if _, err := os.Stat(path); err == nil {
		return id, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ZeroOID, fmt.Errorf("write object: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "obj-*")
	if err != nil {
		return ZeroOID, fmt.Errorf("write object: create temp: %w", err)
	}
	tmpName := tmp.Name()

	zw := zlib.NewWriter(tmp)
	_, werr := fmt.Fprintf(zw, "%s %d\x00", kind, len(data))
	if werr == nil {
		_, werr = zw.Write(data)
	}
	if cerr := zw.Close(); werr == nil {
		werr = cerr
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpName)
		return ZeroOID, fmt.Errorf("write object %s: %w", id.Short(), werr)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return ZeroOID, fmt.Errorf("write object %s: rename: %w", id.Short(), err)
	}

	trace.Event("object.write").Stringer("id", id).Stringer("kind", kind).Int("size", len(data)).Send()
	return id, nil
}

// readObject loads and inflates an object, validating the envelope
// against the actual content.
func (s *Store) readObject(id OID) (Kind, []byte, error) {
	f, err := os.Open(s.objectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil, fmt.Errorf("object %s: %w", id.Short(), ErrNotFound)
		}
		return 0, nil, fmt.Errorf("read object %s: %w", id.Short(), err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return 0, nil, fmt.Errorf("read object %s: inflate: %w", id.Short(), err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return 0, nil, fmt.Errorf("read object %s: inflate: %w", id.Short(), err)
	}

	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return 0, nil, fmt.Errorf("read object %s: missing envelope terminator", id.Short())
	}
	header := string(raw[:nul])
	content := raw[nul+1:]

	tag, sizeText, ok := strings.Cut(header, " ")
	if !ok {
		return 0, nil, fmt.Errorf("read object %s: malformed envelope %q", id.Short(), header)
	}
	kind, err := ParseKind(tag)
	if err != nil {
		return 0, nil, fmt.Errorf("read object %s: %w", id.Short(), err)
	}
	size, err := strconv.Atoi(sizeText)
	if err != nil || size != len(content) {
		return 0, nil, fmt.Errorf("read object %s: envelope size %q does not match %d content bytes",
			id.Short(), sizeText, len(content))
	}

	trace.Event("object.read").Stringer("id", id).Stringer("kind", kind).Int("size", size).Send()
	return kind, content, nil
}

// LookupTree loads the tree stored under id. The returned tree keeps
// the store attached so entry resolution and deep path lookups work.
func (s *Store) LookupTree(id OID) (*Tree, error) {
	kind, data, err := s.readObject(id)
	if err != nil {
		return nil, err
	}
	if kind != KindTree {
		return nil, &TypeError{ID: id, Want: KindTree, Got: kind}
	}
	t, err := parseTree(id, data)
	if err != nil {
		return nil, err
	}
	t.store = s
	return t, nil
}

// LookupBlob loads the blob stored under id.
func (s *Store) LookupBlob(id OID) (*Blob, error) {
	kind, data, err := s.readObject(id)
	if err != nil {
		return nil, err
	}
	if kind != KindBlob {
		return nil, &TypeError{ID: id, Want: KindBlob, Got: kind}
	}
	return &Blob{id: id, data: data}, nil
}

// LookupCommit loads the commit stored under id.
func (s *Store) LookupCommit(id OID) (*Commit, error) {
	kind, data, err := s.readObject(id)
	if err != nil {
		return nil, err
	}
	if kind != KindCommit {
		return nil, &TypeError{ID: id, Want: KindCommit, Got: kind}
	}
	return parseCommit(id, data)
}

// LookupObject loads whatever object id names, dispatching on the
// stored kind.
func (s *Store) LookupObject(id OID) (Object, error) {
	kind, data, err := s.readObject(id)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindTree:
		t, err := parseTree(id, data)
		if err != nil {
			return nil, err
		}
		t.store = s
		return t, nil
	case KindBlob:
		return &Blob{id: id, data: data}, nil
	case KindCommit:
		return parseCommit(id, data)
	}
	return nil, fmt.Errorf("object %s: unhandled kind %s", id.Short(), kind)
}

// Stat reports the kind and content size of the object stored under id
// without constructing it.
func (s *Store) Stat(id OID) (Kind, int64, error) {
	kind, data, err := s.readObject(id)
	if err != nil {
		return 0, 0, err
	}
	return kind, int64(len(data)), nil
}

// ResolvePath descends path from t, loading intermediate subtrees as
// needed, and returns the final entry. A missing segment and a non-tree
// intermediate both report not-found keyed on the full path; other
// store faults pass through untouched.
func (s *Store) ResolvePath(t *Tree, path string) (*Entry, error) {
	segs, wantTree, err := splitTreePath(path)
	if err != nil {
		return nil, err
	}

	cur := t
	for len(segs) > 1 {
		e, ok := cur.findEntry(segs[0])
		if !ok || e.Kind() != KindTree {
			return nil, &PathError{Path: path, Err: ErrNotFound}
		}
		sub, err := s.LookupTree(e.id)
		if err != nil {
			return nil, err
		}
		cur = sub
		segs = segs[1:]
	}

	e, ok := cur.findEntry(segs[0])
	if !ok || (wantTree && e.Kind() != KindTree) {
		return nil, &PathError{Path: path, Err: ErrNotFound}
	}
	e.store = s
	trace.Event("store.resolve").Str("path", path).Stringer("id", e.id).Send()
	return e, nil
}

// WriteBlob stores raw file content.
func (s *Store) WriteBlob(data []byte) (OID, error) {
	return s.writeObject(KindBlob, data)
}

// WriteTree sorts entries into canonical order, enforces the name
// uniqueness and mode invariants, and stores the encoded tree.
func (s *Store) WriteTree(entries []Entry) (OID, error) {
	es := make([]Entry, len(entries))
	copy(es, entries)
	sort.Slice(es, func(i, j int) bool { return CompareEntries(&es[i], &es[j]) < 0 })

	for i := range es {
		e := &es[i]
		if e.name == "" || strings.ContainsAny(e.name, "/\x00") {
			return ZeroOID, fmt.Errorf("write tree: invalid entry name %q", e.name)
		}
		if !e.mode.Valid() {
			return ZeroOID, fmt.Errorf("write tree: entry %q has invalid mode %s", e.name, e.mode)
		}
		if i > 0 {
			prev := &es[i-1]
			if PathCompare(prev.name, prev.mode.IsTree(), e.name, e.mode.IsTree()) == 0 {
				return ZeroOID, fmt.Errorf("write tree: duplicate entry name %q", e.name)
			}
		}
	}
	return s.writeObject(KindTree, encodeTree(es))
}

// WriteCommit stores an encoded commit and returns its id.
func (s *Store) WriteCommit(c *Commit) (OID, error) {
	if c.TreeID.IsZero() {
		return ZeroOID, fmt.Errorf("write commit: missing tree id")
	}
	return s.writeObject(KindCommit, encodeCommit(c))
}
