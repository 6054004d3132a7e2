package object

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zlib"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func mustWriteBlob(t *testing.T, s *Store, content string) OID {
	t.Helper()
	id, err := s.WriteBlob([]byte(content))
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	return id
}

func mustWriteTree(t *testing.T, s *Store, entries ...Entry) OID {
	t.Helper()
	id, err := s.WriteTree(entries)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	return id
}

func mustLookupTree(t *testing.T, s *Store, id OID) *Tree {
	t.Helper()
	tree, err := s.LookupTree(id)
	if err != nil {
		t.Fatalf("LookupTree(%s): %v", id.Short(), err)
	}
	return tree
}

// nestedFixture writes this layout and returns the root tree:
//
//	a.txt
//	b/
//	  c.txt
//	  d/
//	    e.txt
func nestedFixture(t *testing.T, s *Store) *Tree {
	t.Helper()
	e := mustWriteBlob(t, s, "e\n")
	d := mustWriteTree(t, s, NewEntry("e.txt", ModeBlob, e))
	c := mustWriteBlob(t, s, "c\n")
	b := mustWriteTree(t, s,
		NewEntry("c.txt", ModeBlob, c),
		NewEntry("d", ModeTree, d),
	)
	a := mustWriteBlob(t, s, "a\n")
	root := mustWriteTree(t, s,
		NewEntry("a.txt", ModeBlob, a),
		NewEntry("b", ModeTree, b),
	)
	return mustLookupTree(t, s, root)
}

func TestHashObjectKnownDigests(t *testing.T) {
	// Pinned against the reference implementation of the format:
	// the empty tree and the blob "hello" hash the same everywhere.
	if got := HashObject(KindTree, nil); got != EmptyTreeID {
		t.Errorf("empty tree id = %s, want %s", got, EmptyTreeID)
	}
	want := MustParseOID("b6fc4c620b67d95f953a5c1c1230aaab5db5a1b0")
	if got := HashObject(KindBlob, []byte("hello")); got != want {
		t.Errorf("blob id = %s, want %s", got, want)
	}
}

func TestBlobRoundTrip(t *testing.T) {
	s := tempStore(t)
	id := mustWriteBlob(t, s, "hello world\n")

	if !s.Has(id) {
		t.Fatal("Has = false after write")
	}

	blob, err := s.LookupBlob(id)
	if err != nil {
		t.Fatalf("LookupBlob: %v", err)
	}
	if string(blob.Data()) != "hello world\n" {
		t.Errorf("Data = %q, want %q", blob.Data(), "hello world\n")
	}
	if blob.Size() != 12 {
		t.Errorf("Size = %d, want 12", blob.Size())
	}
	if blob.ID() != id {
		t.Errorf("ID = %s, want %s", blob.ID(), id)
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	s := tempStore(t)
	id1 := mustWriteBlob(t, s, "same content")
	id2 := mustWriteBlob(t, s, "same content")
	if id1 != id2 {
		t.Fatalf("same content produced different ids: %s vs %s", id1, id2)
	}
}

func TestLookupMissingObject(t *testing.T) {
	s := tempStore(t)
	_, err := s.LookupBlob(testOID(0xaa))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("LookupBlob(missing) = %v, want ErrNotFound", err)
	}
	if s.Has(testOID(0xaa)) {
		t.Error("Has(missing) = true")
	}
}

func TestLookupWrongKind(t *testing.T) {
	s := tempStore(t)
	blobID := mustWriteBlob(t, s, "not a tree")

	_, err := s.LookupTree(blobID)
	var te *TypeError
	if !errors.As(err, &te) {
		t.Fatalf("LookupTree(blob) = %v, want *TypeError", err)
	}
	if te.Want != KindTree || te.Got != KindBlob {
		t.Errorf("TypeError = want %v got %v", te.Want, te.Got)
	}
	if !errors.Is(err, ErrTypeMismatch) {
		t.Error("TypeError does not match ErrTypeMismatch")
	}

	treeID := mustWriteTree(t, s, NewEntry("f", ModeBlob, blobID))
	if _, err := s.LookupBlob(treeID); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("LookupBlob(tree) = %v, want type mismatch", err)
	}
	if _, err := s.LookupCommit(treeID); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("LookupCommit(tree) = %v, want type mismatch", err)
	}
}

func TestWriteTreeCanonicalOrderRoundTrip(t *testing.T) {
	s := tempStore(t)
	blob := mustWriteBlob(t, s, "x")
	sub := mustWriteTree(t, s, NewEntry("inner.txt", ModeBlob, blob))

	// Deliberately unsorted input, including the file/tree name split.
	id := mustWriteTree(t, s,
		NewEntry("lib.c", ModeBlob, blob),
		NewEntry("lib", ModeTree, sub),
		NewEntry("lib", ModeBlob, blob),
	)
	tree := mustLookupTree(t, s, id)

	var names []string
	var kinds []Kind
	for it := tree.Iter(); ; {
		e, ok := it.Next()
		if !ok {
			break
		}
		names = append(names, e.Name())
		kinds = append(kinds, e.Kind())
	}
	wantNames := []string{"lib", "lib.c", "lib"}
	wantKinds := []Kind{KindBlob, KindBlob, KindTree}
	for i := range wantNames {
		if names[i] != wantNames[i] || kinds[i] != wantKinds[i] {
			t.Fatalf("entry %d = %q/%v, want %q/%v", i, names[i], kinds[i], wantNames[i], wantKinds[i])
		}
	}
}

func TestWriteTreeEmptyMatchesEmptyTreeID(t *testing.T) {
	s := tempStore(t)
	id := mustWriteTree(t, s)
	if id != EmptyTreeID {
		t.Fatalf("empty tree id = %s, want %s", id, EmptyTreeID)
	}
	tree := mustLookupTree(t, s, id)
	if tree.Len() != 0 {
		t.Errorf("Len = %d, want 0", tree.Len())
	}
}

func TestWriteTreeRejectsBadEntries(t *testing.T) {
	s := tempStore(t)
	blob := mustWriteBlob(t, s, "x")

	if _, err := s.WriteTree([]Entry{NewEntry("", ModeBlob, blob)}); err == nil {
		t.Error("WriteTree accepted an empty name")
	}
	if _, err := s.WriteTree([]Entry{NewEntry("a/b", ModeBlob, blob)}); err == nil {
		t.Error("WriteTree accepted a separator in a name")
	}
	if _, err := s.WriteTree([]Entry{NewEntry("a", FileMode(0o123456), blob)}); err == nil {
		t.Error("WriteTree accepted an arbitrary mode")
	}
	if _, err := s.WriteTree([]Entry{
		NewEntry("dup", ModeBlob, blob),
		NewEntry("dup", ModeExec, blob),
	}); err == nil {
		t.Error("WriteTree accepted duplicate names")
	}
}

func TestLookupTreeRejectsCorruptPayloads(t *testing.T) {
	s := tempStore(t)

	// Entries in the wrong canonical order.
	outOfOrder := encodeTree([]Entry{
		NewEntry("b.txt", ModeBlob, testOID(1)),
		NewEntry("a.txt", ModeBlob, testOID(2)),
	})
	id, err := s.writeObject(KindTree, outOfOrder)
	if err != nil {
		t.Fatalf("writeObject: %v", err)
	}
	if _, err := s.LookupTree(id); err == nil || !strings.Contains(err.Error(), "canonical order") {
		t.Errorf("out-of-order payload error = %v", err)
	}

	// Duplicate names.
	dup := encodeTree([]Entry{
		NewEntry("same", ModeBlob, testOID(1)),
		NewEntry("same", ModeBlob, testOID(2)),
	})
	id, err = s.writeObject(KindTree, dup)
	if err != nil {
		t.Fatalf("writeObject: %v", err)
	}
	if _, err := s.LookupTree(id); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("duplicate payload error = %v", err)
	}

	// Truncated id bytes.
	trunc := encodeTree([]Entry{NewEntry("a", ModeBlob, testOID(1))})
	trunc = trunc[:len(trunc)-4]
	id, err = s.writeObject(KindTree, trunc)
	if err != nil {
		t.Fatalf("writeObject: %v", err)
	}
	if _, err := s.LookupTree(id); err == nil || !strings.Contains(err.Error(), "truncated") {
		t.Errorf("truncated payload error = %v", err)
	}
}

func TestResolvePathDeep(t *testing.T) {
	s := tempStore(t)
	root := nestedFixture(t, s)

	e, err := root.EntryByPath("b/d/e.txt")
	if err != nil {
		t.Fatalf("EntryByPath(b/d/e.txt): %v", err)
	}
	if e.Name() != "e.txt" || e.Kind() != KindBlob {
		t.Errorf("entry = %q/%v, want e.txt/blob", e.Name(), e.Kind())
	}

	blob, err := e.Blob()
	if err != nil {
		t.Fatalf("Blob: %v", err)
	}
	if string(blob.Data()) != "e\n" {
		t.Errorf("content = %q, want %q", blob.Data(), "e\n")
	}
}

func TestResolvePathEqualsManualDescent(t *testing.T) {
	s := tempStore(t)
	root := nestedFixture(t, s)

	direct, err := root.EntryByPath("b/d/e.txt")
	if err != nil {
		t.Fatalf("EntryByPath: %v", err)
	}

	// Descend segment by segment through index lookups and subtree
	// resolution; the result must be the same entry.
	cur := root
	var manual *Entry
	for _, seg := range []string{"b", "d", "e.txt"} {
		var found *Entry
		for i := 0; i < cur.Len(); i++ {
			e, err := cur.EntryByIndex(i)
			if err != nil {
				t.Fatalf("EntryByIndex(%d): %v", i, err)
			}
			if e.Name() == seg {
				found = e
				break
			}
		}
		if found == nil {
			t.Fatalf("segment %q not found during manual descent", seg)
		}
		manual = found
		if found.Kind() == KindTree {
			cur, err = found.Tree()
			if err != nil {
				t.Fatalf("Tree(%q): %v", seg, err)
			}
		}
	}

	if manual.Name() != direct.Name() || manual.ID() != direct.ID() || manual.Mode() != direct.Mode() {
		t.Errorf("manual descent = %q/%s, direct lookup = %q/%s",
			manual.Name(), manual.ID(), direct.Name(), direct.ID())
	}
}

func TestResolvePathNotFoundCases(t *testing.T) {
	s := tempStore(t)
	root := nestedFixture(t, s)

	cases := []string{
		"b/missing",      // absent leaf
		"missing/x",      // absent first segment
		"a.txt/x",        // non-tree intermediate
		"b/c.txt/deeper", // non-tree intermediate below a subtree
		"b/d/e.txt/",     // trailing slash on a blob
	}
	for _, p := range cases {
		_, err := root.EntryByPath(p)
		var pe *PathError
		if !errors.As(err, &pe) {
			t.Fatalf("EntryByPath(%q) = %v, want *PathError", p, err)
		}
		if pe.Path != p {
			t.Errorf("PathError.Path = %q, want the original %q", pe.Path, p)
		}
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("EntryByPath(%q) does not match ErrNotFound", p)
		}

		ok, cerr := root.Contains(p)
		if cerr != nil {
			t.Errorf("Contains(%q) propagated %v, want false", p, cerr)
		}
		if ok {
			t.Errorf("Contains(%q) = true", p)
		}
	}
}

func TestContainsAgreesWithLookupOnStoreTrees(t *testing.T) {
	s := tempStore(t)
	root := nestedFixture(t, s)

	for _, p := range []string{"a.txt", "b", "b/", "b/c.txt", "b/d", "b/d/", "b/d/e.txt"} {
		ok, err := root.Contains(p)
		if err != nil {
			t.Fatalf("Contains(%q): %v", p, err)
		}
		if !ok {
			t.Errorf("Contains(%q) = false, want true", p)
		}
	}
}

func TestEntrySugarDelegatesToSubtree(t *testing.T) {
	s := tempStore(t)
	root := nestedFixture(t, s)

	b, err := root.EntryByPath("b")
	if err != nil {
		t.Fatalf("EntryByPath(b): %v", err)
	}

	ok, err := b.Contains("d/e.txt")
	if err != nil {
		t.Fatalf("entry Contains: %v", err)
	}
	if !ok {
		t.Error("entry Contains(d/e.txt) = false")
	}

	first, err := b.EntryByIndex(0)
	if err != nil {
		t.Fatalf("entry EntryByIndex: %v", err)
	}
	if first.Name() != "c.txt" {
		t.Errorf("entry[0] = %q, want c.txt", first.Name())
	}
	last, err := b.EntryByIndex(-1)
	if err != nil {
		t.Fatalf("entry EntryByIndex(-1): %v", err)
	}
	if last.Name() != "d" {
		t.Errorf("entry[-1] = %q, want d", last.Name())
	}

	deep, err := b.EntryByPath("d/e.txt")
	if err != nil {
		t.Fatalf("entry EntryByPath: %v", err)
	}
	if deep.Name() != "e.txt" {
		t.Errorf("entry path lookup = %q, want e.txt", deep.Name())
	}

	// The sugar is only for tree entries.
	a, err := root.EntryByPath("a.txt")
	if err != nil {
		t.Fatalf("EntryByPath(a.txt): %v", err)
	}
	if _, err := a.EntryByIndex(0); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("indexing a blob entry = %v, want type mismatch", err)
	}
	if _, err := a.Contains("x"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Contains on a blob entry = %v, want type mismatch", err)
	}
}

func TestEntryObjectDispatch(t *testing.T) {
	s := tempStore(t)
	root := nestedFixture(t, s)

	b, err := root.EntryByPath("b")
	if err != nil {
		t.Fatalf("EntryByPath(b): %v", err)
	}
	obj, err := b.Object()
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if _, isTree := obj.(*Tree); !isTree {
		t.Errorf("Object() for tree entry = %T, want *Tree", obj)
	}

	a, err := root.EntryByPath("a.txt")
	if err != nil {
		t.Fatalf("EntryByPath(a.txt): %v", err)
	}
	obj, err = a.Object()
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if _, isBlob := obj.(*Blob); !isBlob {
		t.Errorf("Object() for blob entry = %T, want *Blob", obj)
	}
}

func TestScenarioTwoEntryTree(t *testing.T) {
	s := tempStore(t)
	a := mustWriteBlob(t, s, "alpha")
	bsub := mustWriteTree(t, s, NewEntry("inner", ModeBlob, a))
	id := mustWriteTree(t, s,
		NewEntry("a.txt", ModeBlob, a),
		NewEntry("b", ModeTree, bsub),
	)
	tree := mustLookupTree(t, s, id)

	if tree.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tree.Len())
	}
	e0, err := tree.EntryByIndex(0)
	if err != nil || e0.Name() != "a.txt" {
		t.Errorf("EntryByIndex(0) = %v, %v; want a.txt", e0, err)
	}
	eLast, err := tree.EntryByIndex(-1)
	if err != nil || eLast.Name() != "b" {
		t.Errorf("EntryByIndex(-1) = %v, %v; want b", eLast, err)
	}

	_, err = tree.EntryByPath("b/missing")
	var pe *PathError
	if !errors.As(err, &pe) || pe.Path != "b/missing" {
		t.Errorf("EntryByPath(b/missing) = %v, want *PathError keyed b/missing", err)
	}
}

func TestTreeEntriesKeepRawNameBytes(t *testing.T) {
	s := tempStore(t)
	blob := mustWriteBlob(t, s, "x")
	raw := "caf\xe9.txt"
	id := mustWriteTree(t, s, NewEntry(raw, ModeBlob, blob))

	tree := mustLookupTree(t, s, id)
	e, err := tree.EntryByIndex(0)
	if err != nil {
		t.Fatalf("EntryByIndex: %v", err)
	}
	if e.Name() != raw {
		t.Errorf("round-tripped name = %q, want %q", e.Name(), raw)
	}
	if _, err := e.Text(); !errors.Is(err, ErrNameEncoding) {
		t.Errorf("Text() = %v, want ErrNameEncoding", err)
	}
}

func TestCommitRoundTrip(t *testing.T) {
	s := tempStore(t)
	root := nestedFixture(t, s)

	when := time.Unix(1700000000, 0).In(time.FixedZone("+0530", 5*3600+30*60))
	c := &Commit{
		TreeID: root.ID(),
		Author: Signature{Name: "Ada Lovelace", Email: "ada@example.com", When: when},
		Committer: Signature{
			Name: "Ada Lovelace", Email: "ada@example.com", When: when,
		},
		Message: "initial import\n\nlonger body here\n",
	}
	id, err := s.WriteCommit(c)
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}

	got, err := s.LookupCommit(id)
	if err != nil {
		t.Fatalf("LookupCommit: %v", err)
	}
	if got.TreeID != root.ID() {
		t.Errorf("TreeID = %s, want %s", got.TreeID, root.ID())
	}
	if got.Author.Name != "Ada Lovelace" || got.Author.Email != "ada@example.com" {
		t.Errorf("author = %q <%s>", got.Author.Name, got.Author.Email)
	}
	if got.Author.When.Unix() != 1700000000 {
		t.Errorf("author time = %d, want 1700000000", got.Author.When.Unix())
	}
	if _, off := got.Author.When.Zone(); off != 5*3600+30*60 {
		t.Errorf("author zone offset = %d, want %d", off, 5*3600+30*60)
	}
	if got.Message != c.Message {
		t.Errorf("message = %q, want %q", got.Message, c.Message)
	}
	if len(got.Parents) != 0 {
		t.Errorf("parents = %v, want none", got.Parents)
	}

	// Second generation: a commit with a parent.
	child := &Commit{
		TreeID:    root.ID(),
		Parents:   []OID{id},
		Author:    c.Author,
		Committer: c.Committer,
		Message:   "second\n",
	}
	childID, err := s.WriteCommit(child)
	if err != nil {
		t.Fatalf("WriteCommit(child): %v", err)
	}
	gotChild, err := s.LookupCommit(childID)
	if err != nil {
		t.Fatalf("LookupCommit(child): %v", err)
	}
	if len(gotChild.Parents) != 1 || gotChild.Parents[0] != id {
		t.Errorf("child parents = %v, want [%s]", gotChild.Parents, id)
	}
}

func TestLookupObjectKinds(t *testing.T) {
	s := tempStore(t)
	root := nestedFixture(t, s)

	obj, err := s.LookupObject(root.ID())
	if err != nil {
		t.Fatalf("LookupObject(tree): %v", err)
	}
	tree, ok := obj.(*Tree)
	if !ok {
		t.Fatalf("LookupObject(tree) = %T", obj)
	}
	// The dispatched tree keeps the store attached.
	if _, err := tree.EntryByPath("b/c.txt"); err != nil {
		t.Errorf("deep lookup through LookupObject tree: %v", err)
	}
}

func TestReadRejectsCorruptEnvelope(t *testing.T) {
	s := tempStore(t)
	id := mustWriteBlob(t, s, "victim")

	// Rewrite the object with an envelope size that lies.
	path := s.objectPath(id)
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte("blob 999\x00victim")); err != nil {
		t.Fatalf("deflate: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := s.LookupBlob(id); err == nil || !strings.Contains(err.Error(), "envelope size") {
		t.Errorf("corrupt envelope error = %v", err)
	}
}
