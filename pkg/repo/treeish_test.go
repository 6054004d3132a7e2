package repo

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/grove-vcs/grove/pkg/object"
)

func TestResolveTreeish_HEAD(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))
	if _, err := r.Commit("initial commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tree, err := r.ResolveTreeish("HEAD")
	if err != nil {
		t.Fatalf("ResolveTreeish(HEAD): %v", err)
	}
	if _, err := tree.EntryByPath("main.go"); err != nil {
		t.Fatalf("EntryByPath(main.go): %v", err)
	}

	// The ^{tree} suffix resolves to the same tree.
	suffixed, err := r.ResolveTreeish("HEAD^{tree}")
	if err != nil {
		t.Fatalf("ResolveTreeish(HEAD^{tree}): %v", err)
	}
	if suffixed.ID() != tree.ID() {
		t.Fatalf("suffixed tree = %s, want %s", suffixed.ID(), tree.ID())
	}
}

func TestResolveTreeish_BranchAndTag(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))
	head, err := r.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := r.CreateTag("v1", head, false); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	fromBranch, err := r.ResolveTreeish("main")
	if err != nil {
		t.Fatalf("ResolveTreeish(main): %v", err)
	}
	fromTag, err := r.ResolveTreeish("v1")
	if err != nil {
		t.Fatalf("ResolveTreeish(v1): %v", err)
	}
	if fromBranch.ID() != fromTag.ID() {
		t.Fatalf("branch tree %s != tag tree %s", fromBranch.ID(), fromTag.ID())
	}
}

func TestResolveTreeish_HexForms(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))
	head, err := r.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	c, err := r.Store.LookupCommit(head)
	if err != nil {
		t.Fatalf("LookupCommit: %v", err)
	}

	// A commit id dereferences to its root tree.
	fromCommitHex, err := r.ResolveTreeish(head.String())
	if err != nil {
		t.Fatalf("ResolveTreeish(commit hex): %v", err)
	}
	if fromCommitHex.ID() != c.TreeID {
		t.Fatalf("tree = %s, want %s", fromCommitHex.ID(), c.TreeID)
	}

	// A tree id resolves to itself.
	fromTreeHex, err := r.ResolveTreeish(c.TreeID.String())
	if err != nil {
		t.Fatalf("ResolveTreeish(tree hex): %v", err)
	}
	if fromTreeHex.ID() != c.TreeID {
		t.Fatalf("tree = %s, want %s", fromTreeHex.ID(), c.TreeID)
	}

	// Abbreviated ids work from four characters up.
	fromAbbrev, err := r.ResolveTreeish(c.TreeID.String()[:8])
	if err != nil {
		t.Fatalf("ResolveTreeish(abbrev): %v", err)
	}
	if fromAbbrev.ID() != c.TreeID {
		t.Fatalf("tree = %s, want %s", fromAbbrev.ID(), c.TreeID)
	}
}

func TestResolveObject_AmbiguousAbbrev(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Mine two blobs whose ids collide on the first four hex characters,
	// then store only those two.
	seen := make(map[string][]byte)
	var first, second []byte
	var prefix string
	for i := 0; ; i++ {
		if i > 200000 {
			t.Fatal("no 4-char prefix collision found")
		}
		data := []byte(fmt.Sprintf("blob-%d\n", i))
		p := object.HashObject(object.KindBlob, data).String()[:minAbbrevLen]
		if prev, ok := seen[p]; ok {
			first, second, prefix = prev, data, p
			break
		}
		seen[p] = data
	}

	if _, err := r.Store.WriteBlob(first); err != nil {
		t.Fatalf("WriteBlob(first): %v", err)
	}
	if _, err := r.Store.WriteBlob(second); err != nil {
		t.Fatalf("WriteBlob(second): %v", err)
	}

	_, err = r.ResolveObject(prefix)
	if err == nil {
		t.Fatal("expected ambiguity error")
	}
	if !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("error = %v, want mention of ambiguous", err)
	}
}

func TestResolveObject_RefNameBeatsHex(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))
	head, err := r.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// "beef" parses as abbreviated hex, but the branch must win.
	if err := r.CreateBranch("beef", head); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	obj, err := r.ResolveObject("beef")
	if err != nil {
		t.Fatalf("ResolveObject(beef): %v", err)
	}
	if obj.ID() != head {
		t.Fatalf("resolved %s, want branch target %s", obj.ID(), head)
	}
	if obj.Kind() != object.KindCommit {
		t.Fatalf("kind = %v, want commit", obj.Kind())
	}
}

func TestResolveTreeish_BlobIsTypeMismatch(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	blobID, err := r.Store.WriteBlob([]byte("just bytes\n"))
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}

	_, err = r.ResolveTreeish(blobID.String())
	if err == nil {
		t.Fatal("expected type mismatch resolving blob as tree-ish")
	}
	if !errors.Is(err, object.ErrTypeMismatch) {
		t.Fatalf("error = %v, want type mismatch", err)
	}
}

func TestResolveCommit(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))
	head, err := r.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	c, err := r.ResolveCommit("HEAD")
	if err != nil {
		t.Fatalf("ResolveCommit(HEAD): %v", err)
	}
	if c.ID() != head {
		t.Fatalf("commit = %s, want %s", c.ID(), head)
	}

	_, err = r.ResolveCommit(c.TreeID.String())
	if !errors.Is(err, object.ErrTypeMismatch) {
		t.Fatalf("resolving tree as commit = %v, want type mismatch", err)
	}
}

func TestResolveObject_Unknown(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	cases := []string{
		"no-such-ref",
		"ab",   // hex but too short to abbreviate
		"dead", // valid prefix, nothing stored
		"0123456789012345678901234567890123456789",
	}
	for _, expr := range cases {
		if _, err := r.ResolveObject(expr); err == nil {
			t.Errorf("ResolveObject(%q) should fail", expr)
		}
	}
}
