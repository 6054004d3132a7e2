package main

import (
	"strings"
	"testing"

	"github.com/grove-vcs/grove/pkg/object"
)

func TestWriteTreeCmd_PrintsRootID(t *testing.T) {
	r, dir := initCLIRepo(t)

	writeRepoFile(t, dir, "a.txt", "one\n")
	writeRepoFile(t, dir, "pkg/b.txt", "two\n")
	if err := r.Add([]string{"."}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	output := runCommand(t, dir, newWriteTreeCmd)
	id, err := object.ParseOID(strings.TrimSpace(output))
	if err != nil {
		t.Fatalf("write-tree output %q is not an id: %v", output, err)
	}

	tree, err := r.Store.LookupTree(id)
	if err != nil {
		t.Fatalf("LookupTree: %v", err)
	}
	if ok, err := tree.Contains("pkg/b.txt"); err != nil || !ok {
		t.Errorf("written tree missing pkg/b.txt (ok=%v, err=%v)", ok, err)
	}
}

func TestWriteTreeCmd_EmptyIndex(t *testing.T) {
	_, dir := initCLIRepo(t)

	output := runCommand(t, dir, newWriteTreeCmd)
	if strings.TrimSpace(output) != object.EmptyTreeID.String() {
		t.Errorf("write-tree on empty index = %q, want %s", output, object.EmptyTreeID)
	}
}
