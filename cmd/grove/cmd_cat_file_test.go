package main

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/grove-vcs/grove/pkg/object"
)

func TestCatFileCmd_BlobTypeSizeContent(t *testing.T) {
	r, dir := initCLIRepo(t)

	content := "blob payload\n"
	writeRepoFile(t, dir, "a.txt", content)
	stageAndCommit(t, r, "a.txt", "add a.txt")

	id := object.HashObject(object.KindBlob, []byte(content)).String()

	if got := strings.TrimSpace(runCommand(t, dir, newCatFileCmd, "-t", id)); got != "blob" {
		t.Errorf("cat-file -t = %q, want blob", got)
	}

	size := strings.TrimSpace(runCommand(t, dir, newCatFileCmd, "-s", id))
	if n, err := strconv.Atoi(size); err != nil || n != len(content) {
		t.Errorf("cat-file -s = %q, want %d", size, len(content))
	}

	if got := runCommand(t, dir, newCatFileCmd, "-p", id); got != content {
		t.Errorf("cat-file -p = %q, want %q", got, content)
	}
}

func TestCatFileCmd_PrettyTree(t *testing.T) {
	r, dir := initCLIRepo(t)

	content := "one\n"
	writeRepoFile(t, dir, "a.txt", content)
	writeRepoFile(t, dir, "sub/b.txt", "two\n")
	stageAndCommit(t, r, "a.txt", "add files")
	if err := r.Add([]string{"sub/b.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := r.Commit("add sub"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	output := runCommand(t, dir, newCatFileCmd, "-p", "HEAD^{tree}")

	blobID := object.HashObject(object.KindBlob, []byte(content))
	wantBlob := fmt.Sprintf("100644 blob %s\ta.txt", blobID)
	if !strings.Contains(output, wantBlob) {
		t.Errorf("tree listing missing %q:\n%s", wantBlob, output)
	}
	if !strings.Contains(output, "040000 tree ") || !strings.Contains(output, "\tsub") {
		t.Errorf("tree listing missing subtree entry:\n%s", output)
	}
}

func TestCatFileCmd_PrettyCommit(t *testing.T) {
	r, dir := initCLIRepo(t)

	writeRepoFile(t, dir, "a.txt", "one\n")
	stageAndCommit(t, r, "a.txt", "first")
	writeRepoFile(t, dir, "a.txt", "two\n")
	stageAndCommit(t, r, "a.txt", "second")

	output := runCommand(t, dir, newCatFileCmd, "-p", "HEAD")

	tree, err := r.ResolveTreeish("HEAD")
	if err != nil {
		t.Fatalf("ResolveTreeish: %v", err)
	}
	if !strings.Contains(output, "tree "+tree.ID().String()) {
		t.Errorf("commit missing tree line:\n%s", output)
	}
	if !strings.Contains(output, "parent ") {
		t.Errorf("commit missing parent line:\n%s", output)
	}
	if !strings.Contains(output, "author grove <grove@localhost>") {
		t.Errorf("commit missing author line:\n%s", output)
	}
	if !strings.HasSuffix(output, "\nsecond\n") {
		t.Errorf("commit message not last:\n%s", output)
	}
}

func TestCatFileCmd_FlagValidation(t *testing.T) {
	r, dir := initCLIRepo(t)

	writeRepoFile(t, dir, "a.txt", "one\n")
	stageAndCommit(t, r, "a.txt", "first")

	err := runCommandErr(t, dir, newCatFileCmd, "-t", "-s", "HEAD")
	if !strings.Contains(err.Error(), "exactly one of -t, -s, -p") {
		t.Fatalf("unexpected error: %v", err)
	}

	err = runCommandErr(t, dir, newCatFileCmd, "HEAD")
	if !strings.Contains(err.Error(), "exactly one of -t, -s, -p") {
		t.Fatalf("unexpected error: %v", err)
	}
}
