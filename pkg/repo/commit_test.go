package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grove-vcs/grove/pkg/object"
)

// helper: initRepoWithFile creates a temp repo, writes a file, and stages it.
func initRepoWithFile(t *testing.T, name string, content []byte) *Repo {
	t.Helper()
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	writeWorkFile(t, r, name, content)
	if err := r.Add([]string{name}); err != nil {
		t.Fatalf("Add(%s): %v", name, err)
	}
	return r
}

// helper: writeWorkFile writes a file under the repo root, creating parents.
func writeWorkFile(t *testing.T, r *Repo, name string, content []byte) {
	t.Helper()
	path := filepath.Join(r.RootDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestCommit_CreatesObject(t *testing.T) {
	// Point the user config at a missing file so the default identity applies.
	t.Setenv("GROVE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))

	id, err := r.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if id.IsZero() {
		t.Fatal("Commit returned zero id")
	}

	c, err := r.Store.LookupCommit(id)
	if err != nil {
		t.Fatalf("LookupCommit(%s): %v", id, err)
	}
	if c.Message != "initial commit" {
		t.Errorf("Message = %q, want %q", c.Message, "initial commit")
	}
	if c.Author.Name != "grove" || c.Author.Email != "grove@localhost" {
		t.Errorf("default author = %q <%q>, want grove <grove@localhost>", c.Author.Name, c.Author.Email)
	}
	if c.TreeID.IsZero() {
		t.Error("TreeID is zero")
	}
	if c.Author.When.IsZero() {
		t.Error("author time is zero")
	}
	if len(c.Parents) != 0 {
		t.Errorf("first commit should have no parents, got %d", len(c.Parents))
	}
}

func TestCommit_UpdatesHEAD(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))

	id, err := r.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	headID, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef(HEAD): %v", err)
	}
	if headID != id {
		t.Errorf("HEAD = %s, want %s", headID, id)
	}
}

func TestCommit_SecondHasParent(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))

	h1, err := r.Commit("first commit")
	if err != nil {
		t.Fatalf("first Commit: %v", err)
	}

	writeWorkFile(t, r, "main.go", []byte("package main\n\nfunc main() { println(\"v2\") }\n"))
	if err := r.Add([]string{"main.go"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	h2, err := r.Commit("second commit")
	if err != nil {
		t.Fatalf("second Commit: %v", err)
	}

	c2, err := r.Store.LookupCommit(h2)
	if err != nil {
		t.Fatalf("LookupCommit(%s): %v", h2, err)
	}
	if len(c2.Parents) != 1 {
		t.Fatalf("second commit parents = %d, want 1", len(c2.Parents))
	}
	if c2.Parents[0] != h1 {
		t.Errorf("second commit parent = %s, want %s", c2.Parents[0], h1)
	}
}

func TestCommit_NothingStaged_Error(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	_, err = r.Commit("empty")
	if err == nil {
		t.Fatal("expected error committing with empty index")
	}
	if !strings.Contains(err.Error(), "nothing staged") {
		t.Fatalf("error = %v, want mention of nothing staged", err)
	}
}

func TestCommit_NoChanges_Error(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))

	if _, err := r.Commit("initial commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// Re-staging the same content leaves the tree identical to HEAD.
	if err := r.Add([]string{"main.go"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err := r.Commit("no changes")
	if err == nil {
		t.Fatal("expected error committing unchanged index")
	}
	if !strings.Contains(err.Error(), "nothing to commit") {
		t.Fatalf("error = %v, want mention of nothing to commit", err)
	}
}

func TestCommit_UsesConfiguredAuthor(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))

	if err := r.ConfigSet("user.name", "Ada Lovelace"); err != nil {
		t.Fatalf("ConfigSet(user.name): %v", err)
	}
	if err := r.ConfigSet("user.email", "ada@example.com"); err != nil {
		t.Fatalf("ConfigSet(user.email): %v", err)
	}

	id, err := r.Commit("configured author")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	c, err := r.Store.LookupCommit(id)
	if err != nil {
		t.Fatalf("LookupCommit: %v", err)
	}
	if c.Author.Name != "Ada Lovelace" {
		t.Errorf("Author.Name = %q, want %q", c.Author.Name, "Ada Lovelace")
	}
	if c.Author.Email != "ada@example.com" {
		t.Errorf("Author.Email = %q, want %q", c.Author.Email, "ada@example.com")
	}
	if c.Committer.Name != c.Author.Name || c.Committer.Email != c.Author.Email {
		t.Errorf("committer = %q <%q>, want same identity as author", c.Committer.Name, c.Committer.Email)
	}
}

func TestCommit_WritesReflog(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))

	id, err := r.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	entries, err := r.ReadReflog("main", 1)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("reflog entries = %d, want 1", len(entries))
	}
	if entries[0].NewID != id {
		t.Errorf("reflog new id = %s, want %s", entries[0].NewID, id)
	}
}

func TestLog_ReverseChronological(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))

	ids := make([]object.OID, 3)
	messages := []string{"first", "second", "third"}

	for i, msg := range messages {
		if i > 0 {
			content := []byte("package main\n\nvar v = \"" + msg + "\"\n")
			writeWorkFile(t, r, "main.go", content)
			if err := r.Add([]string{"main.go"}); err != nil {
				t.Fatalf("Add: %v", err)
			}
		}
		id, err := r.Commit(msg)
		if err != nil {
			t.Fatalf("Commit(%q): %v", msg, err)
		}
		ids[i] = id
	}

	commits, err := r.Log(ids[2], 10)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("Log returned %d commits, want 3", len(commits))
	}
	if commits[0].Message != "third" {
		t.Errorf("commits[0].Message = %q, want %q", commits[0].Message, "third")
	}
	if commits[1].Message != "second" {
		t.Errorf("commits[1].Message = %q, want %q", commits[1].Message, "second")
	}
	if commits[2].Message != "first" {
		t.Errorf("commits[2].Message = %q, want %q", commits[2].Message, "first")
	}

	limited, err := r.Log(ids[2], 2)
	if err != nil {
		t.Fatalf("Log(limit=2): %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("Log(limit=2) returned %d commits, want 2", len(limited))
	}
}
