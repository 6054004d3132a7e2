package repo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/grove-vcs/grove/pkg/object"
	"github.com/grove-vcs/grove/pkg/trace"
)

// Commit creates a new commit from the current index.
//
//  1. Build tree objects from the index
//  2. Resolve HEAD to get the parent commit id (if any)
//  3. Write a commit with the tree, parent, configured author, and message
//  4. Advance the current branch (or detached HEAD) to the new commit
func (r *Repo) Commit(message string) (object.OID, error) {
	ix, err := r.loadIndex()
	if err != nil {
		return object.ZeroOID, fmt.Errorf("commit: %w", err)
	}
	if ix.Len() == 0 {
		return object.ZeroOID, fmt.Errorf("commit: nothing staged")
	}

	treeID, err := r.writeTreeDir(ix.Entries(), "")
	if err != nil {
		return object.ZeroOID, fmt.Errorf("commit: %w", err)
	}

	// Resolve HEAD for the parent; an unborn branch has none.
	var parents []object.OID
	parentID, err := r.ResolveRef("HEAD")
	haveParent := err == nil && !parentID.IsZero()
	if haveParent {
		parents = append(parents, parentID)

		parent, err := r.Store.LookupCommit(parentID)
		if err != nil {
			return object.ZeroOID, fmt.Errorf("commit: parent: %w", err)
		}
		if parent.TreeID == treeID {
			return object.ZeroOID, fmt.Errorf("commit: nothing to commit (index matches HEAD)")
		}
	}

	name, email := r.authorIdentity()
	sig := object.Signature{Name: name, Email: email, When: time.Now()}
	commitID, err := r.Store.WriteCommit(&object.Commit{
		TreeID:    treeID,
		Parents:   parents,
		Author:    sig,
		Committer: sig,
		Message:   message,
	})
	if err != nil {
		return object.ZeroOID, fmt.Errorf("commit: write commit: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		return object.ZeroOID, fmt.Errorf("commit: read HEAD: %w", err)
	}

	// head is either a ref path ("refs/heads/main") or a detached id.
	if strings.HasPrefix(head, "refs/") {
		var updateErr error
		if haveParent {
			updateErr = r.UpdateRefCAS(head, commitID, parentID)
		} else {
			updateErr = r.UpdateRefCAS(head, commitID, object.ZeroOID)
		}
		if updateErr != nil {
			return object.ZeroOID, fmt.Errorf("commit: update ref %q: %w", head, updateErr)
		}
	} else {
		if err := r.UpdateRefCAS("HEAD", commitID, parentID); err != nil {
			return object.ZeroOID, fmt.Errorf("commit: update detached HEAD: %w", err)
		}
	}

	trace.Event("repo.commit").Stringer("id", commitID).Stringer("tree", treeID).Send()
	return commitID, nil
}

// Log walks the commit history starting from the given id, following
// first-parent links, returning up to limit commits newest first.
func (r *Repo) Log(start object.OID, limit int) ([]*object.Commit, error) {
	var commits []*object.Commit
	current := start

	for limit <= 0 || len(commits) < limit {
		c, err := r.Store.LookupCommit(current)
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("log: commit %s: %w", current.Short(), err)
		}
		commits = append(commits, c)

		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}

	return commits, nil
}
