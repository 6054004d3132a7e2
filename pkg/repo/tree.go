package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/grove-vcs/grove/pkg/index"
	"github.com/grove-vcs/grove/pkg/object"
)

// TreeFile represents a single file in a flattened tree.
type TreeFile struct {
	Path string
	ID   object.OID
	Mode object.FileMode
}

// WriteIndexTree converts the flat index into a hierarchy of tree
// objects, writing each directory's tree to the store bottom-up, and
// returns the root tree id. An empty index writes the empty tree.
func (r *Repo) WriteIndexTree() (object.OID, error) {
	ix, err := r.loadIndex()
	if err != nil {
		return object.ZeroOID, fmt.Errorf("write index tree: %w", err)
	}
	id, err := r.writeTreeDir(ix.Entries(), "")
	if err != nil {
		return object.ZeroOID, fmt.Errorf("write index tree: %w", err)
	}
	return id, nil
}

// writeTreeDir writes the tree for one directory prefix. The entries
// slice holds the index rows under that prefix, in index (path) order,
// so each child directory occupies one contiguous span.
func (r *Repo) writeTreeDir(entries []index.Entry, prefix string) (object.OID, error) {
	var out []object.Entry

	i := 0
	for i < len(entries) {
		e := entries[i]
		rel := e.Path
		if prefix != "" {
			rel = strings.TrimPrefix(e.Path, prefix+"/")
		}

		slash := strings.IndexByte(rel, '/')
		if slash < 0 {
			// Direct child file.
			out = append(out, object.NewEntry(rel, e.Mode, e.ID))
			i++
			continue
		}

		// Child directory: recurse over its span.
		childPrefix := rel[:slash]
		if prefix != "" {
			childPrefix = prefix + "/" + childPrefix
		}
		j := i
		for j < len(entries) && strings.HasPrefix(entries[j].Path, childPrefix+"/") {
			j++
		}
		subID, err := r.writeTreeDir(entries[i:j], childPrefix)
		if err != nil {
			return object.ZeroOID, err
		}
		out = append(out, object.NewEntry(rel[:slash], object.ModeTree, subID))
		i = j
	}

	id, err := r.Store.WriteTree(out)
	if err != nil {
		return object.ZeroOID, fmt.Errorf("tree %q: %w", prefix, err)
	}
	return id, nil
}

// FlattenTree walks a tree recursively, returning all non-tree entries
// with their full slash-separated paths in canonical order.
func (r *Repo) FlattenTree(t *object.Tree) ([]TreeFile, error) {
	if t == nil {
		return nil, nil
	}
	var out []TreeFile
	if err := flattenTreeRec(t, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenTreeRec(t *object.Tree, prefix string, out *[]TreeFile) error {
	for i := 0; i < t.Len(); i++ {
		e, err := t.EntryByIndex(i)
		if err != nil {
			return err
		}
		path := e.Name()
		if prefix != "" {
			path = prefix + "/" + e.Name()
		}

		if e.Mode().IsTree() {
			sub, err := e.Tree()
			if err != nil {
				return fmt.Errorf("flatten tree %q: %w", path, err)
			}
			if err := flattenTreeRec(sub, path, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, TreeFile{Path: path, ID: e.ID(), Mode: e.Mode()})
	}
	return nil
}

// HeadTree returns the tree of the HEAD commit. On an unborn branch it
// returns the stored empty tree, so diffs against HEAD always have a
// base.
func (r *Repo) HeadTree() (*object.Tree, error) {
	headID, err := r.ResolveRef("HEAD")
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return r.Store.LookupTree(object.EmptyTreeID)
		}
		return nil, fmt.Errorf("head tree: %w", err)
	}

	c, err := r.Store.LookupCommit(headID)
	if err != nil {
		return nil, fmt.Errorf("head tree: %w", err)
	}
	t, err := r.Store.LookupTree(c.TreeID)
	if err != nil {
		return nil, fmt.Errorf("head tree: %w", err)
	}
	return t, nil
}
