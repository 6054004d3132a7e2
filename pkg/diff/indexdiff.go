package diff

import (
	"errors"
	"fmt"

	"github.com/grove-vcs/grove/pkg/index"
	"github.com/grove-vcs/grove/pkg/object"
	"github.com/grove-vcs/grove/pkg/trace"
)

// ErrInvalidIndex reports a nil or never-loaded index handle.
var ErrInvalidIndex = errors.New("diff: invalid index")

// TreeToIndex diffs a tree against the staged index. The index must be
// a loaded handle; a nil tree stands for the canonical empty tree.
// Index-side content resolves through the tree's store.
func TreeToIndex(tree *object.Tree, ix *index.Index, opts *Options) (*Diff, error) {
	if !ix.Valid() {
		return nil, ErrInvalidIndex
	}
	o := opts.normalized()
	if tree == nil {
		tree = object.EmptyTree()
	}
	files, err := flattenTree(tree)
	if err != nil {
		return nil, err
	}
	store := tree.Store()

	var d Diff
	entries := ix.Entries()
	ti, ii := 0, 0
	for ti < len(files) || ii < len(entries) {
		switch {
		case ii >= len(entries) || (ti < len(files) && files[ti].path < entries[ii].Path):
			// In the tree, unstaged: deleted from the index's view.
			f := files[ti]
			old, oldData, err := entrySide(f.path, &f.entry)
			if err != nil {
				return nil, err
			}
			d.Deltas = append(d.Deltas, finishDelta(Delta{Status: Deleted, Old: old}, oldData, nil, o))
			ti++
		case ti >= len(files) || entries[ii].Path < files[ti].path:
			// Staged but absent from the tree: newly added.
			e := entries[ii]
			newData, err := indexSideContent(store, e)
			if err != nil {
				return nil, err
			}
			d.Deltas = append(d.Deltas, finishDelta(Delta{Status: Added, New: indexSide(e)}, nil, newData, o))
			ii++
		default:
			f, e := files[ti], entries[ii]
			if f.entry.ID() != e.ID || f.entry.Mode() != e.Mode {
				old, oldData, err := entrySide(f.path, &f.entry)
				if err != nil {
					return nil, err
				}
				newData, err := indexSideContent(store, e)
				if err != nil {
					return nil, err
				}
				delta := Delta{Status: Modified, Old: old, New: indexSide(e)}
				d.Deltas = append(d.Deltas, finishDelta(delta, oldData, newData, o))
			}
			ti++
			ii++
		}
	}

	trace.Event("diff.index").
		Stringer("tree", tree.ID()).
		Int("deltas", len(d.Deltas)).
		Send()
	return &d, nil
}

func indexSide(e index.Entry) File {
	return File{Path: e.Path, ID: e.ID, Mode: e.Mode, Size: e.Size}
}

func indexSideContent(store *object.Store, e index.Entry) ([]byte, error) {
	if store == nil {
		return nil, object.ErrNoStore
	}
	blob, err := store.LookupBlob(e.ID)
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", e.Path, err)
	}
	return blob.Data(), nil
}
