package diff

import (
	"bytes"
	"fmt"

	"github.com/grove-vcs/grove/pkg/object"
	"github.com/grove-vcs/grove/pkg/trace"
)

// TreeToTree diffs two trees. A nil operand stands for the canonical
// empty tree. swap exchanges the two operands before the walk runs;
// the result's polarity flips because the inputs did, never by
// rewriting a finished diff.
func TreeToTree(tree, other *object.Tree, opts *Options, swap bool) (*Diff, error) {
	o := opts.normalized()
	oldTree, newTree := tree, other
	if swap {
		oldTree, newTree = newTree, oldTree
	}
	if oldTree == nil {
		oldTree = object.EmptyTree()
	}
	if newTree == nil {
		newTree = object.EmptyTree()
	}

	w := &treeWalker{opts: o}
	if err := w.walk("", oldTree, newTree); err != nil {
		return nil, err
	}
	trace.Event("diff.tree").
		Stringer("old", oldTree.ID()).
		Stringer("new", newTree.ID()).
		Int("deltas", len(w.diff.Deltas)).
		Send()
	return &w.diff, nil
}

type treeWalker struct {
	opts Options
	diff Diff
}

// walk merges the two trees' canonical entry sequences. Entries that
// compare equal under the path comparator pair up; everything else is
// one-sided. A blob and a tree sharing a name never pair, so that
// collision falls out as a delete plus an add.
func (w *treeWalker) walk(prefix string, oldT, newT *object.Tree) error {
	oi, ni := 0, 0
	for oi < oldT.Len() || ni < newT.Len() {
		var oe, ne *object.Entry
		var err error
		if oi < oldT.Len() {
			if oe, err = oldT.EntryByIndex(oi); err != nil {
				return err
			}
		}
		if ni < newT.Len() {
			if ne, err = newT.EntryByIndex(ni); err != nil {
				return err
			}
		}

		switch {
		case ne == nil:
			if err := w.oneSided(prefix, oe, Deleted); err != nil {
				return err
			}
			oi++
		case oe == nil:
			if err := w.oneSided(prefix, ne, Added); err != nil {
				return err
			}
			ni++
		default:
			c := object.PathCompare(oe.Name(), oe.Mode().IsTree(), ne.Name(), ne.Mode().IsTree())
			switch {
			case c < 0:
				if err := w.oneSided(prefix, oe, Deleted); err != nil {
					return err
				}
				oi++
			case c > 0:
				if err := w.oneSided(prefix, ne, Added); err != nil {
					return err
				}
				ni++
			default:
				if err := w.matched(prefix, oe, ne); err != nil {
					return err
				}
				oi++
				ni++
			}
		}
	}
	return nil
}

// matched handles two entries in the same comparator slot. Identical
// id+mode prunes the whole subtree; paired trees recurse; paired
// non-trees become one modified delta.
func (w *treeWalker) matched(prefix string, oe, ne *object.Entry) error {
	if oe.ID() == ne.ID() && oe.Mode() == ne.Mode() {
		return nil
	}
	if oe.Kind() == object.KindTree && ne.Kind() == object.KindTree {
		oldSub, err := oe.Tree()
		if err != nil {
			return err
		}
		newSub, err := ne.Tree()
		if err != nil {
			return err
		}
		return w.walk(prefix+oe.Name()+"/", oldSub, newSub)
	}
	return w.emit(Modified, prefix, oe, ne)
}

// oneSided records an entry present on only one side, descending
// through subtrees so every contained file gets its own delta.
func (w *treeWalker) oneSided(prefix string, e *object.Entry, status DeltaStatus) error {
	if e.Kind() == object.KindTree {
		sub, err := e.Tree()
		if err != nil {
			return err
		}
		subPrefix := prefix + e.Name() + "/"
		for it := sub.Iter(); ; {
			child, ok := it.Next()
			if !ok {
				break
			}
			if err := w.oneSided(subPrefix, child, status); err != nil {
				return err
			}
		}
		return nil
	}
	if status == Deleted {
		return w.emit(Deleted, prefix, e, nil)
	}
	return w.emit(Added, prefix, nil, e)
}

func (w *treeWalker) emit(status DeltaStatus, prefix string, oe, ne *object.Entry) error {
	d := Delta{Status: status}
	var oldData, newData []byte
	var err error
	if oe != nil {
		if d.Old, oldData, err = entrySide(prefix+oe.Name(), oe); err != nil {
			return err
		}
	}
	if ne != nil {
		if d.New, newData, err = entrySide(prefix+ne.Name(), ne); err != nil {
			return err
		}
	}
	w.diff.Deltas = append(w.diff.Deltas, finishDelta(d, oldData, newData, w.opts))
	return nil
}

// entrySide loads the content behind a non-tree entry and describes it
// as one side of a delta. Commit-link entries have no blob; their
// content is the submodule pointer line.
func entrySide(path string, e *object.Entry) (File, []byte, error) {
	f := File{Path: path, ID: e.ID(), Mode: e.Mode()}
	if e.Kind() == object.KindCommit {
		data := []byte("Subproject commit " + e.ID().String() + "\n")
		f.Size = int64(len(data))
		return f, data, nil
	}
	blob, err := e.Blob()
	if err != nil {
		return f, nil, fmt.Errorf("diff %s: %w", path, err)
	}
	f.Size = blob.Size()
	return f, blob.Data(), nil
}

// finishDelta fills in hunks or the binary marker from the two side
// contents. Untracked and ignored deltas stay content-free; equal
// contents mean a mode-only change and also stay hunk-free.
func finishDelta(d Delta, oldData, newData []byte, opts Options) Delta {
	switch d.Status {
	case Untracked, Ignored:
		return d
	}
	if bytes.Equal(oldData, newData) {
		return d
	}
	if !opts.Flags.Has(ForceText) && (isBinary(oldData) || isBinary(newData)) {
		d.Binary = true
		return d
	}
	d.Hunks = buildHunks(oldData, newData, opts)
	return d
}

// treeFile is one non-tree entry with its slash-joined path.
type treeFile struct {
	path  string
	entry object.Entry
}

// flattenTree lists every non-tree entry under t recursively. The
// canonical in-tree order flattens to plain byte order of the full
// paths, so the result merges directly against path-sorted lists.
func flattenTree(t *object.Tree) ([]treeFile, error) {
	return appendTreeFiles(nil, "", t)
}

func appendTreeFiles(out []treeFile, prefix string, t *object.Tree) ([]treeFile, error) {
	for it := t.Iter(); ; {
		e, ok := it.Next()
		if !ok {
			break
		}
		if e.Kind() == object.KindTree {
			sub, err := e.Tree()
			if err != nil {
				return nil, err
			}
			out, err = appendTreeFiles(out, prefix+e.Name()+"/", sub)
			if err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, treeFile{path: prefix + e.Name(), entry: *e})
	}
	return out, nil
}
