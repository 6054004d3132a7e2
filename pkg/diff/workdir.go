package diff

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grove-vcs/grove/pkg/object"
	"github.com/grove-vcs/grove/pkg/trace"
)

// Workdir locates a working directory for diffing. Ignore, when set,
// reports whether a repo-relative path is excluded from untracked
// listings. The state directories .grove and .git are always skipped.
type Workdir struct {
	Root   string
	Ignore func(relPath string, isDir bool) bool
}

func (wd Workdir) ignored(rel string, isDir bool) bool {
	return wd.Ignore != nil && wd.Ignore(rel, isDir)
}

// TreeToWorkdir diffs a tree against the live working directory. Files
// in the tree but missing on disk are deleted; files on disk with
// changed content or mode are modified; files the tree does not know
// are untracked and appear only when the flags ask for them.
func TreeToWorkdir(tree *object.Tree, wd Workdir, opts *Options) (*Diff, error) {
	o := opts.normalized()
	if tree == nil {
		tree = object.EmptyTree()
	}
	files, err := flattenTree(tree)
	if err != nil {
		return nil, err
	}

	w := &workdirWalker{
		wd:          wd,
		opts:        o,
		tracked:     make(map[string]treeFile, len(files)),
		trackedDirs: make(map[string]bool),
		seen:        make(map[string]bool),
	}
	for _, f := range files {
		w.tracked[f.path] = f
		for p := f.path; ; {
			i := strings.LastIndexByte(p, '/')
			if i < 0 {
				break
			}
			p = p[:i]
			w.trackedDirs[p] = true
		}
	}

	err = filepath.WalkDir(wd.Root, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == wd.Root {
			return nil
		}
		rel, err := filepath.Rel(wd.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if name := de.Name(); name == ".grove" || name == ".git" {
			if de.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if de.IsDir() {
			return w.dir(rel, p)
		}
		return w.file(rel, p, de)
	})
	if err != nil {
		return nil, err
	}

	// Tree files the walk never reached are gone from the workdir.
	for _, f := range files {
		if w.seen[f.path] {
			continue
		}
		old, oldData, err := entrySide(f.path, &f.entry)
		if err != nil {
			return nil, err
		}
		w.deltas = append(w.deltas, finishDelta(Delta{Status: Deleted, Old: old}, oldData, nil, o))
	}

	sort.SliceStable(w.deltas, func(i, j int) bool {
		return w.deltas[i].Path() < w.deltas[j].Path()
	})

	trace.Event("diff.workdir").
		Stringer("tree", tree.ID()).
		Str("root", wd.Root).
		Int("deltas", len(w.deltas)).
		Send()
	return &Diff{Deltas: w.deltas}, nil
}

type workdirWalker struct {
	wd          Workdir
	opts        Options
	tracked     map[string]treeFile
	trackedDirs map[string]bool
	seen        map[string]bool
	deltas      []Delta
}

// dir decides whether to descend. Directories holding tracked content
// always descend; fully untracked or ignored directories collapse to a
// single "dir/" delta unless recursion is requested.
func (w *workdirWalker) dir(rel, abs string) error {
	if w.trackedDirs[rel] {
		return nil
	}
	if w.wd.ignored(rel, true) {
		if w.opts.Flags.Has(IncludeIgnored) {
			w.deltas = append(w.deltas, Delta{
				Status: Ignored,
				New:    File{Path: rel + "/", Mode: object.ModeTree},
			})
		}
		return filepath.SkipDir
	}
	if w.opts.Flags.Has(RecurseUntrackedDirs) {
		return nil
	}
	if w.opts.Flags.Has(IncludeUntracked) {
		children, err := os.ReadDir(abs)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			w.deltas = append(w.deltas, Delta{
				Status: Untracked,
				New:    File{Path: rel + "/", Mode: object.ModeTree},
			})
		}
	}
	return filepath.SkipDir
}

func (w *workdirWalker) file(rel, abs string, de fs.DirEntry) error {
	if tf, ok := w.tracked[rel]; ok {
		w.seen[rel] = true
		return w.trackedFile(rel, abs, de, tf)
	}
	if w.wd.ignored(rel, false) {
		if w.opts.Flags.Has(IncludeIgnored) {
			w.deltas = append(w.deltas, Delta{Status: Ignored, New: statSide(rel, de)})
		}
		return nil
	}
	if w.opts.Flags.Has(IncludeUntracked) {
		w.deltas = append(w.deltas, Delta{Status: Untracked, New: statSide(rel, de)})
	}
	return nil
}

// trackedFile compares one tracked path's disk state against its tree
// entry, emitting a modified delta when content or mode moved.
func (w *workdirWalker) trackedFile(rel, abs string, de fs.DirEntry, tf treeFile) error {
	data, mode, err := readWorkdirFile(abs, de)
	if err != nil {
		return err
	}
	id := object.HashObject(object.KindBlob, data)
	if id == tf.entry.ID() && mode == tf.entry.Mode() {
		return nil
	}
	old, oldData, err := entrySide(rel, &tf.entry)
	if err != nil {
		return err
	}
	delta := Delta{
		Status: Modified,
		Old:    old,
		New:    File{Path: rel, ID: id, Mode: mode, Size: int64(len(data))},
	}
	w.deltas = append(w.deltas, finishDelta(delta, oldData, data, w.opts))
	return nil
}

// readWorkdirFile loads a file's content and its normalized mode. A
// symlink's content is its target path.
func readWorkdirFile(abs string, de fs.DirEntry) ([]byte, object.FileMode, error) {
	if de.Type()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(abs)
		if err != nil {
			return nil, 0, err
		}
		return []byte(target), object.ModeSymlink, nil
	}
	info, err := de.Info()
	if err != nil {
		return nil, 0, err
	}
	mode := object.ModeBlob
	if info.Mode()&0o111 != 0 {
		mode = object.ModeExec
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, 0, err
	}
	return data, mode, nil
}

// statSide describes a workdir file without reading it. Untracked and
// ignored deltas never load content, so the id stays zero.
func statSide(rel string, de fs.DirEntry) File {
	f := File{Path: rel, Mode: object.ModeBlob}
	if de.Type()&fs.ModeSymlink != 0 {
		f.Mode = object.ModeSymlink
		return f
	}
	if info, err := de.Info(); err == nil {
		if info.Mode()&0o111 != 0 {
			f.Mode = object.ModeExec
		}
		f.Size = info.Size()
	}
	return f
}
