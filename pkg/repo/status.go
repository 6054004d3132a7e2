package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/grove-vcs/grove/pkg/index"
	"github.com/grove-vcs/grove/pkg/object"
	"github.com/grove-vcs/grove/pkg/trace"
)

// ChangeKind classifies an entry in a status bucket.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "new file"
	case ChangeModified:
		return "modified"
	case ChangeDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change records one changed path in a status bucket.
type Change struct {
	Path string
	Kind ChangeKind
}

// Status summarizes the repository state as three buckets: staged
// (HEAD tree vs index), unstaged (index vs working tree), and untracked
// paths. Untracked directories are collapsed to a single "dir/" entry.
type Status struct {
	Branch    string     // current branch name, "" when detached
	HeadID    object.OID // zero on an unborn branch
	Staged    []Change
	Unstaged  []Change
	Untracked []string
}

// Status computes the working tree status for the repository.
func (r *Repo) Status() (*Status, error) {
	ix, err := r.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	st := &Status{}
	st.Branch, _ = r.CurrentBranch()
	if id, err := r.ResolveRef("HEAD"); err == nil {
		st.HeadID = id
	}

	headTree, err := r.HeadTree()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	headFiles, err := r.FlattenTree(headTree)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	st.Staged = stagedChanges(headFiles, ix.Entries())

	refresh := false
	st.Unstaged, refresh, err = r.unstagedChanges(ix)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	st.Untracked, err = r.untrackedPaths(ix)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	if refresh {
		if err := ix.Save(); err != nil {
			return nil, fmt.Errorf("status: refresh index: %w", err)
		}
	}

	trace.Event("repo.status").
		Int("staged", len(st.Staged)).
		Int("unstaged", len(st.Unstaged)).
		Int("untracked", len(st.Untracked)).
		Send()
	return st, nil
}

// stagedChanges merges the flattened HEAD tree against the index. Both
// inputs are sorted by path, the tree because canonical in-tree order
// flattens to plain byte order of full paths.
func stagedChanges(headFiles []TreeFile, entries []index.Entry) []Change {
	var out []Change
	i, j := 0, 0
	for i < len(headFiles) || j < len(entries) {
		switch {
		case i >= len(headFiles):
			out = append(out, Change{Path: entries[j].Path, Kind: ChangeAdded})
			j++
		case j >= len(entries):
			out = append(out, Change{Path: headFiles[i].Path, Kind: ChangeDeleted})
			i++
		default:
			hf, e := headFiles[i], entries[j]
			switch strings.Compare(hf.Path, e.Path) {
			case -1:
				out = append(out, Change{Path: hf.Path, Kind: ChangeDeleted})
				i++
			case 1:
				out = append(out, Change{Path: e.Path, Kind: ChangeAdded})
				j++
			default:
				if hf.ID != e.ID || hf.Mode != e.Mode {
					out = append(out, Change{Path: e.Path, Kind: ChangeModified})
				}
				i++
				j++
			}
		}
	}
	return out
}

// unstagedChanges compares index entries against the working tree,
// cheap stat check first, content hash only when the stat disagrees.
// When the hash proves the content unchanged the entry's cached stat is
// refreshed, and the second result reports that the index needs saving.
func (r *Repo) unstagedChanges(ix *index.Index) ([]Change, bool, error) {
	var out []Change
	refresh := false

	for _, e := range ix.Entries() {
		abs := filepath.Join(r.RootDir, filepath.FromSlash(e.Path))
		info, err := os.Lstat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				out = append(out, Change{Path: e.Path, Kind: ChangeDeleted})
				continue
			}
			return nil, false, fmt.Errorf("stat %q: %w", e.Path, err)
		}

		mode := modeFromInfo(info)
		if statMatches(&e, info, mode) {
			continue
		}

		content, err := readWorkFile(abs, mode)
		if err != nil {
			return nil, false, fmt.Errorf("read %q: %w", e.Path, err)
		}
		id := object.HashObject(object.KindBlob, content)
		if id != e.ID || mode != e.Mode {
			out = append(out, Change{Path: e.Path, Kind: ChangeModified})
			continue
		}

		// Content unchanged: remember the new stat so the next status
		// can skip the hash.
		e.Mode = mode
		e.Size = info.Size()
		e.ModTime = info.ModTime().UnixNano()
		ix.Set(e)
		refresh = true
	}
	return out, refresh, nil
}

func readWorkFile(abs string, mode object.FileMode) ([]byte, error) {
	if mode == object.ModeSymlink {
		target, err := os.Readlink(abs)
		if err != nil {
			return nil, err
		}
		return []byte(target), nil
	}
	return os.ReadFile(abs)
}

const racyCleanWindow = 2 * time.Second

// statMatches reports whether the cached index stat proves the working
// tree file unchanged. Files modified too close to now are never trusted:
// an edit inside the mtime granularity window could keep size and mtime
// while changing content.
func statMatches(e *index.Entry, info fs.FileInfo, mode object.FileMode) bool {
	if e.Mode != mode {
		return false
	}
	if e.Size != info.Size() {
		return false
	}
	if isRacyCleanModTime(info.ModTime()) {
		return false
	}
	// Coarse filesystems expose second-level mtimes; those can hide
	// same-size edits within one second.
	if info.ModTime().Nanosecond() == 0 {
		return false
	}
	return e.ModTime == info.ModTime().UnixNano()
}

func isRacyCleanModTime(modTime time.Time) bool {
	now := time.Now()
	if modTime.After(now) {
		return true
	}
	return now.Sub(modTime) < racyCleanWindow
}

// untrackedPaths walks the working tree for paths absent from the index.
// A directory holding no tracked files collapses to one "dir/" entry.
func (r *Repo) untrackedPaths(ix *index.Index) ([]string, error) {
	ic := NewIgnoreChecker(r.RootDir)

	trackedDirs := make(map[string]bool)
	for _, e := range ix.Entries() {
		dir := e.Path
		for {
			i := strings.LastIndexByte(dir, '/')
			if i < 0 {
				break
			}
			dir = dir[:i]
			if trackedDirs[dir] {
				break
			}
			trackedDirs[dir] = true
		}
	}

	var out []string
	err := filepath.WalkDir(r.RootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if name := d.Name(); name == groveDirName || name == ".git" {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if trackedDirs[rel] {
				return nil
			}
			if ic.IsIgnored(rel, true) {
				return fs.SkipDir
			}
			populated, err := dirHasEntries(path)
			if err != nil {
				return err
			}
			if populated {
				out = append(out, rel+"/")
			}
			return fs.SkipDir
		}

		if _, tracked := ix.Get(rel); tracked {
			return nil
		}
		if ic.IsIgnored(rel, false) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func dirHasEntries(abs string) (bool, error) {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}
