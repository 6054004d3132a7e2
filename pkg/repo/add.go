package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/grove-vcs/grove/pkg/index"
	"github.com/grove-vcs/grove/pkg/object"
	"github.com/grove-vcs/grove/pkg/trace"
)

// Add stages the given paths. Each path is resolved relative to the repo
// root. Files are hashed into the object store and recorded in the index;
// directories are staged recursively, skipping ignored entries. A named
// path that no longer exists on disk but is tracked stages its removal.
func (r *Repo) Add(paths []string) error {
	ix, err := r.loadIndex()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	ic := NewIgnoreChecker(r.RootDir)

	for _, p := range paths {
		rel, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("add: resolve path %q: %w", p, err)
		}

		abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
		info, err := os.Lstat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				if _, tracked := ix.Get(rel); tracked {
					ix.Remove(rel)
					continue
				}
				return fmt.Errorf("add: pathspec %q did not match any files", p)
			}
			return fmt.Errorf("add: stat %q: %w", rel, err)
		}

		if info.IsDir() {
			if err := r.stageDir(ix, ic, rel, abs); err != nil {
				return fmt.Errorf("add: %w", err)
			}
			continue
		}

		if ic.IsIgnored(rel, false) {
			return fmt.Errorf("add: path %q is ignored", rel)
		}
		if err := r.stageFile(ix, rel, abs, info); err != nil {
			return fmt.Errorf("add: %w", err)
		}
	}

	if err := ix.Save(); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// stageDir stages every non-ignored file under dir.
func (r *Repo) stageDir(ix *index.Index, ic *IgnoreChecker, rel, abs string) error {
	return filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		sub, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		sub = filepath.ToSlash(sub)
		if sub == "." {
			return nil
		}

		if ic.IsIgnored(sub, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return r.stageFile(ix, sub, path, info)
	})
}

// stageFile hashes one working tree file into the store and updates its
// index entry. Symlinks stage their target path as the blob content.
func (r *Repo) stageFile(ix *index.Index, rel, abs string, info fs.FileInfo) error {
	var content []byte
	mode := modeFromInfo(info)
	if mode == object.ModeSymlink {
		target, err := os.Readlink(abs)
		if err != nil {
			return fmt.Errorf("readlink %q: %w", rel, err)
		}
		content = []byte(target)
	} else {
		data, err := os.ReadFile(abs)
		if err != nil {
			return fmt.Errorf("read %q: %w", rel, err)
		}
		content = data
	}

	id, err := r.Store.WriteBlob(content)
	if err != nil {
		return fmt.Errorf("write blob %q: %w", rel, err)
	}

	ix.Set(index.Entry{
		Path:    rel,
		ID:      id,
		Mode:    mode,
		Size:    int64(len(content)),
		ModTime: info.ModTime().UnixNano(),
	})
	trace.Event("index.add").Str("path", rel).Stringer("id", id).Send()
	return nil
}

// repoRelPath converts a path (absolute, or relative to CWD) into a path
// relative to the repository root. If the path is already relative and does
// not start with the repo root, it is assumed to already be repo-relative.
func (r *Repo) repoRelPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return "", fmt.Errorf("cannot make %q relative to %q: %w", p, r.RootDir, err)
		}
		return filepath.ToSlash(rel), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	abs := filepath.Join(cwd, p)
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	// A leading ".." means p is outside the repo; treat the original p as
	// already repo-relative.
	if len(rel) >= 2 && rel[:2] == ".." {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	return filepath.ToSlash(rel), nil
}
