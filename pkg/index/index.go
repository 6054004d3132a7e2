package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/grove-vcs/grove/pkg/object"
)

// Entry records the staged state of a single file.
type Entry struct {
	Path    string          `json:"path"`
	ID      object.OID      `json:"id"`
	Mode    object.FileMode `json:"mode"`
	Size    int64           `json:"size"`
	ModTime int64           `json:"mod_time"`
}

// Index is the staged snapshot of the working tree: a list of file
// entries sorted by path. A usable Index always comes from Load; the
// zero value is an unloaded handle that diff and commit operations
// reject.
type Index struct {
	path    string
	entries []Entry
}

// indexFile is the on-disk JSON shape.
type indexFile struct {
	Entries []Entry `json:"entries"`
}

// Load reads the index file at path. A missing file yields an empty,
// still-valid index bound to that path.
func Load(path string) (*Index, error) {
	ix := &Index{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ix, nil
		}
		return nil, fmt.Errorf("load index: %w", err)
	}
	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("load index: unmarshal: %w", err)
	}
	ix.entries = file.Entries
	sort.Slice(ix.entries, func(i, j int) bool { return ix.entries[i].Path < ix.entries[j].Path })
	return ix, nil
}

// Valid reports whether the handle came from Load and can back diff and
// commit operations.
func (ix *Index) Valid() bool { return ix != nil && ix.path != "" }

// Save atomically rewrites the backing file.
func (ix *Index) Save() error {
	if !ix.Valid() {
		return errors.New("save index: no backing file")
	}
	data, err := json.MarshalIndent(indexFile{Entries: ix.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("save index: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(ix.path), ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("save index: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save index: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index: close: %w", err)
	}
	if err := os.Rename(tmpName, ix.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index: rename: %w", err)
	}
	return nil
}

// Len returns the number of staged entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Entries returns the staged entries in path order. The slice is shared;
// callers must not modify it.
func (ix *Index) Entries() []Entry { return ix.entries }

func (ix *Index) search(path string) (int, bool) {
	i := sort.Search(len(ix.entries), func(i int) bool { return ix.entries[i].Path >= path })
	return i, i < len(ix.entries) && ix.entries[i].Path == path
}

// Get returns a copy of the entry staged at path.
func (ix *Index) Get(path string) (Entry, bool) {
	i, ok := ix.search(path)
	if !ok {
		return Entry{}, false
	}
	return ix.entries[i], true
}

// Set inserts or replaces the entry for e.Path, keeping path order.
func (ix *Index) Set(e Entry) {
	i, ok := ix.search(e.Path)
	if ok {
		ix.entries[i] = e
		return
	}
	ix.entries = append(ix.entries, Entry{})
	copy(ix.entries[i+1:], ix.entries[i:])
	ix.entries[i] = e
}

// Remove drops the entry staged at path, reporting whether it existed.
func (ix *Index) Remove(path string) bool {
	i, ok := ix.search(path)
	if !ok {
		return false
	}
	ix.entries = append(ix.entries[:i], ix.entries[i+1:]...)
	return true
}
