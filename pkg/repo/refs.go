package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grove-vcs/grove/pkg/object"
)

var ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")
var ErrRefUpdatedButReflogAppendFailed = errors.New("ref updated but reflog append failed")

// RefUpdateReflogError indicates the ref file update succeeded, but appending
// the corresponding reflog entry failed.
type RefUpdateReflogError struct {
	Ref   string
	OldID object.OID
	NewID object.OID
	Err   error
}

func (e *RefUpdateReflogError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf(
		"update ref %q: %s (old=%s new=%s): %v",
		e.Ref,
		ErrRefUpdatedButReflogAppendFailed,
		e.OldID,
		e.NewID,
		e.Err,
	)
}

func (e *RefUpdateReflogError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *RefUpdateReflogError) Is(target error) bool {
	return target == ErrRefUpdatedButReflogAppendFailed
}

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// Head reads .grove/HEAD. If the content starts with "ref: ", it returns the
// ref path (e.g., "refs/heads/main"). Otherwise it returns the raw content
// as a detached id string.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GroveDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")

	if strings.HasPrefix(content, "ref: ") {
		return strings.TrimPrefix(content, "ref: "), nil
	}
	return content, nil
}

// ResolveRef resolves a ref name to an object id.
//
// Resolution order:
//  1. If name is "HEAD", read HEAD. If HEAD is symbolic, resolve the target ref.
//  2. If name starts with "refs/", read .grove/<name>.
//  3. Otherwise, try "refs/heads/<name>", then "refs/tags/<name>".
func (r *Repo) ResolveRef(name string) (object.OID, error) {
	if name == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return object.ZeroOID, err
		}
		if strings.HasPrefix(head, "refs/") {
			return r.ResolveRef(head)
		}
		// Detached HEAD: the value is an id.
		id, err := object.ParseOID(head)
		if err != nil {
			return object.ZeroOID, fmt.Errorf("resolve ref HEAD: %w", err)
		}
		return id, nil
	}

	candidates := []string{name}
	if !strings.HasPrefix(name, "refs/") {
		candidates = []string{"refs/heads/" + name, "refs/tags/" + name}
	}

	for _, ref := range candidates {
		data, err := os.ReadFile(filepath.Join(r.GroveDir, filepath.FromSlash(ref)))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return object.ZeroOID, fmt.Errorf("resolve ref %q: %w", name, err)
		}
		id, err := object.ParseOID(strings.TrimSpace(string(data)))
		if err != nil {
			return object.ZeroOID, fmt.Errorf("resolve ref %q: %w", name, err)
		}
		return id, nil
	}
	return object.ZeroOID, fmt.Errorf("resolve ref %q: %w", name, object.ErrNotFound)
}

// UpdateRef writes an id to the named ref file under .grove/. Parent
// directories are created as needed.
func (r *Repo) UpdateRef(name string, id object.OID) error {
	return r.UpdateRefCAS(name, id)
}

// UpdateRefCAS writes an id to the named ref file under .grove/ using
// lockfile + rename atomic semantics. If expectedOld is provided, the
// update only succeeds when the current ref value matches it; the zero
// id stands for "ref must not exist yet".
//
// Reflog append happens after the ref rename; if reflog append fails, the
// ref update remains committed and a RefUpdateReflogError is returned.
func (r *Repo) UpdateRefCAS(name string, id object.OID, expectedOld ...object.OID) error {
	if len(expectedOld) > 1 {
		return fmt.Errorf("update ref %q: expected at most one old id", name)
	}
	hasExpectedOld := len(expectedOld) == 1
	wantOldID := object.ZeroOID
	if hasExpectedOld {
		wantOldID = expectedOld[0]
	}

	refPath := filepath.Join(r.GroveDir, filepath.FromSlash(name))

	dir := filepath.Dir(refPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	oldID, err := readRefID(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old id: %w", name, err)
	}
	if hasExpectedOld && oldID != wantOldID {
		return fmt.Errorf(
			"update ref %q: %w (expected %s, found %s)",
			name,
			ErrRefCASMismatch,
			wantOldID,
			oldID,
		)
	}

	if _, err := lockFile.WriteString(id.String() + "\n"); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	cleanupLock = false

	if err := r.appendReflog(name, oldID, id, "update"); err != nil {
		return &RefUpdateReflogError{
			Ref:   name,
			OldID: oldID,
			NewID: id,
			Err:   err,
		}
	}

	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

// readRefID reads the id stored in a ref file. A missing ref reads as the
// zero id.
func readRefID(refPath string) (object.OID, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return object.ZeroOID, nil
		}
		return object.ZeroOID, err
	}
	return object.ParseOID(strings.TrimSpace(string(data)))
}

// ListRefs lists references under .grove/refs.
// Names are returned relative to refs root, e.g. "heads/main", "tags/v1".
func (r *Repo) ListRefs(prefix string) (map[string]object.OID, error) {
	root := filepath.Join(r.GroveDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.OID)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(path, ".lock") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		id, err := readRefID(path)
		if err != nil {
			return err
		}
		refs[filepath.ToSlash(rel)] = id
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}
