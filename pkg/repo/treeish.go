package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grove-vcs/grove/pkg/object"
)

const minAbbrevLen = 4

// ResolveTreeish resolves a tree-ish expression to a tree.
//
// Accepted forms: "HEAD", ref names (full "refs/..." paths or refs/heads
// and refs/tags shorthand), full 40-hex ids, abbreviated hex ids of at
// least four characters, each optionally suffixed with "^{tree}".
// Commits dereference to their root tree; naming a blob is a type
// mismatch.
func (r *Repo) ResolveTreeish(expr string) (*object.Tree, error) {
	obj, err := r.ResolveObject(strings.TrimSuffix(expr, "^{tree}"))
	if err != nil {
		return nil, err
	}

	switch o := obj.(type) {
	case *object.Tree:
		return o, nil
	case *object.Commit:
		t, err := r.Store.LookupTree(o.TreeID)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", expr, err)
		}
		return t, nil
	default:
		return nil, &object.TypeError{ID: obj.ID(), Want: object.KindTree, Got: obj.Kind()}
	}
}

// ResolveCommit resolves an expression that must name a commit.
func (r *Repo) ResolveCommit(expr string) (*object.Commit, error) {
	obj, err := r.ResolveObject(expr)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(*object.Commit)
	if !ok {
		return nil, &object.TypeError{ID: obj.ID(), Want: object.KindCommit, Got: obj.Kind()}
	}
	return c, nil
}

// ResolveObject resolves a revision expression to a loaded object.
// Refs are tried before hex forms, so a branch named like an id wins.
func (r *Repo) ResolveObject(expr string) (object.Object, error) {
	id, err := r.ResolveID(expr)
	if err != nil {
		return nil, err
	}
	obj, err := r.Store.LookupObject(id)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", expr, err)
	}
	return obj, nil
}

// ResolveID resolves a revision expression to an object id without
// loading the object.
func (r *Repo) ResolveID(expr string) (object.OID, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return object.ZeroOID, fmt.Errorf("resolve: empty expression")
	}

	if id, err := r.ResolveRef(expr); err == nil {
		return id, nil
	} else if !errors.Is(err, object.ErrNotFound) {
		return object.ZeroOID, err
	}

	if !isHex(expr) {
		return object.ZeroOID, fmt.Errorf("resolve %q: %w", expr, object.ErrNotFound)
	}
	if len(expr) == 2*object.OIDSize {
		return object.ParseOID(expr)
	}
	if len(expr) >= minAbbrevLen && len(expr) < 2*object.OIDSize {
		return r.expandAbbrev(expr)
	}
	return object.ZeroOID, fmt.Errorf("resolve %q: %w", expr, object.ErrNotFound)
}

// expandAbbrev expands an abbreviated hex id by scanning the matching
// object fanout directory. Exactly one stored object may match.
func (r *Repo) expandAbbrev(prefix string) (object.OID, error) {
	lower := strings.ToLower(prefix)
	fanout := filepath.Join(r.GroveDir, "objects", lower[:2])

	entries, err := os.ReadDir(fanout)
	if err != nil {
		if os.IsNotExist(err) {
			return object.ZeroOID, fmt.Errorf("resolve %q: %w", prefix, object.ErrNotFound)
		}
		return object.ZeroOID, fmt.Errorf("resolve %q: %w", prefix, err)
	}

	rest := lower[2:]
	var match string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, rest) {
			continue
		}
		if match != "" {
			return object.ZeroOID, fmt.Errorf("resolve %q: ambiguous id prefix", prefix)
		}
		match = name
	}
	if match == "" {
		return object.ZeroOID, fmt.Errorf("resolve %q: %w", prefix, object.ErrNotFound)
	}
	return object.ParseOID(lower[:2] + match)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return len(s) > 0
}
