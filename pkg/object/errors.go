package object

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes lookups produce. The typed
// errors below carry the offending key and match these via errors.Is.
var (
	ErrNotFound     = errors.New("object not found")
	ErrTypeMismatch = errors.New("object type mismatch")
	ErrNoStore      = errors.New("no object store attached")
	ErrInvalidPath  = errors.New("invalid tree path")
	ErrNameEncoding = errors.New("entry name is not valid utf-8")
)

// IndexError reports an entry index outside [-Len, Len). Index holds the
// value as the caller gave it, before negative-index normalization.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("tree entry index %d out of range for %d entries", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrNotFound }

// PathError reports a failed path lookup keyed by the full path as the
// caller gave it, however deep the failing segment was.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// TypeError reports an object or entry of the wrong kind.
type TypeError struct {
	ID   OID
	Want Kind
	Got  Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("object %s: want %s, got %s", e.ID.Short(), e.Want, e.Got)
}

func (e *TypeError) Is(target error) bool { return target == ErrTypeMismatch }
