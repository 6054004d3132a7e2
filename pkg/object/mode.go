package object

import (
	"fmt"
	"strconv"
)

// Kind enumerates the object types the store can hold.
type Kind int

const (
	KindBlob Kind = iota
	KindTree
	KindCommit
)

func (k Kind) String() string {
	switch k {
	case KindBlob:
		return "blob"
	case KindTree:
		return "tree"
	case KindCommit:
		return "commit"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps an on-disk type tag back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "blob":
		return KindBlob, nil
	case "tree":
		return KindTree, nil
	case "commit":
		return KindCommit, nil
	}
	return 0, fmt.Errorf("unknown object type %q", s)
}

// FileMode is the enumerated st_mode-like value a tree entry carries.
// Only the listed values are meaningful; trees never store arbitrary
// permission bits.
type FileMode uint32

const (
	ModeTree    FileMode = 0o040000
	ModeBlob    FileMode = 0o100644
	ModeExec    FileMode = 0o100755
	ModeSymlink FileMode = 0o120000
	ModeCommit  FileMode = 0o160000 // submodule commit-link
)

// Valid reports whether m is one of the enumerated modes.
func (m FileMode) Valid() bool {
	switch m {
	case ModeTree, ModeBlob, ModeExec, ModeSymlink, ModeCommit:
		return true
	}
	return false
}

// IsTree reports whether m marks a subtree entry.
func (m FileMode) IsTree() bool { return m == ModeTree }

// Kind derives the object kind an entry with this mode points at. The
// kind is never stored independently: tree modes point at trees,
// commit-links at commits, everything else at blobs.
func (m FileMode) Kind() Kind {
	switch m {
	case ModeTree:
		return KindTree
	case ModeCommit:
		return KindCommit
	}
	return KindBlob
}

// String renders the octal wire form ("100644", "40000").
func (m FileMode) String() string { return strconv.FormatUint(uint64(m), 8) }

// ParseFileMode parses the octal wire form.
func ParseFileMode(s string) (FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("parse file mode %q: %w", s, err)
	}
	m := FileMode(v)
	if !m.Valid() {
		return 0, fmt.Errorf("parse file mode %q: not a known mode", s)
	}
	return m, nil
}

// MarshalText implements encoding.TextMarshaler using the octal form.
func (m FileMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *FileMode) UnmarshalText(text []byte) error {
	parsed, err := ParseFileMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
