package object

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// OIDSize is the width in bytes of a content identifier. The store uses
// the legacy 20-byte SHA-1 digest.
const OIDSize = sha1.Size

// OID is a fixed-width content identifier, compared byte-wise. The zero
// value names no object.
type OID [OIDSize]byte

// ZeroOID is the all-zero identifier.
var ZeroOID OID

// EmptyTreeID identifies the tree with no entries. Every store shares it
// because the empty payload always hashes the same.
var EmptyTreeID = MustParseOID("4b825dc642cb6eb9a060e54bf8d69288fbee4904")

// ParseOID decodes a 40-character hex identifier.
func ParseOID(s string) (OID, error) {
	var id OID
	if len(s) != OIDSize*2 {
		return id, fmt.Errorf("parse oid %q: want %d hex characters", s, OIDSize*2)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("parse oid %q: %w", s, err)
	}
	copy(id[:], raw)
	return id, nil
}

// MustParseOID is ParseOID for known-good constants; it panics on error.
func MustParseOID(s string) OID {
	id, err := ParseOID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id OID) String() string { return hex.EncodeToString(id[:]) }

// Short returns the abbreviated hex form used in human-facing output.
func (id OID) Short() string { return id.String()[:7] }

// IsZero reports whether id is the all-zero identifier.
func (id OID) IsZero() bool { return id == ZeroOID }

// MarshalText implements encoding.TextMarshaler so identifiers persist
// as hex strings.
func (id OID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *OID) UnmarshalText(text []byte) error {
	parsed, err := ParseOID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// CompareOIDs orders two identifiers byte-wise.
func CompareOIDs(a, b OID) int { return bytes.Compare(a[:], b[:]) }
