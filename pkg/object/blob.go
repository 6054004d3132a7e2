package object

// Object is any value the store holds under a content identifier.
type Object interface {
	ID() OID
	Kind() Kind
}

// Blob is the raw content of a file entry.
type Blob struct {
	id   OID
	data []byte
}

// ID returns the blob's content identifier.
func (b *Blob) ID() OID { return b.id }

// Kind returns KindBlob.
func (b *Blob) Kind() Kind { return KindBlob }

// Data returns the blob bytes. Callers must not modify them.
func (b *Blob) Data() []byte { return b.data }

// Size returns the content length in bytes.
func (b *Blob) Size() int64 { return int64(len(b.data)) }
