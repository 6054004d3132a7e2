package object

import "time"

// Signature identifies the author or committer of a commit.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Commit ties a root tree to its history. The exported fields are the
// construction surface for WriteCommit; the id is assigned by the store
// on write or read.
type Commit struct {
	id        OID
	TreeID    OID
	Parents   []OID
	Author    Signature
	Committer Signature
	Message   string
}

// ID returns the commit's content identifier, or the zero id for a
// commit not yet written.
func (c *Commit) ID() OID { return c.id }

// Kind returns KindCommit.
func (c *Commit) Kind() Kind { return KindCommit }
