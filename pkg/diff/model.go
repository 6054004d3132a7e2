package diff

import (
	"fmt"

	"github.com/grove-vcs/grove/pkg/object"
)

// DeltaStatus classifies how one path changed between the two sides.
type DeltaStatus int

const (
	Added DeltaStatus = iota
	Deleted
	Modified
	Untracked
	Ignored
)

func (s DeltaStatus) String() string {
	switch s {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Modified:
		return "modified"
	case Untracked:
		return "untracked"
	case Ignored:
		return "ignored"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Letter returns the one-character status tag used in listings.
func (s DeltaStatus) Letter() byte {
	switch s {
	case Added:
		return 'A'
	case Deleted:
		return 'D'
	case Modified:
		return 'M'
	case Untracked:
		return '?'
	case Ignored:
		return '!'
	}
	return 'X'
}

// File describes one side of a delta. The zero value marks an absent
// side (the old side of an addition, the new side of a deletion).
type File struct {
	Path string
	ID   object.OID
	Mode object.FileMode
	Size int64
}

// Line is a single patch line. Origin is ' ' for context, '+' for an
// addition, '-' for a deletion. Linenos are 1-based; the lineno of the
// side a line does not belong to is 0.
type Line struct {
	Origin    byte
	Content   string
	OldLineno int
	NewLineno int
}

// Hunk is a contiguous run of patch lines with its unified header
// coordinates.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Header renders the "@@ -a,b +c,d @@" line.
func (h *Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
}

// Delta is the change record for one path: old and new sides, a status,
// and the text hunks. Binary deltas and untracked/ignored deltas carry
// no hunks.
type Delta struct {
	Status DeltaStatus
	Old    File
	New    File
	Binary bool
	Hunks  []Hunk
}

// Path returns the delta's operative path: the new side when present,
// the old side otherwise.
func (d *Delta) Path() string {
	if d.New.Path != "" {
		return d.New.Path
	}
	return d.Old.Path
}

// Diff is an ordered list of deltas, one per changed path.
type Diff struct {
	Deltas []Delta
}

// Len returns the number of deltas.
func (d *Diff) Len() int { return len(d.Deltas) }

// Stats summarizes a diff for the "--stat" style trailer line.
type Stats struct {
	FilesChanged int
	Insertions   int
	Deletions    int
}

// Stats counts changed files and added/removed lines. Untracked and
// ignored deltas are excluded.
func (d *Diff) Stats() Stats {
	var st Stats
	for i := range d.Deltas {
		delta := &d.Deltas[i]
		switch delta.Status {
		case Untracked, Ignored:
			continue
		}
		st.FilesChanged++
		for _, h := range delta.Hunks {
			for _, l := range h.Lines {
				switch l.Origin {
				case '+':
					st.Insertions++
				case '-':
					st.Deletions++
				}
			}
		}
	}
	return st
}

func (s Stats) String() string {
	return fmt.Sprintf("%d files changed, %d insertions(+), %d deletions(-)",
		s.FilesChanged, s.Insertions, s.Deletions)
}
