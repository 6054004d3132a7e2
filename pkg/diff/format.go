package diff

import (
	"fmt"
	"strings"

	"github.com/grove-vcs/grove/pkg/object"
)

// Patch renders the unified patch text for every content delta.
// Untracked and ignored deltas carry no content and are skipped;
// callers list those separately.
func (d *Diff) Patch() string {
	var b strings.Builder
	for i := range d.Deltas {
		writeDeltaPatch(&b, &d.Deltas[i])
	}
	return b.String()
}

func writeDeltaPatch(b *strings.Builder, d *Delta) {
	switch d.Status {
	case Untracked, Ignored:
		return
	}

	aPath, bPath := d.Old.Path, d.New.Path
	if aPath == "" {
		aPath = bPath
	}
	if bPath == "" {
		bPath = aPath
	}
	fmt.Fprintf(b, "diff --grove a/%s b/%s\n", aPath, bPath)

	switch d.Status {
	case Added:
		fmt.Fprintf(b, "new file mode %s\n", d.New.Mode)
		fmt.Fprintf(b, "index %s..%s\n", object.ZeroOID.Short(), d.New.ID.Short())
	case Deleted:
		fmt.Fprintf(b, "deleted file mode %s\n", d.Old.Mode)
		fmt.Fprintf(b, "index %s..%s\n", d.Old.ID.Short(), object.ZeroOID.Short())
	case Modified:
		if d.Old.Mode != d.New.Mode {
			fmt.Fprintf(b, "old mode %s\n", d.Old.Mode)
			fmt.Fprintf(b, "new mode %s\n", d.New.Mode)
			if d.Old.ID != d.New.ID {
				fmt.Fprintf(b, "index %s..%s\n", d.Old.ID.Short(), d.New.ID.Short())
			}
		} else {
			fmt.Fprintf(b, "index %s..%s %s\n", d.Old.ID.Short(), d.New.ID.Short(), d.Old.Mode)
		}
	}

	if d.Binary {
		aName, bName := "a/"+aPath, "b/"+bPath
		if d.Status == Added {
			aName = "/dev/null"
		}
		if d.Status == Deleted {
			bName = "/dev/null"
		}
		fmt.Fprintf(b, "Binary files %s and %s differ\n", aName, bName)
		return
	}
	if len(d.Hunks) == 0 {
		return
	}

	if d.Status == Added {
		b.WriteString("--- /dev/null\n")
	} else {
		fmt.Fprintf(b, "--- a/%s\n", aPath)
	}
	if d.Status == Deleted {
		b.WriteString("+++ /dev/null\n")
	} else {
		fmt.Fprintf(b, "+++ b/%s\n", bPath)
	}

	for i := range d.Hunks {
		h := &d.Hunks[i]
		b.WriteString(h.Header())
		b.WriteByte('\n')
		for _, l := range h.Lines {
			b.WriteByte(l.Origin)
			b.WriteString(l.Content)
			b.WriteByte('\n')
		}
	}
}
