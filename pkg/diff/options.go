package diff

// Flag toggles optional diff behavior. Flags combine with bitwise or.
type Flag uint32

const (
	// IncludeUntracked adds deltas for workdir files absent from the
	// tree side. Without it a workdir diff reports tracked files only.
	IncludeUntracked Flag = 1 << iota

	// RecurseUntrackedDirs lists every file inside an untracked
	// directory instead of collapsing the directory to one delta.
	RecurseUntrackedDirs

	// IncludeIgnored adds deltas for files the ignore rules match.
	IncludeIgnored

	// IgnoreWhitespace compares lines with all whitespace removed.
	IgnoreWhitespace

	// IgnoreWhitespaceChange compares lines with whitespace runs
	// collapsed and trailing whitespace removed.
	IgnoreWhitespaceChange

	// IgnoreWhitespaceEOL compares lines with trailing whitespace
	// removed.
	IgnoreWhitespaceEOL

	// ForceText diffs content as text even when it looks binary.
	ForceText
)

// Has reports whether all bits of q are set.
func (f Flag) Has(q Flag) bool { return f&q == q }

const (
	DefaultContextLines   = 3
	DefaultInterhunkLines = 0
)

// Options control hunk shaping and delta selection. The zero value is
// usable; a nil *Options means the engine defaults.
type Options struct {
	Flags Flag

	// ContextLines is the number of unchanged lines shown around each
	// change run.
	ContextLines int

	// InterhunkLines widens the merge distance: two change runs whose
	// unchanged gap is at most 2*ContextLines+InterhunkLines share one
	// hunk.
	InterhunkLines int
}

// normalized resolves nil to the defaults and clamps negatives.
func (o *Options) normalized() Options {
	if o == nil {
		return Options{ContextLines: DefaultContextLines, InterhunkLines: DefaultInterhunkLines}
	}
	n := *o
	if n.ContextLines < 0 {
		n.ContextLines = 0
	}
	if n.InterhunkLines < 0 {
		n.InterhunkLines = 0
	}
	return n
}
