package diff

// opRange is a half-open window [start, end) into an edit script that
// becomes one hunk.
type opRange struct {
	start int
	end   int
}

// groupOps windows the changed ops with their context and merges
// windows whose gap is within reach: two change runs share a hunk when
// the unchanged lines between them number at most
// 2*contextLines+interhunkLines.
func groupOps(ops []editOp, contextLines, interhunkLines int) []opRange {
	var groups []opRange
	for i, op := range ops {
		if op.typ == editEqual {
			continue
		}

		start := i - contextLines
		if start < 0 {
			start = 0
		}
		end := i + contextLines + 1
		if end > len(ops) {
			end = len(ops)
		}

		if len(groups) == 0 || start > groups[len(groups)-1].end+interhunkLines {
			groups = append(groups, opRange{start: start, end: end})
			continue
		}
		if end > groups[len(groups)-1].end {
			groups[len(groups)-1].end = end
		}
	}
	return groups
}

// buildHunks diffs two text payloads into unified hunks. Comparison
// runs over whitespace-canonical keys when those flags are set; the
// emitted lines are always the original text.
func buildHunks(oldData, newData []byte, opts Options) []Hunk {
	a := splitLines(string(oldData))
	b := splitLines(string(newData))

	ops := myersDiff(canonicalLines(a, opts.Flags), canonicalLines(b, opts.Flags))
	groups := groupOps(ops, opts.ContextLines, opts.InterhunkLines)
	if len(groups) == 0 {
		return nil
	}

	hunks := make([]Hunk, 0, len(groups))
	oldLine, newLine := 1, 1
	pos := 0
	for _, g := range groups {
		for ; pos < g.start; pos++ {
			switch ops[pos].typ {
			case editEqual:
				oldLine++
				newLine++
			case editDelete:
				oldLine++
			case editInsert:
				newLine++
			}
		}

		h := Hunk{OldStart: oldLine, NewStart: newLine}
		for ; pos < g.end; pos++ {
			op := ops[pos]
			switch op.typ {
			case editEqual:
				h.Lines = append(h.Lines, Line{
					Origin: ' ', Content: a[op.old],
					OldLineno: oldLine, NewLineno: newLine,
				})
				h.OldLines++
				h.NewLines++
				oldLine++
				newLine++
			case editDelete:
				h.Lines = append(h.Lines, Line{
					Origin: '-', Content: a[op.old],
					OldLineno: oldLine,
				})
				h.OldLines++
				oldLine++
			case editInsert:
				h.Lines = append(h.Lines, Line{
					Origin: '+', Content: b[op.new],
					NewLineno: newLine,
				})
				h.NewLines++
				newLine++
			}
		}

		if h.OldLines == 0 {
			h.OldStart--
		}
		if h.NewLines == 0 {
			h.NewStart--
		}
		hunks = append(hunks, h)
	}
	return hunks
}
