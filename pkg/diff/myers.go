package diff

// editType classifies a step in an edit script.
type editType int

const (
	editEqual  editType = iota // line present on both sides
	editInsert                 // line present on the new side only
	editDelete                 // line present on the old side only
)

// editOp is one step of an edit script. old and new index into the
// input slices; the index on the side an op does not touch is -1.
type editOp struct {
	typ editType
	old int
	new int
}

// myersDiff computes the shortest edit script transforming a into b
// using the Myers diff algorithm operating on whole lines.
//
// The algorithm runs in O((N+M)*D) time where N and M are the lengths
// of a and b, and D is the size of the minimum edit script.
func myersDiff(a, b []string) []editOp {
	n := len(a)
	m := len(b)

	// Handle trivial cases.
	if n == 0 && m == 0 {
		return nil
	}
	if n == 0 {
		ops := make([]editOp, m)
		for i := range b {
			ops[i] = editOp{typ: editInsert, old: -1, new: i}
		}
		return ops
	}
	if m == 0 {
		ops := make([]editOp, n)
		for i := range a {
			ops[i] = editOp{typ: editDelete, old: i, new: -1}
		}
		return ops
	}

	max := n + m
	size := 2*max + 1

	v := make([]int, size)

	// trace[d] holds a snapshot of v after processing edit distance d.
	var trace [][]int

	for d := 0; d <= max; d++ {
		for k := -d; k <= d; k += 2 {
			idx := k + max
			var x int
			if k == -d || (k != d && v[idx-1] < v[idx+1]) {
				x = v[idx+1] // move down (insert)
			} else {
				x = v[idx-1] + 1 // move right (delete)
			}
			y := x - k

			// Follow diagonal (equal lines).
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}

			v[idx] = x

			if x >= n && y >= m {
				snap := make([]int, size)
				copy(snap, v)
				trace = append(trace, snap)
				return backtrack(trace, n, m, d)
			}
		}

		snap := make([]int, size)
		copy(snap, v)
		trace = append(trace, snap)
	}

	// Unreachable: the d loop always terminates by x>=n && y>=m.
	return nil
}

// backtrack reconstructs the edit script from the trace of v snapshots.
// trace[d] holds the v-array state after processing edit distance d.
func backtrack(trace [][]int, n, m, dFinal int) []editOp {
	max := n + m

	x := n
	y := m

	// Build the edit script in reverse.
	var ops []editOp

	for d := dFinal; d > 0; d-- {
		k := x - y
		idx := k + max

		vPrev := trace[d-1]

		var prevK int
		if k == -d || (k != d && vPrev[idx-1] < vPrev[idx+1]) {
			prevK = k + 1 // came from an insert (down move)
		} else {
			prevK = k - 1 // came from a delete (right move)
		}

		prevX := vPrev[prevK+max]
		prevY := prevX - prevK

		// Trace back along the diagonal (equal lines).
		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, editOp{typ: editEqual, old: x, new: y})
		}

		if k == prevK+1 {
			// This was a delete (right move): prevK = k-1.
			x--
			ops = append(ops, editOp{typ: editDelete, old: x, new: -1})
		} else {
			// This was an insert (down move): prevK = k+1.
			y--
			ops = append(ops, editOp{typ: editInsert, old: -1, new: y})
		}
	}

	// Remaining diagonal at d=0.
	for x > 0 && y > 0 {
		x--
		y--
		ops = append(ops, editOp{typ: editEqual, old: x, new: y})
	}

	// Reverse to get forward order.
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}

	return ops
}
