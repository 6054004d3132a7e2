package object

// PathCompare orders two entry names the way tree payloads store them: a
// tree entry sorts as if its name carried a trailing '/', so "lib" as a
// file sorts before "lib.c", which sorts before "lib" as a tree. A plain
// lexicographic compare would misorder file-vs-tree entries sharing a
// name prefix.
func PathCompare(name1 string, isDir1 bool, name2 string, isDir2 bool) int {
	n := len(name1)
	if len(name2) < n {
		n = len(name2)
	}
	for i := 0; i < n; i++ {
		if name1[i] != name2[i] {
			if name1[i] < name2[i] {
				return -1
			}
			return 1
		}
	}

	c1 := boundaryByte(name1, n, isDir1)
	c2 := boundaryByte(name2, n, isDir2)
	switch {
	case c1 < c2:
		return -1
	case c1 > c2:
		return 1
	}
	return 0
}

// boundaryByte is the byte following the common prefix: the next real
// name byte, or the virtual terminator ('/' for trees, 0 otherwise)
// once the name is exhausted.
func boundaryByte(name string, i int, isDir bool) byte {
	if i < len(name) {
		return name[i]
	}
	if isDir {
		return '/'
	}
	return 0
}

// CompareEntries applies PathCompare and breaks naming ties byte-wise on
// the id, giving a deterministic total order for mixed collections.
// Within a single tree names are unique, so the tie-break only matters
// when entries from different trees are sorted together.
func CompareEntries(a, b *Entry) int {
	if c := PathCompare(a.name, a.mode.IsTree(), b.name, b.mode.IsTree()); c != 0 {
		return c
	}
	return CompareOIDs(a.id, b.id)
}
