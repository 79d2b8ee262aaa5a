// Package rank implements the deterministic total order used to pick the
// best torrent among a title-equivalence group.
package rank

// Candidate is the pure, pre-computed input each ranked item supplies.
// ObservedSize must already reflect the "sum of library file sizes if
// present, else declared size" rule from the data model -- Ranker itself
// performs no I/O, so callers that have library files on disk compute the
// sum before calling Rank.
type Candidate struct {
	Filetypes    []string
	ObservedSize int64
}

// formatPosition returns the index of the earliest format in preferred
// that appears in filetypes, or len(preferred) if none match (sorting
// those candidates last).
func formatPosition(filetypes []string, preferred []string) int {
	for pos, want := range preferred {
		for _, have := range filetypes {
			if have == want {
				return pos
			}
		}
	}
	return len(preferred)
}

// Rank orders items best-first by: format-preference position (earlier
// preferred-format match wins), then observed size (larger wins), then
// input order for any remaining tie. It does not mutate items; it returns
// a freshly ordered slice of indices into items.
func Rank(items []Candidate, preferredFiletypes []string) []int {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	pos := make([]int, len(items))
	for i, it := range items {
		pos[i] = formatPosition(it.Filetypes, preferredFiletypes)
	}

	// Stable insertion sort keyed on (pos asc, size desc), falling back to
	// original input order -- sort.SliceStable would also work, but an
	// explicit stable sort keeps the less-function trivial to audit
	// against the two-key, input-order-tiebreak rule in the data model.
	for i := 1; i < len(idx); i++ {
		j := i
		for j > 0 && less(idx[j], idx[j-1], pos, items) {
			idx[j], idx[j-1] = idx[j-1], idx[j]
			j--
		}
	}
	return idx
}

func less(a, b int, pos []int, items []Candidate) bool {
	if pos[a] != pos[b] {
		return pos[a] < pos[b]
	}
	if items[a].ObservedSize != items[b].ObservedSize {
		return items[a].ObservedSize > items[b].ObservedSize
	}
	return false
}

// Best returns the index of the top-ranked item, or -1 if items is empty.
func Best(items []Candidate, preferredFiletypes []string) int {
	order := Rank(items, preferredFiletypes)
	if len(order) == 0 {
		return -1
	}
	return order[0]
}
