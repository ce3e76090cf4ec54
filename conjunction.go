package percolate

// ConjunctionIterator intersects N sorted posting lists by watermark
// advance (leap-frogging each iterator forward to the current
// maximum) rather than building and discarding intermediate roaring
// bitmaps. It is a standalone helper: neither percolatorctl nor the
// percolator core calls it; the core uses IntersectAll on whole
// bitmaps instead.
type ConjunctionIterator struct {
	lists [][]uint32
	pos   []int
}

// NewConjunctionIterator builds an iterator over postings, each of
// which must already be sorted ascending (Bitmap.Iterator satisfies
// this). An empty postings slice yields nothing.
func NewConjunctionIterator(postings ...[]uint32) *ConjunctionIterator {
	lists := make([][]uint32, len(postings))
	copy(lists, postings)
	return &ConjunctionIterator{
		lists: lists,
		pos:   make([]int, len(lists)),
	}
}

// Next advances the watermark: each list's cursor is moved forward to
// its first id not below the current maximum seen across all lists,
// until every cursor points at the same id, which is then returned. Returns (0, false)
// once any list is exhausted.
func (it *ConjunctionIterator) Next() (uint32, bool) {
	if len(it.lists) == 0 {
		return 0, false
	}
	for {
		var max uint32
		first := true
		for i, l := range it.lists {
			if it.pos[i] >= len(l) {
				return 0, false
			}
			v := l[it.pos[i]]
			if first || v > max {
				max = v
				first = false
			}
		}

		allMatch := true
		for i, l := range it.lists {
			for it.pos[i] < len(l) && l[it.pos[i]] < max {
				it.pos[i]++
			}
			if it.pos[i] >= len(l) {
				return 0, false
			}
			if l[it.pos[i]] != max {
				allMatch = false
			}
		}
		if allMatch {
			for i := range it.lists {
				it.pos[i]++
			}
			return max, true
		}
	}
}

// Collect drains the iterator into a slice, ascending.
func (it *ConjunctionIterator) Collect() []uint32 {
	var out []uint32
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
