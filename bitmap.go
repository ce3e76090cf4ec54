// Package percolate implements a reverse-search (percolator) engine:
// a corpus of stored boolean queries matched against one document at
// a time, the inverse of a conventional search index.
package percolate

import (
	"github.com/RoaringBitmap/roaring"
)

// Bitmap is a compressed, sorted set of 32-bit document/query ids,
// backed by RoaringBitmap. Every clause matcher and the percolator's
// tombstone/must_filter sets are one of these.
type Bitmap struct {
	bits *roaring.Bitmap
}

// NewBitmap returns an empty bitmap.
func NewBitmap() *Bitmap {
	return &Bitmap{bits: roaring.New()}
}

// BitmapOf returns a bitmap containing the given ids.
func BitmapOf(ids ...uint32) *Bitmap {
	b := NewBitmap()
	for _, id := range ids {
		b.Insert(id)
	}
	return b
}

// Insert adds id to the set.
func (b *Bitmap) Insert(id uint32) {
	b.bits.Add(id)
}

// Remove deletes id from the set. A no-op if absent.
func (b *Bitmap) Remove(id uint32) {
	b.bits.Remove(id)
}

// Contains reports whether id is a member.
func (b *Bitmap) Contains(id uint32) bool {
	return b.bits.Contains(id)
}

// IsEmpty reports whether the set has no members.
func (b *Bitmap) IsEmpty() bool {
	return b.bits.IsEmpty()
}

// Len returns the cardinality of the set.
func (b *Bitmap) Len() int {
	return int(b.bits.GetCardinality())
}

// Iterator returns the members in ascending order.
func (b *Bitmap) Iterator() []uint32 {
	return b.bits.ToArray()
}

// Clone returns an independent copy.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{bits: b.bits.Clone()}
}

// Union returns the union of a and b (identity: empty ∪ x == x).
func Union(a, b *Bitmap) *Bitmap {
	return &Bitmap{bits: roaring.Or(a.bits, b.bits)}
}

// Intersect returns the intersection of a and b (an empty operand
// yields an empty result).
func Intersect(a, b *Bitmap) *Bitmap {
	return &Bitmap{bits: roaring.And(a.bits, b.bits)}
}

// UnionAll unions every bitmap given, short-circuiting on nothing
// (union has no empty shortcut, every operand must be visited).
func UnionAll(bs ...*Bitmap) *Bitmap {
	out := NewBitmap()
	for _, b := range bs {
		out.bits.Or(b.bits)
	}
	return out
}

// IntersectAll intersects every bitmap given, stopping as soon as the
// running result is empty — the short-circuit n-ary intersection
// required by spec.md §4.1 / §4.6.4 step 4.
func IntersectAll(bs ...*Bitmap) *Bitmap {
	if len(bs) == 0 {
		return NewBitmap()
	}
	result := bs[0].Clone()
	for _, b := range bs[1:] {
		if result.IsEmpty() {
			break
		}
		result.bits.And(b.bits)
	}
	return result
}

// AndNot returns b with every member of other removed (used to subtract
// tombstones from candidate sets).
func (b *Bitmap) AndNot(other *Bitmap) *Bitmap {
	return &Bitmap{bits: roaring.AndNot(b.bits, other.bits)}
}
