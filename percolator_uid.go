package percolate

import (
	"iter"

	"github.com/vishalkuo/bimap"
)

// PercolatorUid wraps a PercolatorCore behind a caller-chosen key type
// T, letting callers address queries by their own identifiers (a
// database primary key, a UUID) instead of the internal Qid.
type PercolatorUid[T comparable] struct {
	core    *PercolatorCore
	qidToID *bimap.BiMap[Qid, T]
}

// PercolatorBuilder configures a PercolatorUid before construction.
type PercolatorBuilder[T comparable] struct {
	opts []Option
}

// NewPercolatorBuilder starts a builder with default configuration.
func NewPercolatorBuilder[T comparable]() *PercolatorBuilder[T] {
	return &PercolatorBuilder[T]{}
}

// NClauseMatchers sets the number of clause matchers.
func (b *PercolatorBuilder[T]) NClauseMatchers(n int) *PercolatorBuilder[T] {
	b.opts = append(b.opts, WithNClauseMatchers(n))
	return b
}

// PrefixSizes sets the allowed prefix bucket sizes.
func (b *PercolatorBuilder[T]) PrefixSizes(sizes []int) *PercolatorBuilder[T] {
	b.opts = append(b.opts, WithPrefixSizes(sizes))
	return b
}

// Build constructs the PercolatorUid.
func (b *PercolatorBuilder[T]) Build() *PercolatorUid[T] {
	bm := bimap.NewBiMap[Qid, T]()
	return &PercolatorUid[T]{
		core:    NewPercolatorCore(b.opts...),
		qidToID: bm,
	}
}

// AddQuery indexes q under uid, panicking on capacity error.
func (p *PercolatorUid[T]) AddQuery(q *Query, uid T) Qid {
	qid, err := p.SafeAddQuery(q, uid)
	if err != nil {
		panic(err)
	}
	return qid
}

// SafeAddQuery indexes q under uid. If uid already names a live
// query, the old binding is removed first: the new query overwrites
// it, taking a fresh Qid.
func (p *PercolatorUid[T]) SafeAddQuery(q *Query, uid T) (Qid, error) {
	if oldQid, ok := p.qidToID.GetInverse(uid); ok {
		p.core.RemoveQid(oldQid)
		p.qidToID.Delete(oldQid)
	}
	qid, err := p.core.SafeAddQuery(q)
	if err != nil {
		return 0, err
	}
	p.qidToID.Insert(qid, uid)
	return qid, nil
}

// SafeIndexQueryWithUid is an alias for SafeAddQuery matching the
// original API's naming.
func (p *PercolatorUid[T]) SafeIndexQueryWithUid(q *Query, uid T) (Qid, error) {
	return p.SafeAddQuery(q, uid)
}

// RemoveUid tombstones the query bound to uid, if any. Returns false
// if uid is not currently bound.
func (p *PercolatorUid[T]) RemoveUid(uid T) bool {
	qid, ok := p.qidToID.GetInverse(uid)
	if !ok {
		return false
	}
	p.core.RemoveQid(qid)
	p.qidToID.Delete(qid)
	return true
}

// RemoveQid tombstones qid directly.
func (p *PercolatorUid[T]) RemoveQid(qid Qid) bool {
	if p.core.RemoveQid(qid) {
		p.qidToID.Delete(qid)
		return true
	}
	return false
}

// GetQuery returns the stored query for qid, panicking if unknown.
func (p *PercolatorUid[T]) GetQuery(qid Qid) *Query {
	return p.core.GetQuery(qid)
}

// SafeGetQuery returns the stored query for qid, if live.
func (p *PercolatorUid[T]) SafeGetQuery(qid Qid) (*Query, bool) {
	return p.core.SafeGetQuery(qid)
}

// Percolate returns a lazy, ascending-Qid-ordered sequence of the
// caller-chosen uids of every live query that matches d.
func (p *PercolatorUid[T]) Percolate(d *Document) iter.Seq[T] {
	return func(yield func(T) bool) {
		for qid := range p.core.Percolate(d) {
			uid, ok := p.qidToID.Get(qid)
			if !ok {
				continue
			}
			if !yield(uid) {
				return
			}
		}
	}
}

// Stats returns the underlying percolator's running counters.
func (p *PercolatorUid[T]) Stats() *PercolatorStats {
	return p.core.Stats()
}
