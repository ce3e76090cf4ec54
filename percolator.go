package percolate

import (
	"iter"
	"log/slog"
	"math"
	"sort"
)

// Qid is the stable internal identifier of an indexed query.
type Qid = uint32

const maxQid = math.MaxUint32

// MatchItem is the per-clause indexing record: the synthetic document
// a clause becomes in one clause matcher, the preheaters it requires,
// its cost (used only to choose matcher placement), and whether its
// index hits need full verification.
type MatchItem struct {
	Doc        *Document
	Preheaters []*PreHeater
	Cost       int
	MustFilter bool
}

// matchAllMatchItem is the padding item used both for negated clauses
// (we cannot index a complement) and for queries with fewer clauses
// than matchers.
func matchAllMatchItem() MatchItem {
	return MatchItem{Doc: MatchAllDocument(), Cost: 0}
}

// negatedClauseMatchItem is the very-costly, always-must-filter item
// substituted for any clause containing a negated literal: the
// positive complement cannot be indexed, so the candidate set must
// fall back to full verification.
func negatedClauseMatchItem() MatchItem {
	mi := matchAllMatchItem()
	mi.Cost = 10000
	mi.MustFilter = true
	return mi
}

// clauseToMatchItem transforms one clause of a query into its
// indexing record, per spec.md §4.6.2 step 2.
func clauseToMatchItem(c *Clause, conf *PercolatorConfig) (MatchItem, error) {
	if c.HasNegation() {
		return negatedClauseMatchItem(), nil
	}

	doc := NewDocument()
	var preheaters []*PreHeater
	for _, lit := range c.Literals() {
		if lit.Atom.Kind == KindPrefix && len(lit.Atom.Value) > maxQid {
			return MatchItem{}, newCapacityError(ErrPrefixTooLong, len(lit.Atom.Value))
		}
		for _, fv := range percolateDocFieldValues(lit.Atom, conf) {
			doc.With(fv.Field, fv.Value)
		}
		if ph := preheaterFor(lit.Atom, conf); ph != nil {
			preheaters = append(preheaters, ph)
		}
	}
	return MatchItem{Doc: doc, Preheaters: preheaters, Cost: c.Cost(), MustFilter: false}, nil
}

// PercolatorCore is the heart of the engine: a corpus of stored
// queries, each represented by one synthetic document per clause
// matcher, matched against incoming documents by bitmap intersection
// plus a verification pass for inexact hits.
type PercolatorCore struct {
	config       *PercolatorConfig
	queries      []*Query
	tombstones   *Bitmap
	matchers     []*InvertedIndex
	preheaters   []*PreHeater
	preheaterIDs map[string]bool
	mustFilter   *Bitmap
	stats        *PercolatorStats
}

// NewPercolatorCore constructs an empty percolator with n_clause_matchers
// parallel clause matchers, immutable after construction.
func NewPercolatorCore(opts ...Option) *PercolatorCore {
	conf := newPercolatorConfig(opts...)
	matchers := make([]*InvertedIndex, conf.NClauseMatchers)
	for i := range matchers {
		matchers[i] = NewInvertedIndex()
	}
	slog.Info("percolator core constructed", slog.Int("n_clause_matchers", conf.NClauseMatchers))
	return &PercolatorCore{
		config:       conf,
		tombstones:   NewBitmap(),
		matchers:     matchers,
		preheaterIDs: make(map[string]bool),
		mustFilter:   NewBitmap(),
		stats:        NewPercolatorStats(),
	}
}

// AddQuery indexes q and returns its Qid, panicking on capacity error.
// Use SafeAddQuery to handle the error instead.
func (p *PercolatorCore) AddQuery(q *Query) Qid {
	qid, err := p.SafeAddQuery(q)
	if err != nil {
		panic(err)
	}
	return qid
}

// SafeAddQuery indexes q: each clause becomes a MatchItem, the
// cheapest n_clause_matchers of them (padded with match-all as
// needed) are indexed one per matcher, their preheaters are
// registered, and qid is flagged in must_filter whenever index hits
// alone cannot be trusted. Returns the new Qid.
func (p *PercolatorCore) SafeAddQuery(q *Query) (Qid, error) {
	if len(p.queries) >= maxQid {
		return 0, newCapacityError(ErrTooManyQueries, len(p.queries))
	}
	qid := Qid(len(p.queries))

	clauses := q.Clauses()
	if len(clauses) > maxQid {
		return 0, newCapacityError(ErrTooManyClauses, len(clauses))
	}

	mis := make([]MatchItem, len(clauses))
	for i, c := range clauses {
		mi, err := clauseToMatchItem(c, p.config)
		if err != nil {
			return 0, err
		}
		mis[i] = mi
	}

	n := p.config.NClauseMatchers
	mustFilterQuery := len(mis) > n

	sort.SliceStable(mis, func(i, j int) bool { return mis[i].Cost < mis[j].Cost })
	if len(mis) > n {
		mis = mis[:n]
	}
	for len(mis) < n {
		mis = append(mis, matchAllMatchItem())
	}

	preheatersAttached := 0
	for i, mi := range mis {
		docID := p.matchers[i].IndexDocument(mi.Doc)
		if docID != qid {
			panic("percolate: clause matcher invariant broken, docID != qid")
		}
		if mi.MustFilter {
			mustFilterQuery = true
		}
		for _, ph := range mi.Preheaters {
			preheatersAttached++
			if ph.MustFilter {
				mustFilterQuery = true
			}
			if !p.preheaterIDs[ph.ID] {
				if len(p.preheaters) >= maxQid {
					return 0, newCapacityError(ErrTooManyPreheaters, len(p.preheaters))
				}
				p.preheaterIDs[ph.ID] = true
				p.preheaters = append(p.preheaters, ph)
			}
		}
	}

	if mustFilterQuery {
		p.mustFilter.Insert(qid)
	}

	p.queries = append(p.queries, q)
	p.stats.recordQuery(len(clauses), preheatersAttached)
	p.stats.setPreheaterTotal(len(p.preheaters))
	for _, lit := range flattenLiterals(clauses) {
		if lit.Atom.Kind == KindPrefix {
			p.stats.recordPrefixLength(len(lit.Atom.Value))
		}
	}

	slog.Info("query indexed", slog.Any("qid", qid), slog.Int("clauses", len(clauses)), slog.Bool("must_filter", mustFilterQuery))
	return qid, nil
}

func flattenLiterals(clauses []*Clause) []Literal {
	var out []Literal
	for _, c := range clauses {
		out = append(out, c.Literals()...)
	}
	return out
}

// RemoveQid tombstones qid: subsequent Percolate calls never yield it
// again. Returns false if qid was already removed (a no-op). Posting
// lists are left intact; reclamation is out of scope.
func (p *PercolatorCore) RemoveQid(qid Qid) bool {
	if p.tombstones.Contains(qid) {
		return false
	}
	p.tombstones.Insert(qid)
	for _, m := range p.matchers {
		m.Unindex(qid)
	}
	p.mustFilter.Remove(qid)
	slog.Info("query removed", slog.Any("qid", qid))
	return true
}

// GetQuery returns the stored query text for qid, panicking if unknown.
func (p *PercolatorCore) GetQuery(qid Qid) *Query {
	q, ok := p.SafeGetQuery(qid)
	if !ok {
		panic("percolate: unknown qid")
	}
	return q
}

// SafeGetQuery returns the stored query text for qid, if live.
func (p *PercolatorCore) SafeGetQuery(qid Qid) (*Query, bool) {
	if int(qid) >= len(p.queries) || p.tombstones.Contains(qid) {
		return nil, false
	}
	return p.queries[qid], true
}

// buildSyntheticClause turns a document into the synthetic clause
// percolated against every clause matcher: one literal per (field,
// value) pair, plus the match-all literal.
func buildSyntheticClause(d *Document) *Clause {
	c := NewClause()
	for _, fv := range d.FieldValues() {
		c.Add(NewLiteral(false, Term(fv.Field, fv.Value)))
	}
	c.Add(NewLiteral(false, Term(matchAllField, matchAllValue)))
	return c
}

// Percolate returns a lazy, ascending-Qid sequence of every live query
// that matches d. Preheaters expand the document's synthetic clause
// before every matcher is consulted; the N per-matcher bitmaps are
// intersected (short-circuiting on empty), tombstones are subtracted,
// and must_filter candidates are re-verified with the full Query
// predicate.
func (p *PercolatorCore) Percolate(d *Document) iter.Seq[Qid] {
	return func(yield func(Qid) bool) {
		clause := buildSyntheticClause(d)
		for _, ph := range p.preheaters {
			clause = ph.Expand(clause)
		}

		bitmaps := make([]*Bitmap, len(p.matchers))
		for i, m := range p.matchers {
			bm := NewBitmap()
			for _, lit := range clause.Literals() {
				bm = Union(bm, m.DocsFrom(lit.Atom.Field, lit.Atom.Value))
			}
			bitmaps[i] = bm
		}

		candidates := IntersectAll(bitmaps...).AndNot(p.tombstones)

		slog.Debug("percolate", slog.Int("candidates", candidates.Len()))

		for _, qid := range candidates.Iterator() {
			if p.mustFilter.Contains(qid) {
				if !p.queries[qid].Matches(d) {
					continue
				}
			}
			if !yield(qid) {
				return
			}
		}
	}
}

// Stats returns the percolator's running counters.
func (p *PercolatorCore) Stats() *PercolatorStats {
	return p.stats
}
