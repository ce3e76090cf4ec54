package percolate

import (
	"sort"
	"strings"

	h3 "github.com/uber/h3-go/v4"
)

// Clause is an unordered multiset of Literals, interpreted as their
// disjunction. Cleanse() removes duplicate literals.
type Clause struct {
	literals []Literal
}

// NewClause builds a clause from literals.
func NewClause(lits ...Literal) *Clause {
	return &Clause{literals: append([]Literal(nil), lits...)}
}

// Literals returns the clause's literals in insertion order.
func (c *Clause) Literals() []Literal {
	return c.literals
}

// Add appends a literal to the clause.
func (c *Clause) Add(l Literal) {
	c.literals = append(c.literals, l)
}

// Clone returns an independent copy.
func (c *Clause) Clone() *Clause {
	return &Clause{literals: append([]Literal(nil), c.literals...)}
}

// Cost is the sum of the clause's literals' costs.
func (c *Clause) Cost() int {
	total := 0
	for _, l := range c.literals {
		total += l.Cost()
	}
	return total
}

// HasNegation reports whether any literal in the clause is negated.
func (c *Clause) HasNegation() bool {
	for _, l := range c.literals {
		if l.Negated {
			return true
		}
	}
	return false
}

// Cleanse returns a copy with duplicate literals removed, first-seen
// order preserved.
func (c *Clause) Cleanse() *Clause {
	seen := make(map[Literal]bool, len(c.literals))
	out := &Clause{}
	for _, l := range c.literals {
		if !seen[l] {
			seen[l] = true
			out.literals = append(out.literals, l)
		}
	}
	return out
}

// Matches reports whether at least one literal of the clause is true
// of d (the clause disjunction).
func (c *Clause) Matches(d *Document) bool {
	for _, l := range c.literals {
		if l.Matches(d) {
			return true
		}
	}
	return false
}

// Negate applies De Morgan's law to the clause: NOT(l1 OR l2 OR ...)
// becomes the CNF AND(NOT l1, NOT l2, ...), one single-literal clause
// per negated literal.
func (c *Clause) Negate() *Query {
	clauses := make([]*Clause, len(c.literals))
	for i, l := range c.literals {
		clauses[i] = NewClause(l.Negate())
	}
	return &Query{clauses: clauses}
}

// sortedLiterals returns the clause's literals sorted by their
// deterministic comparator key, for canonical display.
func (c *Clause) sortedLiterals() []Literal {
	out := append([]Literal(nil), c.literals...)
	sort.Slice(out, func(i, j int) bool {
		fi, si := out[i].sortKey()
		fj, sj := out[j].sortKey()
		if fi != fj {
			return fi < fj
		}
		return si < sj
	})
	return out
}

// String renders "(OR l1 l2 …)" with literals sorted by their key.
func (c *Clause) String() string {
	lits := c.sortedLiterals()
	parts := make([]string, len(lits))
	for i, l := range lits {
		parts[i] = l.String()
	}
	return "(OR " + strings.Join(parts, " ") + ")"
}

// Query is an ordered list of Clauses, interpreted as their
// conjunction (CNF). An empty Query is the identity of conjunction:
// it matches every document — a deliberate design choice (spec §9),
// not an oversight.
type Query struct {
	clauses []*Clause
}

// NewQuery builds a CNF query from already-built clauses.
func NewQuery(clauses ...*Clause) *Query {
	return &Query{clauses: append([]*Clause(nil), clauses...)}
}

// fromLiteral builds a single-clause, single-literal query.
func fromLiteral(l Literal) *Query {
	return &Query{clauses: []*Clause{NewClause(l)}}
}

// TermQ constructs a single-literal equality query.
func TermQ(field, value string) *Query {
	return fromLiteral(NewLiteral(false, Term(field, value)))
}

// PrefixQ constructs a single-literal prefix query.
func PrefixQ(field, prefix string) *Query {
	return fromLiteral(NewLiteral(false, Prefix(field, prefix)))
}

// OrderedQ constructs a single-literal numeric comparison query.
func OrderedQ(field string, pivot int64, ord Ordering) *Query {
	return fromLiteral(NewLiteral(false, OrderedAtom(field, pivot, ord)))
}

// H3InsideQ constructs a single-literal geospatial containment query.
func H3InsideQ(field string, cell h3.Cell) *Query {
	return fromLiteral(NewLiteral(false, H3Inside(field, cell)))
}

// LatLngWithinQ constructs a single-literal geospatial radius query.
func LatLngWithinQ(field string, center h3.LatLng, radiusM uint64) *Query {
	return fromLiteral(NewLiteral(false, LatLngWithin(field, center, radiusM)))
}

// Clauses returns the query's clauses in order.
func (q *Query) Clauses() []*Clause {
	return q.clauses
}

// And flattens: the result's clauses are the concatenation of every
// input's clauses. And() with no arguments is the empty query, the
// identity of conjunction.
func And(qs ...*Query) *Query {
	out := &Query{}
	for _, q := range qs {
		out.clauses = append(out.clauses, q.clauses...)
	}
	return out
}

// Or distributes AND over OR via the Cartesian product of the
// operands' clauses: every combination of one clause per operand
// becomes a single new clause formed by concatenating their literals.
// Or() with no operands returns the disjunction identity: a single
// empty clause, which is unsatisfiable (the dual of And()'s empty,
// always-satisfiable query) — this is what makes Negate correct for
// the empty/all-matching query.
func Or(qs ...*Query) *Query {
	if len(qs) == 0 {
		return &Query{clauses: []*Clause{NewClause()}}
	}
	acc := qs[0]
	for _, q := range qs[1:] {
		acc = orPair(acc, q)
	}
	return acc
}

func orPair(a, b *Query) *Query {
	out := &Query{}
	for _, ca := range a.clauses {
		for _, cb := range b.clauses {
			merged := NewClause(append(append([]Literal(nil), ca.literals...), cb.literals...)...)
			out.clauses = append(out.clauses, merged)
		}
	}
	return out
}

// Negate applies De Morgan across the whole query: NOT(C1 AND C2 AND
// ...) becomes OR(NOT C1, NOT C2, ...), where NOT Ci is itself the
// small CNF Clause.Negate() produces. Double negation cancels because
// De Morgan is its own inverse under Matches.
func Negate(q *Query) *Query {
	negated := make([]*Query, len(q.clauses))
	for i, c := range q.clauses {
		negated[i] = c.Negate()
	}
	return Or(negated...)
}

// Cleanse de-duplicates literals within each clause. Clauses are not
// deduplicated against each other (not required for correctness).
func (q *Query) Cleanse() *Query {
	out := &Query{clauses: make([]*Clause, len(q.clauses))}
	for i, c := range q.clauses {
		out.clauses[i] = c.Cleanse()
	}
	return out
}

// Matches reports whether every clause has at least one true literal.
func (q *Query) Matches(d *Document) bool {
	for _, c := range q.clauses {
		if !c.Matches(d) {
			return false
		}
	}
	return true
}

// String renders the canonical "(AND (OR l1 l2) (OR l3))" form.
// Literals within each clause are sorted by key; negated literals are
// prefixed "~"; prefix values are suffixed "*". Round-trips through
// Parse modulo literal ordering.
func (q *Query) String() string {
	parts := make([]string, len(q.clauses))
	for i, c := range q.clauses {
		parts[i] = c.String()
	}
	return "(AND " + strings.Join(parts, " ") + ")"
}
