package percolate

import (
	"fmt"
	"strconv"
	"strings"

	h3 "github.com/uber/h3-go/v4"
)

// Ordering is the comparison operator carried by an Ordered atom.
type Ordering int

const (
	OpLT Ordering = iota
	OpLE
	OpEQ
	OpGE
	OpGT
)

func (o Ordering) String() string {
	switch o {
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpEQ:
		return "="
	case OpGE:
		return ">="
	case OpGT:
		return ">"
	default:
		return "?"
	}
}

func (o Ordering) compare(a, b int64) bool {
	switch o {
	case OpLT:
		return a < b
	case OpLE:
		return a <= b
	case OpEQ:
		return a == b
	case OpGE:
		return a >= b
	case OpGT:
		return a > b
	default:
		return false
	}
}

// Kind tags the variant a LitQuery carries, replacing dynamic casts
// with a single dispatcher switch — preserves hashing/equality for
// clause deduplication, per spec.md §9's design note.
type Kind int

const (
	KindTerm Kind = iota
	KindPrefix
	KindOrdered
	KindH3Inside
	KindLatLngWithin
)

// atomCost is the per-kind cost used to order clauses for clause
// matcher placement (spec.md §3).
var atomCost = map[Kind]int{
	KindTerm:         1,
	KindPrefix:       5,
	KindOrdered:      10,
	KindH3Inside:     10,
	KindLatLngWithin: 10,
}

// LitQuery is the tagged variant of a single atom: Term, Prefix,
// Ordered, H3Inside or LatLngWithin. Only the fields relevant to Kind
// are meaningful at any one time.
type LitQuery struct {
	Kind  Kind
	Field string

	// Term: Value holds the exact value. Prefix: Value holds the prefix.
	Value string

	// Ordered
	Pivot int64
	Ord   Ordering

	// H3Inside
	Cell h3.Cell

	// LatLngWithin
	Center  h3.LatLng
	RadiusM uint64
}

// Term constructs an equality atom.
func Term(field, value string) LitQuery {
	return LitQuery{Kind: KindTerm, Field: Intern(field), Value: Intern(value)}
}

// Prefix constructs a starts-with atom.
func Prefix(field, prefix string) LitQuery {
	return LitQuery{Kind: KindPrefix, Field: Intern(field), Value: Intern(prefix)}
}

// OrderedAtom constructs a numeric comparison atom.
func OrderedAtom(field string, pivot int64, ord Ordering) LitQuery {
	return LitQuery{Kind: KindOrdered, Field: Intern(field), Pivot: pivot, Ord: ord}
}

// H3Inside constructs a geospatial containment atom.
func H3Inside(field string, cell h3.Cell) LitQuery {
	return LitQuery{Kind: KindH3Inside, Field: Intern(field), Cell: cell}
}

// LatLngWithin constructs a geospatial radius atom.
func LatLngWithin(field string, center h3.LatLng, radiusM uint64) LitQuery {
	return LitQuery{Kind: KindLatLngWithin, Field: Intern(field), Center: center, RadiusM: radiusM}
}

// Cost returns this atom's indexing cost.
func (a LitQuery) Cost() int {
	return atomCost[a.Kind]
}

// Matches reports whether any value of a.Field in d satisfies the atom.
func (a LitQuery) Matches(d *Document) bool {
	values := d.Values(a.Field)
	switch a.Kind {
	case KindTerm:
		for _, v := range values {
			if v == a.Value {
				return true
			}
		}
	case KindPrefix:
		for _, v := range values {
			if strings.HasPrefix(v, a.Value) {
				return true
			}
		}
	case KindOrdered:
		for _, v := range values {
			if iv, ok := parseOrderedPivot(v); ok {
				if a.Ord.compare(iv, a.Pivot) {
					return true
				}
			}
		}
	case KindH3Inside:
		targetRes := a.Cell.Resolution()
		for _, v := range values {
			cell, err := h3.IndexFromString(v)
			if err != nil {
				continue
			}
			if cell.Resolution() < targetRes {
				continue // coarser than C never matches
			}
			ancestor, err := cell.Parent(targetRes)
			if err != nil {
				continue
			}
			if ancestor == a.Cell {
				return true
			}
		}
	case KindLatLngWithin:
		for _, v := range values {
			ll, ok := parseLatLng(v)
			if !ok {
				continue
			}
			if greatCircleDistanceM(ll, a.Center) <= float64(a.RadiusM) {
				return true
			}
		}
	}
	return false
}

// parseOrderedPivot parses v as an int64 for Ordered comparisons.
// Non-numeric values and values that overflow int64 never match,
// matching the original's "over/underflow will NOT match" contract.
func parseOrderedPivot(v string) (int64, bool) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// sortKey returns the deterministic (field, secondary) comparator key
// used for literal ordering, canonical display and deduplication.
func (a LitQuery) sortKey() (string, string) {
	switch a.Kind {
	case KindTerm:
		return a.Field, a.Value
	case KindPrefix:
		return a.Field, a.Value
	case KindOrdered:
		return a.Field, fmt.Sprintf("%s%020d", a.Ord, a.Pivot)
	case KindH3Inside:
		return a.Field, a.Cell.String()
	case KindLatLngWithin:
		return a.Field, fmt.Sprintf("%.8f,%.8f,%d", a.Center.Lat, a.Center.Lng, a.RadiusM)
	default:
		return a.Field, ""
	}
}

// String renders the atom's textual form used inside a Literal's
// canonical Display, e.g. "field=value" or "field=prefix*".
func (a LitQuery) String() string {
	switch a.Kind {
	case KindTerm:
		return fmt.Sprintf("%s=%s", a.Field, a.Value)
	case KindPrefix:
		return fmt.Sprintf("%s=%s*", a.Field, a.Value)
	case KindOrdered:
		return fmt.Sprintf("%s%s%d", a.Field, a.Ord, a.Pivot)
	case KindH3Inside:
		return fmt.Sprintf("%s H3IN %s", a.Field, a.Cell.String())
	case KindLatLngWithin:
		return fmt.Sprintf("%s LLWITHIN %.6f,%.6f,%d", a.Field, a.Center.Lat, a.Center.Lng, a.RadiusM)
	default:
		return ""
	}
}

// Literal is a (possibly negated) atom, the unit a Clause is a
// disjunction of.
type Literal struct {
	Negated bool
	Atom    LitQuery
}

// NewLiteral constructs a literal.
func NewLiteral(negated bool, atom LitQuery) Literal {
	return Literal{Negated: negated, Atom: atom}
}

// Negate returns the negation of this literal (also a literal).
func (l Literal) Negate() Literal {
	return Literal{Negated: !l.Negated, Atom: l.Atom}
}

// Matches reports whether this literal is true of d.
func (l Literal) Matches(d *Document) bool {
	return l.Negated != l.Atom.Matches(d)
}

// Cost is the atom's indexing cost; negation doesn't change it.
func (l Literal) Cost() int {
	return l.Atom.Cost()
}

// sortKey orders literals by (field, secondary-key) deterministically.
func (l Literal) sortKey() (string, string) {
	return l.Atom.sortKey()
}

// String renders the canonical literal form: "~" prefix when negated.
func (l Literal) String() string {
	if l.Negated {
		return "~" + l.Atom.String()
	}
	return l.Atom.String()
}

// Equal reports structural equality, used by Clause.cleanse to dedup.
func (l Literal) Equal(other Literal) bool {
	return l == other
}
