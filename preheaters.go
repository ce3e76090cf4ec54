package percolate

import (
	"fmt"

	h3 "github.com/uber/h3-go/v4"
)

// ClauseExpander enriches an incoming document's synthetic clause with
// extra term literals so that an equality-only posting-list index can
// hit non-equality atoms (Prefix, Ordered, H3Inside, LatLngWithin).
// Must be a total function: it always returns a (possibly unchanged)
// clause, never fails.
type ClauseExpander func(*Clause) *Clause

// PreHeater is identified by ID for deduplication across the whole
// percolator; MustFilter is true when its expansion is inexact and
// candidates it helps surface must be re-verified.
type PreHeater struct {
	ID         string
	Expand     ClauseExpander
	MustFilter bool
}

// prefixFieldKey names the synthetic field used to index/expand a
// prefix bucket of size k over the original field.
func prefixFieldKey(k int, field string) string {
	return fmt.Sprintf("__PREFIX%d__%s", k, field)
}

func orderedFieldKey(field string) string {
	return "__ORD__" + field
}

func h3FieldKey(res int, field string) string {
	return fmt.Sprintf("__H3IN_R%d__%s", res, field)
}

func latLngFieldKey(res int, field string) string {
	return fmt.Sprintf("__LLWITHIN_R%d__%s", res, field)
}

// prefixBucket chooses the smallest configured prefix size >= len(s);
// if none is large enough, the largest configured size; if that is
// still smaller than s, s's own length. This is spec.md's documented
// choice among the two plausible bucket-selection strategies (§9).
func prefixBucket(sizes []int, prefixLen int) int {
	best := -1
	for _, sz := range sizes {
		if sz >= prefixLen && (best == -1 || sz < best) {
			best = sz
		}
	}
	if best != -1 {
		return best
	}
	largest := 0
	for _, sz := range sizes {
		if sz > largest {
			largest = sz
		}
	}
	if largest < prefixLen {
		return prefixLen
	}
	return largest
}

// percolateDocFieldValues returns the (field, value) pairs a literal
// contributes to its query's synthetic indexing document. Only
// literals reachable via equality lookups produce pairs here; every
// non-exact literal kind also gets a PreHeater (see preheaterFor) that
// lets the equality index be hit from the document side.
func percolateDocFieldValues(lit LitQuery, conf *PercolatorConfig) []FieldValue {
	switch lit.Kind {
	case KindTerm:
		return []FieldValue{{Field: lit.Field, Value: lit.Value}}
	case KindPrefix:
		k := prefixBucket(conf.PrefixSizes, len(lit.Value))
		return []FieldValue{{Field: prefixFieldKey(k, lit.Field), Value: lit.Value}}
	case KindOrdered:
		return []FieldValue{{Field: orderedFieldKey(lit.Field), Value: "*"}}
	case KindH3Inside:
		res := int(lit.Cell.Resolution())
		return []FieldValue{{Field: h3FieldKey(res, lit.Field), Value: lit.Cell.String()}}
	case KindLatLngWithin:
		res := resolutionWithinK(float64(lit.RadiusM), defaultTargetK)
		cells := diskCovering(lit.Center, float64(lit.RadiusM), res)
		out := make([]FieldValue, 0, len(cells))
		for _, c := range cells {
			out = append(out, FieldValue{Field: latLngFieldKey(res, lit.Field), Value: c.String()})
		}
		return out
	default:
		return nil
	}
}

// preheaterFor returns the PreHeater a literal requires, or nil for
// Term (exact equality needs no expansion).
func preheaterFor(lit LitQuery, conf *PercolatorConfig) *PreHeater {
	switch lit.Kind {
	case KindTerm:
		return nil
	case KindPrefix:
		k := prefixBucket(conf.PrefixSizes, len(lit.Value))
		id := fmt.Sprintf("prefix-len-%d", k)
		return &PreHeater{ID: id, MustFilter: true, Expand: prefixExpander(k)}
	case KindOrdered:
		return &PreHeater{ID: "ord-numeric", MustFilter: true, Expand: orderedExpander()}
	case KindH3Inside:
		res := int(lit.Cell.Resolution())
		id := fmt.Sprintf("h3in-res-%d", res)
		return &PreHeater{ID: id, MustFilter: true, Expand: h3Expander(res)}
	case KindLatLngWithin:
		res := resolutionWithinK(float64(lit.RadiusM), defaultTargetK)
		id := fmt.Sprintf("llwithin-res-%d", res)
		return &PreHeater{ID: id, MustFilter: true, Expand: latLngExpander(res)}
	default:
		return nil
	}
}

// prefixExpander adds, for every value, a literal on each of its
// leading substrings of at most k characters under the bucket's
// synthetic field, so that every prefix filed under bucket k (whose
// length is at most k) is hit by the values that start with it.
func prefixExpander(k int) ClauseExpander {
	return func(c *Clause) *Clause {
		out := c.Clone()
		for _, lit := range c.Literals() {
			if lit.Negated || lit.Atom.Kind != KindTerm {
				continue
			}
			v := lit.Atom.Value
			key := prefixFieldKey(k, lit.Atom.Field)
			for j := 0; j <= k && j <= len(v); j++ {
				out.Add(NewLiteral(false, LitQuery{Kind: KindTerm, Field: key, Value: v[:j]}))
			}
		}
		return out
	}
}

// orderedExpander adds a sentinel literal for every field whose value
// parses as an integer, letting any Ordered atom on that field become
// a candidate (exactness is recovered by must_filter verification).
func orderedExpander() ClauseExpander {
	return func(c *Clause) *Clause {
		out := c.Clone()
		for _, lit := range c.Literals() {
			if lit.Negated || lit.Atom.Kind != KindTerm {
				continue
			}
			if _, ok := parseOrderedPivot(lit.Atom.Value); ok {
				out.Add(NewLiteral(false, Term(orderedFieldKey(lit.Atom.Field), "*")))
			}
		}
		return out
	}
}

// h3Expander adds an ancestor-cell literal at res for every value that
// parses as an H3 cell at res or finer.
func h3Expander(res int) ClauseExpander {
	return func(c *Clause) *Clause {
		out := c.Clone()
		for _, lit := range c.Literals() {
			if lit.Negated || lit.Atom.Kind != KindTerm {
				continue
			}
			cell, err := h3.IndexFromString(lit.Atom.Value)
			if err != nil {
				continue
			}
			if int(cell.Resolution()) < res {
				continue
			}
			ancestor, err := cell.Parent(res)
			if err != nil {
				continue
			}
			out.Add(NewLiteral(false, Term(h3FieldKey(res, lit.Atom.Field), ancestor.String())))
		}
		return out
	}
}

// latLngExpander adds a covering-cell literal at res for every value
// that parses as "lat,lng".
func latLngExpander(res int) ClauseExpander {
	return func(c *Clause) *Clause {
		out := c.Clone()
		for _, lit := range c.Literals() {
			if lit.Negated || lit.Atom.Kind != KindTerm {
				continue
			}
			ll, ok := parseLatLng(lit.Atom.Value)
			if !ok {
				continue
			}
			cell, err := h3.LatLngToCell(ll, res)
			if err != nil {
				continue
			}
			out.Add(NewLiteral(false, Term(latLngFieldKey(res, lit.Atom.Field), cell.String())))
		}
		return out
	}
}
