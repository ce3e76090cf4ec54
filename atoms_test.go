package percolate

import (
	"testing"

	h3 "github.com/uber/h3-go/v4"
)

func TestTermMatches(t *testing.T) {
	d := NewDocument().With("A", "a").With("A", "b")

	lit := NewLiteral(false, Term("A", "a"))
	if !lit.Matches(d) {
		t.Errorf("expected A=a to match")
	}

	lit = NewLiteral(false, Term("A", "z"))
	if lit.Matches(d) {
		t.Errorf("expected A=z not to match")
	}
}

func TestNegatedLiteralMatches(t *testing.T) {
	d := NewDocument().With("A", "a")

	lit := NewLiteral(true, Term("A", "a"))
	if lit.Matches(d) {
		t.Errorf("expected ~A=a not to match when A=a present")
	}

	lit = NewLiteral(true, Term("A", "z"))
	if !lit.Matches(d) {
		t.Errorf("expected ~A=z to match when A=z absent")
	}
}

func TestPrefixMatches(t *testing.T) {
	d := NewDocument().With("name", "hello world")
	lit := NewLiteral(false, Prefix("name", "hel"))
	if !lit.Matches(d) {
		t.Errorf("expected prefix match")
	}
	lit = NewLiteral(false, Prefix("name", "wor"))
	if lit.Matches(d) {
		t.Errorf("expected no prefix match (not a prefix of any value)")
	}
}

// Scenario 4 of spec.md §8: W > 10 matches "11" but not "10", "abc" or "-3".
func TestOrderedMatches(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"11", true},
		{"10", false},
		{"abc", false},
		{"-3", false},
	}
	for _, c := range cases {
		d := NewDocument().With("W", c.value)
		lit := NewLiteral(false, OrderedAtom("W", 10, OpGT))
		if got := lit.Matches(d); got != c.want {
			t.Errorf("W=%q > 10: got %v, want %v", c.value, got, c.want)
		}
	}
}

func TestOrderedOverflowNeverMatches(t *testing.T) {
	d := NewDocument().With("W", "99999999999999999999999999")
	lit := NewLiteral(false, OrderedAtom("W", 0, OpGT))
	if lit.Matches(d) {
		t.Errorf("expected overflowing value never to match")
	}
}

// Scenario 5 of spec.md §8: a descendant cell matches H3Inside of its
// ancestor; a coarser cell and an unparseable value do not.
func TestH3InsideMatches(t *testing.T) {
	parent, err := h3.IndexFromString("871f09b20ffffff")
	if err != nil {
		t.Fatalf("parsing fixture cell: %v", err)
	}

	children, err := parent.Children(parent.Resolution() + 1)
	if err != nil || len(children) == 0 {
		t.Fatalf("computing a descendant cell: %v", err)
	}
	descendant := children[0]

	d := NewDocument().With("position", descendant.String())
	lit := NewLiteral(false, H3Inside("position", parent))
	if !lit.Matches(d) {
		t.Errorf("expected descendant cell to match its ancestor")
	}

	// A coarser cell (the ancestor's own ancestor) never matches.
	coarser, err := parent.Parent(parent.Resolution() - 1)
	if err == nil {
		d2 := NewDocument().With("position", coarser.String())
		if lit.Matches(d2) {
			t.Errorf("expected coarser cell not to match")
		}
	}

	d3 := NewDocument().With("position", "not-a-cell")
	if lit.Matches(d3) {
		t.Errorf("expected unparseable value not to match")
	}
}

func TestLatLngWithinMatches(t *testing.T) {
	center := h3.LatLng{Lat: 48.864716, Lng: 2.349014}
	lit := NewLiteral(false, LatLngWithin("loc", center, 1000))

	near := NewDocument().With("loc", "48.864716,2.349014")
	if !lit.Matches(near) {
		t.Errorf("expected exact center point to match")
	}

	far := NewDocument().With("loc", "0,0")
	if lit.Matches(far) {
		t.Errorf("expected antipodal-ish point not to match")
	}

	bad := NewDocument().With("loc", "NaN,0")
	if lit.Matches(bad) {
		t.Errorf("expected unparseable point not to match")
	}
}

func TestAtomCost(t *testing.T) {
	if Term("a", "b").Cost() != 1 {
		t.Errorf("expected Term cost 1")
	}
	if Prefix("a", "b").Cost() != 5 {
		t.Errorf("expected Prefix cost 5")
	}
	if OrderedAtom("a", 1, OpEQ).Cost() != 10 {
		t.Errorf("expected Ordered cost 10")
	}
}
