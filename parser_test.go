package percolate

import "testing"

func TestParseSimpleTerm(t *testing.T) {
	q, err := ParseQuery("A:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := NewDocument().With("A", "a")
	if !q.Matches(d) {
		t.Errorf("expected A:a to match A=a")
	}
}

func TestParseAndOr(t *testing.T) {
	q, err := ParseQuery("A:a AND (B:b OR C:c)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	match := NewDocument().With("A", "a").With("C", "c")
	if !q.Matches(match) {
		t.Errorf("expected match")
	}

	noMatch := NewDocument().With("A", "a")
	if q.Matches(noMatch) {
		t.Errorf("expected no match")
	}
}

func TestParseNot(t *testing.T) {
	q, err := ParseQuery("NOT A:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Matches(NewDocument().With("A", "a")) {
		t.Errorf("expected NOT A:a not to match A=a")
	}
	if !q.Matches(NewDocument().With("A", "z")) {
		t.Errorf("expected NOT A:a to match A=z")
	}
}

func TestParseDoubleNot(t *testing.T) {
	q, err := ParseQuery("NOT NOT A:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Matches(NewDocument().With("A", "a")) {
		t.Errorf("expected double negation to cancel")
	}
}

func TestParsePrefixLowering(t *testing.T) {
	q, err := ParseQuery("name:hel*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit := q.Clauses()[0].Literals()[0]
	if lit.Atom.Kind != KindPrefix {
		t.Errorf("expected trailing * to lower to Prefix, got kind %v", lit.Atom.Kind)
	}
}

func TestParseOrderedLowering(t *testing.T) {
	q, err := ParseQuery("W>10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit := q.Clauses()[0].Literals()[0]
	if lit.Atom.Kind != KindOrdered {
		t.Errorf("expected relational op + integer RHS to lower to Ordered, got kind %v", lit.Atom.Kind)
	}
	if lit.Atom.Ord != OpGT || lit.Atom.Pivot != 10 {
		t.Errorf("expected pivot 10 with >, got %v %d", lit.Atom.Ord, lit.Atom.Pivot)
	}
}

func TestParseColonWithIntegerStaysTerm(t *testing.T) {
	q, err := ParseQuery("W:10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit := q.Clauses()[0].Literals()[0]
	if lit.Atom.Kind != KindTerm {
		t.Errorf("expected ':' with integer RHS to stay Term, got kind %v", lit.Atom.Kind)
	}
}

func TestParseH3InFallsBackToTerm(t *testing.T) {
	q, err := ParseQuery("position H3IN not-a-cell")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit := q.Clauses()[0].Literals()[0]
	if lit.Atom.Kind != KindTerm {
		t.Errorf("expected unparseable H3IN value to fall back to Term, got kind %v", lit.Atom.Kind)
	}
}

func TestParseLLWithinFallsBackToTerm(t *testing.T) {
	q, err := ParseQuery("loc LLWITHIN not-a-point")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit := q.Clauses()[0].Literals()[0]
	if lit.Atom.Kind != KindTerm {
		t.Errorf("expected unparseable LLWITHIN value to fall back to Term, got kind %v", lit.Atom.Kind)
	}
}

func TestParseLLWithinLowering(t *testing.T) {
	q, err := ParseQuery("loc LLWITHIN 48.864716,2.349014,1000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit := q.Clauses()[0].Literals()[0]
	if lit.Atom.Kind != KindLatLngWithin {
		t.Errorf("expected parseable LLWITHIN value to lower to LatLngWithin, got kind %v", lit.Atom.Kind)
	}
}

// Parse round-trip (spec.md §8): a canonical-form string produced by
// Query.String() parses back to a query whose own String() is
// identical.
func TestParseRoundTrip(t *testing.T) {
	original := NewQuery(
		NewClause(NewLiteral(false, Term("bla", "foo"))),
		NewClause(NewLiteral(false, Term("X", "x")), NewLiteral(false, Term("Y", "y"))),
	)
	s := original.String()
	reparsed, err := ParseQuery(s)
	if err != nil {
		t.Fatalf("unexpected parse error on canonical form %q: %v", s, err)
	}
	if got := reparsed.String(); got != s {
		t.Errorf("round-trip mismatch: got %q, want %q", got, s)
	}
}

func TestParseSemanticRoundTrip(t *testing.T) {
	q := NewQuery(
		NewClause(NewLiteral(false, Term("A", "a")), NewLiteral(false, Term("B", "b"))),
		NewClause(NewLiteral(false, Term("C", "c"))),
	)
	s := q.String()
	reparsed, err := ParseQuery(s)
	if err != nil {
		t.Fatalf("unexpected error reparsing %q: %v", s, err)
	}

	docs := []*Document{
		NewDocument().With("A", "a").With("C", "c"),
		NewDocument().With("B", "b").With("C", "c"),
		NewDocument().With("A", "a"),
		NewDocument(),
	}
	for _, d := range docs {
		if got, want := reparsed.Matches(d), q.Matches(d); got != want {
			t.Errorf("semantic round-trip mismatch for doc %+v: got %v, want %v", d.FieldValues(), got, want)
		}
	}
}

func TestParseFailureReturnsDiagnostics(t *testing.T) {
	_, err := ParseQuery("A:a AND (B:b")
	if err == nil {
		t.Fatalf("expected parse error for unbalanced parens")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Errorf("expected *ParseError, got %T", err)
	}
}
