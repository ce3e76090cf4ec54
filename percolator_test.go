package percolate

import "testing"

// Scenario 1 of spec.md §8.
func TestPercolateBasic(t *testing.T) {
	p := NewPercolatorCore()
	q0 := p.AddQuery(TermQ("A", "a"))
	q1 := p.AddQuery(Or(TermQ("A", "a"), TermQ("B", "b")))

	assertQids(t, p.Percolate(NewDocument().With("A", "a")), q0, q1)
	assertQids(t, p.Percolate(NewDocument().With("B", "b")), q1)
	assertQids(t, p.Percolate(NewDocument().With("C", "c")))
}

func TestPercolateAndRequiresAllClauses(t *testing.T) {
	p := NewPercolatorCore()
	q0 := p.AddQuery(And(TermQ("A", "a"), TermQ("B", "b")))

	assertQids(t, p.Percolate(NewDocument().With("A", "a")))
	assertQids(t, p.Percolate(NewDocument().With("A", "a").With("B", "b")), q0)
}

func TestPercolateNegation(t *testing.T) {
	p := NewPercolatorCore()
	q0 := p.AddQuery(Negate(TermQ("A", "a")))

	assertQids(t, p.Percolate(NewDocument().With("A", "a")))
	assertQids(t, p.Percolate(NewDocument().With("A", "z")), q0)
	assertQids(t, p.Percolate(NewDocument()), q0)
}

func TestPercolatePrefix(t *testing.T) {
	p := NewPercolatorCore()
	q0 := p.AddQuery(PrefixQ("name", "hel"))

	assertQids(t, p.Percolate(NewDocument().With("name", "hello")), q0)
	assertQids(t, p.Percolate(NewDocument().With("name", "goodbye")))
}

func TestPercolateOrdered(t *testing.T) {
	p := NewPercolatorCore()
	q0 := p.AddQuery(OrderedQ("W", 10, OpGT))

	assertQids(t, p.Percolate(NewDocument().With("W", "11")), q0)
	assertQids(t, p.Percolate(NewDocument().With("W", "10")))
	assertQids(t, p.Percolate(NewDocument().With("W", "abc")))
}

func TestRemoveQidTombstonesResults(t *testing.T) {
	p := NewPercolatorCore()
	q0 := p.AddQuery(TermQ("A", "a"))

	assertQids(t, p.Percolate(NewDocument().With("A", "a")), q0)

	if !p.RemoveQid(q0) {
		t.Fatalf("expected first removal to succeed")
	}
	if p.RemoveQid(q0) {
		t.Fatalf("expected second removal to be a no-op")
	}

	assertQids(t, p.Percolate(NewDocument().With("A", "a")))
}

func TestQidsAreMonotonic(t *testing.T) {
	p := NewPercolatorCore()
	for i := 0; i < 5; i++ {
		qid := p.AddQuery(TermQ("A", "a"))
		if qid != Qid(i) {
			t.Errorf("expected qid %d, got %d", i, qid)
		}
	}
}

func TestPercolateYieldsAscending(t *testing.T) {
	p := NewPercolatorCore()
	var ids []Qid
	for i := 0; i < 10; i++ {
		ids = append(ids, p.AddQuery(TermQ("A", "a")))
	}

	var seen []Qid
	for qid := range p.Percolate(NewDocument().With("A", "a")) {
		seen = append(seen, qid)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("expected strictly ascending qids, got %v", seen)
		}
	}
	if len(seen) != len(ids) {
		t.Fatalf("expected %d qids, got %d", len(ids), len(seen))
	}
}

func TestPercolateStopsOnEarlyReturn(t *testing.T) {
	p := NewPercolatorCore()
	for i := 0; i < 5; i++ {
		p.AddQuery(TermQ("A", "a"))
	}

	count := 0
	for range p.Percolate(NewDocument().With("A", "a")) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("expected iteration to stop after 2, got %d", count)
	}
}

// Percolator correctness ground truth (spec.md §8): for every stored
// query set and document, percolate(d) equals the set of live qids
// whose query predicate is true of d.
func TestPercolateGroundTruth(t *testing.T) {
	p := NewPercolatorCore()
	queries := []*Query{
		TermQ("A", "a"),
		Or(TermQ("A", "a"), TermQ("B", "b")),
		And(TermQ("A", "a"), TermQ("B", "b")),
		Negate(TermQ("C", "c")),
		PrefixQ("name", "go"),
		OrderedQ("W", 5, OpLE),
	}
	qids := make([]Qid, len(queries))
	for i, q := range queries {
		qids[i] = p.AddQuery(q)
	}
	p.RemoveQid(qids[2])

	docs := []*Document{
		NewDocument().With("A", "a").With("B", "b"),
		NewDocument().With("A", "a"),
		NewDocument().With("name", "golang"),
		NewDocument().With("W", "5"),
		NewDocument().With("C", "c"),
		NewDocument(),
	}

	for _, d := range docs {
		want := make(map[Qid]bool)
		for i, q := range queries {
			if i == 2 {
				continue // tombstoned
			}
			if q.Matches(d) {
				want[qids[i]] = true
			}
		}
		got := make(map[Qid]bool)
		for qid := range p.Percolate(d) {
			got[qid] = true
		}
		if len(got) != len(want) {
			t.Fatalf("doc %+v: got %v, want %v", d.FieldValues(), got, want)
		}
		for qid := range want {
			if !got[qid] {
				t.Errorf("doc %+v: expected qid %d present", d.FieldValues(), qid)
			}
		}
	}
}

func TestSafeGetQueryUnknownOrTombstoned(t *testing.T) {
	p := NewPercolatorCore()
	if _, ok := p.SafeGetQuery(99); ok {
		t.Errorf("expected unknown qid to report not-found")
	}
	q0 := p.AddQuery(TermQ("A", "a"))
	p.RemoveQid(q0)
	if _, ok := p.SafeGetQuery(q0); ok {
		t.Errorf("expected tombstoned qid to report not-found")
	}
}

func TestMoreClausesThanMatchersSetsMustFilter(t *testing.T) {
	p := NewPercolatorCore(WithNClauseMatchers(2))
	q0 := p.AddQuery(And(TermQ("A", "a"), TermQ("B", "b"), TermQ("C", "c")))

	if !p.mustFilter.Contains(q0) {
		t.Errorf("expected query with more clauses than matchers to be flagged must_filter")
	}
	assertQids(t, p.Percolate(NewDocument().With("A", "a").With("B", "b").With("C", "c")), q0)
	assertQids(t, p.Percolate(NewDocument().With("A", "a").With("B", "b")))
}

func TestPercolatorUidRebindOverwritesOldQid(t *testing.T) {
	p := NewPercolatorBuilder[string]().Build()
	p.AddQuery(TermQ("A", "a"), "user-1")
	p.AddQuery(TermQ("A", "b"), "user-1")

	var matches []string
	for uid := range p.Percolate(NewDocument().With("A", "a")) {
		matches = append(matches, uid)
	}
	if len(matches) != 0 {
		t.Errorf("expected rebound uid's old query to be gone, got %v", matches)
	}

	matches = nil
	for uid := range p.Percolate(NewDocument().With("A", "b")) {
		matches = append(matches, uid)
	}
	if len(matches) != 1 || matches[0] != "user-1" {
		t.Errorf("expected user-1 to match its rebound query, got %v", matches)
	}
}

func TestPercolatorUidRemove(t *testing.T) {
	p := NewPercolatorBuilder[string]().Build()
	p.AddQuery(TermQ("A", "a"), "user-1")
	if !p.RemoveUid("user-1") {
		t.Fatalf("expected removal to succeed")
	}
	if p.RemoveUid("user-1") {
		t.Fatalf("expected second removal to be a no-op")
	}
	var matches []string
	for uid := range p.Percolate(NewDocument().With("A", "a")) {
		matches = append(matches, uid)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches after removal, got %v", matches)
	}
}

func assertQids(t *testing.T, seq func(func(Qid) bool), want ...Qid) {
	t.Helper()
	var got []Qid
	for qid := range seq {
		got = append(got, qid)
	}
	if len(got) != len(want) {
		t.Fatalf("expected qids %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected qids %v, got %v", want, got)
		}
	}
}
