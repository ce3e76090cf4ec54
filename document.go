package percolate

// matchAllField and matchAllValue form the single (field, value) pair
// carried by the match-all document, per the Data Model's "special
// match-all document" and negated-clause padding in AddQuery.
const (
	matchAllField = "__match_all__"
	matchAllValue = "true"
)

// FieldValue is a single (field, value) pair of a Document.
type FieldValue struct {
	Field string
	Value string
}

// Document is an ordered, duplicate-tolerant container of (field,
// value) pairs. Iteration order never affects correctness: every
// consumer (atom evaluators, clause builders) treats it as a bag.
type Document struct {
	pairs []FieldValue
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// With appends a (field, value) pair and returns the document for
// chaining, mirroring the original's Document::with_value builder.
func (d *Document) With(field, value string) *Document {
	d.pairs = append(d.pairs, FieldValue{Field: Intern(field), Value: Intern(value)})
	return d
}

// MatchAllDocument returns a document carrying only the match-all pair.
func MatchAllDocument() *Document {
	return NewDocument().With(matchAllField, matchAllValue)
}

// Values returns every value of field, in insertion order, or nil if
// the field is absent.
func (d *Document) Values(field string) []string {
	var out []string
	for _, p := range d.pairs {
		if p.Field == field {
			out = append(out, p.Value)
		}
	}
	return out
}

// FieldValues iterates every (field, value) pair of the document.
func (d *Document) FieldValues() []FieldValue {
	return d.pairs
}

// Fields returns the distinct field names present in the document.
func (d *Document) Fields() []string {
	seen := make(map[string]bool, len(d.pairs))
	var out []string
	for _, p := range d.pairs {
		if !seen[p.Field] {
			seen[p.Field] = true
			out = append(out, p.Field)
		}
	}
	return out
}

// Len returns the number of (field, value) pairs carried.
func (d *Document) Len() int {
	return len(d.pairs)
}

// Clone returns a document with the same pairs, safe to mutate
// independently.
func (d *Document) Clone() *Document {
	cp := make([]FieldValue, len(d.pairs))
	copy(cp, d.pairs)
	return &Document{pairs: cp}
}
