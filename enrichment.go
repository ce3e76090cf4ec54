package percolate

import (
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// TextEnrichment is an optional preprocessing stage: it runs free text
// through tokenization, stopword removal, length filtering and
// Snowball stemming before the caller turns the result into Term or
// Prefix literals (query side) or Document field values (document
// side). The percolator core itself treats every field value as an
// opaque interned string; stemming is the caller's choice, not a core
// concern.
type TextEnrichment struct {
	MinTokenLength  int
	EnableStemming  bool
	EnableStopwords bool
}

// DefaultTextEnrichment returns the standard enrichment pipeline.
func DefaultTextEnrichment() TextEnrichment {
	return TextEnrichment{
		MinTokenLength:  2,
		EnableStemming:  true,
		EnableStopwords: true,
	}
}

// Enrich transforms free text into a list of stemmed, filtered tokens.
func (e TextEnrichment) Enrich(text string) []string {
	tokens := tokenizeText(text)
	tokens = lowercaseTokens(tokens)

	if e.EnableStopwords {
		tokens = filterStopwords(tokens)
	}

	tokens = filterByLength(tokens, e.MinTokenLength)

	if e.EnableStemming {
		tokens = stemTokens(tokens)
	}

	return tokens
}

// EnrichDocument adds one Term field value per enriched token of text
// under field, returning d for chaining.
func (e TextEnrichment) EnrichDocument(d *Document, field, text string) *Document {
	for _, tok := range e.Enrich(text) {
		d.With(field, tok)
	}
	return d
}

// EnrichTerms builds single-literal Term queries for every enriched
// token of text under field, OR-combined into one query — matches a
// document whose field carries any of the stemmed tokens.
func (e TextEnrichment) EnrichTerms(field, text string) *Query {
	tokens := e.Enrich(text)
	if len(tokens) == 0 {
		return NewQuery(NewClause())
	}
	qs := make([]*Query, len(tokens))
	for i, tok := range tokens {
		qs[i] = TermQ(field, tok)
	}
	return Or(qs...)
}

func tokenizeText(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func lowercaseTokens(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, tok := range tokens {
		r[i] = strings.ToLower(tok)
	}
	return r
}

func filterStopwords(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !isEnglishStopword(tok) {
			r = append(r, tok)
		}
	}
	return r
}

func filterByLength(tokens []string, minLength int) []string {
	r := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) >= minLength {
			r = append(r, tok)
		}
	}
	return r
}

func stemTokens(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, tok := range tokens {
		r[i] = snowballeng.Stem(tok, false)
	}
	return r
}

func isEnglishStopword(token string) bool {
	_, exists := englishStopwords[token]
	return exists
}

// englishStopwords are common English words excluded from enrichment.
var englishStopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "across": {}, "after": {}, "afterwards": {},
	"again": {}, "against": {}, "all": {}, "almost": {}, "alone": {}, "along": {},
	"already": {}, "also": {}, "although": {}, "always": {}, "am": {}, "among": {},
	"amongst": {}, "an": {}, "and": {}, "another": {}, "any": {}, "anyhow": {},
	"anyone": {}, "anything": {}, "anyway": {}, "anywhere": {}, "are": {}, "around": {},
	"as": {}, "at": {}, "back": {}, "be": {}, "became": {}, "because": {}, "become": {},
	"becomes": {}, "becoming": {}, "been": {}, "before": {}, "beforehand": {}, "behind": {},
	"being": {}, "below": {}, "beside": {}, "besides": {}, "between": {}, "beyond": {},
	"both": {}, "but": {}, "by": {}, "can": {}, "cannot": {}, "could": {}, "did": {}, "do": {},
	"does": {}, "doing": {}, "down": {}, "during": {}, "each": {}, "either": {}, "else": {},
	"elsewhere": {}, "enough": {}, "even": {}, "ever": {}, "every": {}, "everyone": {},
	"everything": {}, "everywhere": {}, "except": {}, "few": {}, "for": {}, "former": {},
	"formerly": {}, "from": {}, "further": {}, "had": {}, "has": {}, "have": {}, "having": {},
	"he": {}, "hence": {}, "her": {}, "here": {}, "hereafter": {}, "hereby": {}, "herein": {},
	"hereupon": {}, "hers": {}, "herself": {}, "him": {}, "himself": {}, "his": {}, "how": {},
	"however": {}, "i": {}, "if": {}, "in": {}, "indeed": {}, "into": {}, "is": {}, "it": {},
	"its": {}, "itself": {}, "just": {}, "least": {}, "less": {}, "me": {}, "meanwhile": {},
	"might": {}, "more": {}, "moreover": {}, "most": {}, "mostly": {}, "much": {}, "must": {},
	"my": {}, "myself": {}, "namely": {}, "neither": {}, "never": {}, "nevertheless": {},
	"next": {}, "no": {}, "nobody": {}, "none": {}, "noone": {}, "nor": {}, "not": {},
	"nothing": {}, "now": {}, "nowhere": {}, "of": {}, "off": {}, "often": {}, "on": {},
	"once": {}, "only": {}, "onto": {}, "or": {}, "other": {}, "others": {}, "otherwise": {},
	"our": {}, "ours": {}, "ourselves": {}, "out": {}, "over": {}, "own": {}, "per": {},
	"perhaps": {}, "rather": {}, "same": {}, "seem": {}, "seemed": {}, "seeming": {},
	"seems": {}, "several": {}, "she": {}, "should": {}, "since": {}, "so": {}, "some": {},
	"somehow": {}, "someone": {}, "something": {}, "sometime": {}, "sometimes": {},
	"somewhere": {}, "still": {}, "such": {}, "than": {}, "that": {}, "the": {}, "their": {},
	"theirs": {}, "them": {}, "themselves": {}, "then": {}, "thence": {}, "there": {},
	"thereafter": {}, "thereby": {}, "therefore": {}, "therein": {}, "thereupon": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "through": {}, "throughout": {},
	"thru": {}, "thus": {}, "to": {}, "together": {}, "too": {}, "toward": {}, "towards": {},
	"under": {}, "until": {}, "up": {}, "upon": {}, "us": {}, "very": {}, "was": {}, "we": {},
	"well": {}, "were": {}, "what": {}, "whatever": {}, "when": {}, "whence": {}, "whenever": {},
	"where": {}, "whereafter": {}, "whereas": {}, "whereby": {}, "wherein": {}, "whereupon": {},
	"wherever": {}, "whether": {}, "which": {}, "while": {}, "whither": {}, "who": {},
	"whoever": {}, "whole": {}, "whom": {}, "whose": {}, "why": {}, "will": {}, "with": {},
	"within": {}, "without": {}, "would": {}, "yet": {}, "you": {}, "your": {}, "yours": {},
	"yourself": {}, "yourselves": {},
}
