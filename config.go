package percolate

import "sort"

// defaultPrefixSizes are the bucket boundaries used to file Prefix
// atoms when no explicit sizes are configured.
var defaultPrefixSizes = []int{2, 10, 100, 1000, 2000}

const defaultNClauseMatchers = 3

// PercolatorConfig is immutable after construction. NClauseMatchers
// controls how many clauses of each query are indexed; a query with
// more clauses than that falls back to full verification; PrefixSizes
// controls the
// granularity of the Prefix atom's bucket index.
type PercolatorConfig struct {
	NClauseMatchers int
	PrefixSizes     []int
}

// Option configures a PercolatorConfig at construction time.
type Option func(*PercolatorConfig)

// WithNClauseMatchers sets the number of clause matchers. Must be
// positive; non-positive values are ignored (the default is kept).
func WithNClauseMatchers(n int) Option {
	return func(c *PercolatorConfig) {
		if n > 0 {
			c.NClauseMatchers = n
		}
	}
}

// WithPrefixSizes sets the allowed prefix bucket sizes. They're
// sorted ascending on construction; non-positive sizes are dropped.
func WithPrefixSizes(sizes []int) Option {
	return func(c *PercolatorConfig) {
		var cleaned []int
		for _, s := range sizes {
			if s > 0 {
				cleaned = append(cleaned, s)
			}
		}
		if len(cleaned) > 0 {
			sort.Ints(cleaned)
			c.PrefixSizes = cleaned
		}
	}
}

// newPercolatorConfig builds a config from defaults plus options.
func newPercolatorConfig(opts ...Option) *PercolatorConfig {
	c := &PercolatorConfig{
		NClauseMatchers: defaultNClauseMatchers,
		PrefixSizes:     append([]int(nil), defaultPrefixSizes...),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
