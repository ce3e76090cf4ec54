package percolate

import hdr "github.com/HdrHistogram/hdrhistogram-go"

// statsHistogramMax bounds the histograms kept by PercolatorStats;
// generous enough for any realistic clause/preheater/prefix count.
const statsHistogramMax = 1_000_000

// PercolatorStats tracks counters and distributions useful for tuning
// PercolatorConfig against the shape of a real query corpus: how many
// clauses/preheaters queries tend to have, and how long prefixes run.
type PercolatorStats struct {
	NQueries          int
	NPreheaters       int
	ClausesPerQuery   *hdr.Histogram
	PreheatersPerQuery *hdr.Histogram
	PrefixLengths     *hdr.Histogram
}

// NewPercolatorStats returns a zeroed stats block.
func NewPercolatorStats() *PercolatorStats {
	return &PercolatorStats{
		ClausesPerQuery:    hdr.New(0, statsHistogramMax, 3),
		PreheatersPerQuery: hdr.New(0, statsHistogramMax, 3),
		PrefixLengths:      hdr.New(0, statsHistogramMax, 3),
	}
}

// recordQuery updates the per-query counters after a successful
// AddQuery. nPreheatersAttached counts every preheater this query's
// kept clauses reference, whether or not it was already registered by
// an earlier query; the running total of distinct preheaters is set
// separately via setPreheaterTotal.
func (s *PercolatorStats) recordQuery(nClauses, nPreheatersAttached int) {
	s.NQueries++
	_ = s.ClausesPerQuery.RecordValue(int64(nClauses))
	_ = s.PreheatersPerQuery.RecordValue(int64(nPreheatersAttached))
}

// setPreheaterTotal records the current count of distinct registered
// preheaters.
func (s *PercolatorStats) setPreheaterTotal(n int) {
	s.NPreheaters = n
}

// recordPrefixLength records the length of a prefix atom indexed by
// AddQuery, independent of which bucket it was filed under.
func (s *PercolatorStats) recordPrefixLength(length int) {
	_ = s.PrefixLengths.RecordValue(int64(length))
}
