// Package result holds search outcomes.
package result

import (
	"github.com/keepson/keepson/internal/domain/record"
	"github.com/keepson/keepson/internal/domain/search/hints"
	"github.com/keepson/keepson/internal/domain/search/tier"
)

// Resolution is the outcome of a natural-language search: the records,
// the tier that produced them and the pattern set that tier used.
type Resolution struct {
	tier     tier.Tier
	query    string
	patterns []string
	records  []record.Record
	hints    *hints.Hints
}

// NewResolution creates a natural-language search outcome. Oracle hints
// accompany enhanced resolutions only.
func NewResolution(
	t tier.Tier, query string, patterns []string,
	records []record.Record, h *hints.Hints,
) Resolution {
	return Resolution{tier: t, query: query, patterns: patterns, records: records, hints: h}
}

// Tier returns the strategy that produced this resolution.
func (r *Resolution) Tier() tier.Tier { return r.tier }

// Query returns the original query text.
func (r *Resolution) Query() string { return r.query }

// Patterns returns the escaped pattern set the winning tier used.
func (r *Resolution) Patterns() []string { return r.patterns }

// Records returns the matched records, newest first.
func (r *Resolution) Records() []record.Record { return r.records }

// Count returns the number of matched records.
func (r *Resolution) Count() int { return len(r.records) }

// OracleHints returns the oracle's structured hints, nil outside the
// enhanced tier.
func (r *Resolution) OracleHints() *hints.Hints { return r.hints }
