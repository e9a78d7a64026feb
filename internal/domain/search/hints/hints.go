// Package hints holds structured search parameters extracted by the oracle.
package hints

import (
	"strings"

	"github.com/keepson/keepson/internal/domain/record"
)

// Hints is the oracle's reading of a natural-language query. Date bounds
// stay raw strings here; parsing (and tolerating malformed values) is the
// resolver's concern.
type Hints struct {
	keywords []string
	types    []record.Type
	dateFrom string
	dateTo   string
}

// New normalizes oracle output: keywords are trimmed with empties dropped,
// unknown record types are discarded rather than failing the search.
func New(keywords []string, types []string, dateFrom, dateTo string) Hints {
	h := Hints{
		dateFrom: strings.TrimSpace(dateFrom),
		dateTo:   strings.TrimSpace(dateTo),
	}
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			h.keywords = append(h.keywords, k)
		}
	}
	for _, s := range types {
		if t, ok := record.ParseType(strings.TrimSpace(s)); ok {
			h.types = append(h.types, t)
		}
	}
	return h
}

// Keywords returns the extracted key phrases in oracle order.
func (h Hints) Keywords() []string { return h.keywords }

// Types returns the record type restriction suggested by the oracle.
func (h Hints) Types() []record.Type { return h.types }

// DateFrom returns the raw lower date bound, empty when absent.
func (h Hints) DateFrom() string { return h.dateFrom }

// DateTo returns the raw upper date bound, empty when absent.
func (h Hints) DateTo() string { return h.dateTo }

// HasKeywords reports whether the oracle produced any usable keywords.
func (h Hints) HasKeywords() bool { return len(h.keywords) > 0 }
