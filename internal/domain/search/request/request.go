// Package request holds validated search inputs.
package request

import (
	"fmt"
	"strings"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 20
	MaxLimit       = 100
)

// Natural is a validated natural-language search query.
type Natural struct {
	query string
	limit int
}

// NewNatural validates and normalizes a natural-language query.
// The query must be non-empty after trimming; limit defaults to 20
// and is capped at 100.
func NewNatural(query string, limit int) (Natural, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Natural{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Natural{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Natural{query: query, limit: limit}, nil
}

// Query returns the trimmed query text.
func (r *Natural) Query() string { return r.query }

// Limit returns the maximum results to return.
func (r *Natural) Limit() int { return r.limit }
