package search

import (
	"context"
	"fmt"

	"github.com/keepson/keepson/internal/domain"
	domrec "github.com/keepson/keepson/internal/domain/record"
	"github.com/keepson/keepson/internal/domain/search/filter"
	"github.com/keepson/keepson/internal/domain/search/hints"
	domsort "github.com/keepson/keepson/internal/domain/search/sort"
)

// Records defines the storage contract for search operations.
type Records interface {
	FindMatching(
		ctx context.Context, f filter.Filter, ord domsort.Sort, skip, limit int,
	) ([]domrec.Record, error)

	Count(ctx context.Context, f filter.Filter) (int, error)
}

// Oracle extracts structured search parameters from a free-form query.
type Oracle interface {
	ExtractSearchParams(ctx context.Context, query string, knownTypes []string) (hints.Hints, error)
}

// Disabled returns an Oracle that always reports unavailability. With no
// provider configured, searches go straight from the direct pass to
// generated patterns.
func Disabled() Oracle { return disabledOracle{} }

type disabledOracle struct{}

func (disabledOracle) ExtractSearchParams(context.Context, string, []string) (hints.Hints, error) {
	return hints.Hints{}, fmt.Errorf("no provider configured: %w", domain.ErrOracleUnavailable)
}
