package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	domrec "github.com/keepson/keepson/internal/domain/record"
	"github.com/keepson/keepson/internal/domain/search/filter"
	"github.com/keepson/keepson/internal/domain/search/pattern"
	"github.com/keepson/keepson/internal/domain/search/request"
	"github.com/keepson/keepson/internal/domain/search/result"
)

// ResolveAdvanced runs a structured search with pagination. The page and
// the total count come from the same filter, fetched concurrently.
func (s *Service) ResolveAdvanced(
	ctx context.Context, owner string, req *request.Advanced,
) (result.Advanced, error) {
	f, err := buildAdvancedFilter(owner, req)
	if err != nil {
		return result.Advanced{}, fmt.Errorf("build filter: %w", err)
	}

	var (
		records []domrec.Record
		total   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.records.FindMatching(gctx, f, req.Ordering(), req.Skip(), req.Limit())
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.records.Count(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return result.Advanced{}, fmt.Errorf("advanced search: %w", err)
	}

	page := result.NewPage(req.Page(), req.Limit(), total, len(records))
	return result.NewAdvanced(records, page), nil
}

// buildAdvancedFilter maps a structured request onto a store filter.
// Keywords match any of the text fields; tags must all be present.
func buildAdvancedFilter(owner string, req *request.Advanced) (filter.Filter, error) {
	f, err := filter.New(owner)
	if err != nil {
		return filter.Filter{}, err
	}

	if kws := req.Keywords(); len(kws) > 0 {
		f, err = f.WithPatterns(pattern.EscapeAll(kws), filter.KeywordFields())
		if err != nil {
			return filter.Filter{}, err
		}
	}

	return f.
		WithTypes(req.Types()).
		WithCreatedRange(req.DateFrom(), req.DateTo()).
		WithTagsAll(req.Tags()), nil
}
