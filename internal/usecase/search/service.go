// Package search resolves queries against a user's captured records.
//
// Natural-language queries go through escalating strategies: a literal
// pass over the raw query, then oracle-extracted parameters when the
// literal pass finds nothing, then locally generated pattern expansion
// when the oracle is unavailable. Whichever strategy runs a store query
// last is terminal; an empty result from a completed strategy is an
// answer, not a reason to escalate.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keepson/keepson/internal/domain/record"
	"github.com/keepson/keepson/internal/domain/search/filter"
	"github.com/keepson/keepson/internal/domain/search/hints"
	"github.com/keepson/keepson/internal/domain/search/pattern"
	"github.com/keepson/keepson/internal/domain/search/request"
	"github.com/keepson/keepson/internal/domain/search/result"
	domsort "github.com/keepson/keepson/internal/domain/search/sort"
	"github.com/keepson/keepson/internal/domain/search/tier"
	"github.com/keepson/keepson/internal/logger"
	"github.com/keepson/keepson/internal/metrics"
)

// Service resolves searches over a single owner's records.
type Service struct {
	records Records
	oracle  Oracle
}

// New creates a search service.
func New(records Records, oracle Oracle) *Service {
	return &Service{records: records, oracle: oracle}
}

// Resolve runs the tiered natural-language search.
func (s *Service) Resolve(
	ctx context.Context, owner string, req *request.Natural,
) (result.Resolution, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	direct := []string{pattern.Escape(req.Query())}
	records, err := s.find(ctx, owner, direct, nil, nil, nil, req.Limit())
	if err != nil {
		return result.Resolution{}, fmt.Errorf("direct search: %w", err)
	}
	if len(records) > 0 {
		s.observe(log, tier.Direct, start, len(direct), len(records))
		return result.NewResolution(tier.Direct, req.Query(), direct, records, nil), nil
	}

	h, err := s.oracle.ExtractSearchParams(ctx, req.Query(), typeNames())
	if err != nil {
		log.Info("query analysis unavailable, using generated patterns", zap.Error(err))
		return s.resolveFallback(ctx, owner, req, start)
	}
	return s.resolveEnhanced(ctx, owner, req, h, start)
}

// resolveEnhanced searches with oracle-extracted parameters. The oracle
// answered, so this tier is terminal even with zero matches.
func (s *Service) resolveEnhanced(
	ctx context.Context, owner string, req *request.Natural, h hints.Hints, start time.Time,
) (result.Resolution, error) {
	log := logger.FromContext(ctx)

	var terms []string
	if h.HasKeywords() {
		for _, kw := range h.Keywords() {
			terms = append(terms, pattern.ExpandKeyword(kw)...)
		}
		terms = dedupe(terms)
	} else {
		terms = rawTerms(req.Query())
	}
	patterns := pattern.EscapeAll(terms)

	from, to := s.hintWindow(log, h)
	records, err := s.find(ctx, owner, patterns, h.Types(), from, to, req.Limit())
	if err != nil {
		return result.Resolution{}, fmt.Errorf("enhanced search: %w", err)
	}

	s.observe(log, tier.Enhanced, start, len(patterns), len(records))
	return result.NewResolution(tier.Enhanced, req.Query(), patterns, records, &h), nil
}

// resolveFallback searches with locally generated pattern expansion after
// an oracle failure.
func (s *Service) resolveFallback(
	ctx context.Context, owner string, req *request.Natural, start time.Time,
) (result.Resolution, error) {
	log := logger.FromContext(ctx)

	patterns := pattern.EscapeAll(pattern.GenerateAll(req.Query()))
	records, err := s.find(ctx, owner, patterns, nil, nil, nil, req.Limit())
	if err != nil {
		return result.Resolution{}, fmt.Errorf("fallback search: %w", err)
	}

	s.observe(log, tier.Fallback, start, len(patterns), len(records))
	return result.NewResolution(tier.Fallback, req.Query(), patterns, records, nil), nil
}

func (s *Service) find(
	ctx context.Context, owner string, patterns []string,
	types []record.Type, from, to *time.Time, limit int,
) ([]record.Record, error) {
	f, err := filter.New(owner)
	if err != nil {
		return nil, err
	}
	f, err = f.WithPatterns(patterns, filter.NaturalFields())
	if err != nil {
		return nil, err
	}
	f = f.WithTypes(types).WithCreatedRange(from, to)

	return s.records.FindMatching(ctx, f, domsort.Recency(), 0, limit)
}

// hintWindow parses the oracle's date bounds. Malformed values are logged
// and dropped; a bad date must not lose the search.
func (s *Service) hintWindow(log *zap.Logger, h hints.Hints) (from, to *time.Time) {
	if raw := h.DateFrom(); raw != "" {
		if t, ok := parseHintDate(raw, false); ok {
			from = &t
		} else {
			log.Warn("ignoring malformed oracle date", zap.String("bound", "from"), zap.String("value", raw))
		}
	}
	if raw := h.DateTo(); raw != "" {
		if t, ok := parseHintDate(raw, true); ok {
			to = &t
		} else {
			log.Warn("ignoring malformed oracle date", zap.String("bound", "to"), zap.String("value", raw))
		}
	}
	return from, to
}

// parseHintDate accepts RFC 3339 timestamps and plain dates. A plain date
// used as an upper bound covers its whole day.
func parseHintDate(raw string, upper bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	t = t.UTC()
	if upper {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, true
}

func (s *Service) observe(log *zap.Logger, t tier.Tier, start time.Time, patterns, found int) {
	strategy := t.String()
	metrics.SearchResolutionsTotal.WithLabelValues(strategy).Inc()
	metrics.SearchResolutionDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	if found == 0 {
		metrics.SearchEmptyTotal.WithLabelValues(strategy).Inc()
	}

	log.Debug("search resolved",
		zap.String("strategy", strategy),
		zap.Int("patterns", patterns),
		zap.Int("results", found),
		zap.Duration("latency", time.Since(start)),
	)
}

// rawTerms is the pattern source when the oracle answers without usable
// keywords: the query itself plus its whitespace-stripped form.
func rawTerms(query string) []string {
	terms := []string{query}
	if words := strings.Fields(query); len(words) > 1 {
		terms = append(terms, strings.Join(words, ""))
	}
	return terms
}

func dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func typeNames() []string {
	known := record.KnownTypes()
	names := make([]string, len(known))
	for i, t := range known {
		names[i] = string(t)
	}
	return names
}
