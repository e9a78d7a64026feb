package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/keepson/keepson/internal/domain/search/hints"
	"github.com/keepson/keepson/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedOracle wraps an Oracle with budget enforcement and logging.
// Token counts are recorded in transport/openai where the API response is
// visible; this layer owns the budget gate and budget-related metrics.
type InstrumentedOracle struct {
	inner  Oracle
	budget BudgetChecker
	logger *zap.Logger
}

// NewInstrumentedOracle wraps an oracle with budget and observability.
func NewInstrumentedOracle(inner Oracle, budget BudgetChecker, logger *zap.Logger) *InstrumentedOracle {
	return &InstrumentedOracle{
		inner:  inner,
		budget: budget,
		logger: logger,
	}
}

// ExtractSearchParams checks the budget, delegates to the inner oracle,
// and refreshes the budget gauges.
func (o *InstrumentedOracle) ExtractSearchParams(
	ctx context.Context, query string, knownTypes []string,
) (hints.Hints, error) {
	if o.budget != nil {
		if err := o.budget.Check(ctx); err != nil {
			o.logger.Warn("Oracle budget exceeded", zap.Error(err))
			return hints.Hints{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()

	h, err := o.inner.ExtractSearchParams(ctx, query, knownTypes)

	duration := time.Since(start)

	if err != nil {
		o.logger.Warn("Oracle request failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return hints.Hints{}, err
	}

	if o.budget != nil {
		remaining := metrics.OracleBudgetTokensRemaining
		remaining.WithLabelValues("daily").Set(float64(o.budget.RemainingDaily()))
		remaining.WithLabelValues("monthly").Set(float64(o.budget.RemainingMonthly()))
	}

	o.logger.Debug("Oracle request completed",
		zap.Duration("duration", duration),
		zap.Int("keywords", len(h.Keywords())),
	)

	return h, nil
}
