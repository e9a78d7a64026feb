package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/keepson/keepson/internal/domain"
	"github.com/keepson/keepson/internal/domain/search/hints"
)

// BreakerConfig tunes the oracle circuit breaker.
type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MaxFailures uint32
	Logger      *zap.Logger
}

// BreakerOracle wraps an Oracle with a circuit breaker. A provider outage
// then costs searches one fast rejection instead of a hanging request,
// and the resolver degrades to generated patterns.
type BreakerOracle struct {
	inner Oracle
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerOracle wraps the oracle.
func NewBreakerOracle(inner Oracle, cfg BreakerConfig) *BreakerOracle {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "oracle",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("oracle breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &BreakerOracle{inner: inner, cb: cb}
}

// ExtractSearchParams delegates through the breaker. Rejections while the
// breaker is open surface as oracle unavailability.
func (b *BreakerOracle) ExtractSearchParams(
	ctx context.Context, query string, knownTypes []string,
) (hints.Hints, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.inner.ExtractSearchParams(ctx, query, knownTypes)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return hints.Hints{}, fmt.Errorf("%w: %w", domain.ErrOracleUnavailable, err)
		}
		return hints.Hints{}, err
	}

	h, ok := v.(hints.Hints)
	if !ok {
		return hints.Hints{}, fmt.Errorf("unexpected breaker payload: %w", domain.ErrOracleUnavailable)
	}
	return h, nil
}
