// Package usage tracks language model spend and reports it per period.
package usage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/keepson/keepson/internal/domain"
)

// Action defines behavior when the token budget is exceeded.
type Action string

const (
	// ActionWarn logs a warning but allows the request.
	ActionWarn Action = "warn"
	// ActionReject blocks the request.
	ActionReject Action = "reject"
)

// Tracker is an in-memory token budget tracker with optional persistence.
// Hot path (Check) is in-memory only, no round-trip.
// Record updates in-memory first, then write-behind to store.
type Tracker struct {
	mu              sync.Mutex
	dailyTokens     int64
	monthlyTokens   int64
	dailyRequests   int64
	monthlyRequests int64
	dailyLimit      int64
	monthlyLimit    int64
	action          Action
	keyPrefix       string
	lastDayReset    time.Time
	lastMonthReset  time.Time
	store           BudgetStore
	logger          *zap.Logger
}

// NewTracker creates a budget tracker with the given token limits.
// A zero limit means unlimited for that period.
func NewTracker(keyPrefix string, dailyLimit, monthlyLimit int64, action Action, logger *zap.Logger) *Tracker {
	now := time.Now().UTC()
	return &Tracker{
		dailyLimit:     dailyLimit,
		monthlyLimit:   monthlyLimit,
		action:         action,
		keyPrefix:      keyPrefix,
		lastDayReset:   truncateToDay(now),
		lastMonthReset: truncateToMonth(now),
		logger:         logger,
	}
}

// WithStore attaches a persistence store and loads current counters.
func (t *Tracker) WithStore(ctx context.Context, store BudgetStore) *Tracker {
	t.store = store
	t.loadFromStore(ctx)
	return t
}

func (t *Tracker) loadFromStore(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()
	keys := []struct {
		key  string
		dest *int64
	}{
		{t.dailyTokensKey(now), &t.dailyTokens},
		{t.monthlyTokensKey(now), &t.monthlyTokens},
		{t.dailyRequestsKey(now), &t.dailyRequests},
		{t.monthlyRequestsKey(now), &t.monthlyRequests},
	}
	for _, k := range keys {
		if val, err := t.store.Get(ctx, k.key); err == nil {
			*k.dest = val
		} else {
			t.logger.Warn("Failed to load budget counter from store",
				zap.String("key", k.key), zap.Error(err))
		}
	}

	t.logger.Info("Budget loaded from store",
		zap.Int64("daily_tokens", t.dailyTokens),
		zap.Int64("monthly_tokens", t.monthlyTokens),
		zap.Int64("daily_requests", t.dailyRequests),
	)
}

func (t *Tracker) dailyTokensKey(ts time.Time) string {
	return t.keyPrefix + "budget:oracle:daily:" + ts.Format("2006-01-02")
}

func (t *Tracker) monthlyTokensKey(ts time.Time) string {
	return t.keyPrefix + "budget:oracle:monthly:" + ts.Format("2006-01")
}

func (t *Tracker) dailyRequestsKey(ts time.Time) string {
	return t.dailyTokensKey(ts) + ":requests"
}

func (t *Tracker) monthlyRequestsKey(ts time.Time) string {
	return t.monthlyTokensKey(ts) + ":requests"
}

// Check verifies the budget allows a new request. In-memory only (hot path).
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()

	dailyExceeded := t.dailyLimit > 0 && t.dailyTokens >= t.dailyLimit
	monthlyExceeded := t.monthlyLimit > 0 && t.monthlyTokens >= t.monthlyLimit

	if !dailyExceeded && !monthlyExceeded {
		return nil
	}

	if t.action == ActionReject {
		return domain.ErrOracleBudgetExceeded
	}

	// action=warn: log but allow the request through
	t.logger.Warn("Token budget exceeded",
		zap.Int64("daily_tokens", t.dailyTokens),
		zap.Int64("daily_limit", t.dailyLimit),
		zap.Int64("monthly_tokens", t.monthlyTokens),
		zap.Int64("monthly_limit", t.monthlyLimit),
	)
	return nil
}

// Record registers one completed request and its consumed tokens.
// Updates in-memory counters, then write-behind to store (if attached).
func (t *Tracker) Record(tokens int64) {
	t.mu.Lock()
	t.resetIfNeeded()
	t.dailyTokens += tokens
	t.monthlyTokens += tokens
	t.dailyRequests++
	t.monthlyRequests++
	store := t.store
	now := time.Now().UTC()
	increments := []struct {
		key string
		val int64
	}{
		{t.dailyTokensKey(now), tokens},
		{t.monthlyTokensKey(now), tokens},
		{t.dailyRequestsKey(now), 1},
		{t.monthlyRequestsKey(now), 1},
	}
	t.mu.Unlock()

	if store == nil {
		return
	}

	// Write-behind: fire-and-forget INCRBY to store.
	// Uses background context so store writes don't block the caller.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, inc := range increments {
		if inc.val == 0 {
			continue
		}
		if err := store.IncrBy(ctx, inc.key, inc.val); err != nil {
			t.logger.Warn("Failed to persist budget counter",
				zap.String("key", inc.key), zap.Error(err))
		}
	}
}

// RemainingDaily returns tokens left in the daily budget (-1 if unlimited).
func (t *Tracker) RemainingDaily() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()
	if t.dailyLimit == 0 {
		return -1 // unlimited
	}
	remaining := t.dailyLimit - t.dailyTokens
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingMonthly returns tokens left in the monthly budget (-1 if unlimited).
func (t *Tracker) RemainingMonthly() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()
	if t.monthlyLimit == 0 {
		return -1 // unlimited
	}
	remaining := t.monthlyLimit - t.monthlyTokens
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DailyLimit returns the daily token cap.
func (t *Tracker) DailyLimit() int64 { return t.dailyLimit }

// MonthlyLimit returns the monthly token cap.
func (t *Tracker) MonthlyLimit() int64 { return t.monthlyLimit }

// DailyUsed returns tokens consumed today.
func (t *Tracker) DailyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.dailyTokens
}

// MonthlyUsed returns tokens consumed this month.
func (t *Tracker) MonthlyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.monthlyTokens
}

// DailyRequests returns the number of requests made today.
func (t *Tracker) DailyRequests() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.dailyRequests
}

// MonthlyRequests returns the number of requests made this month.
func (t *Tracker) MonthlyRequests() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.monthlyRequests
}

// resetIfNeeded zeroes counters when the day or month rolls over.
func (t *Tracker) resetIfNeeded() {
	now := time.Now().UTC()
	today := truncateToDay(now)
	thisMonth := truncateToMonth(now)

	if today.After(t.lastDayReset) {
		t.dailyTokens = 0
		t.dailyRequests = 0
		t.lastDayReset = today
	}
	if thisMonth.After(t.lastMonthReset) {
		t.monthlyTokens = 0
		t.monthlyRequests = 0
		t.lastMonthReset = thisMonth
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
