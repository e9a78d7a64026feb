// Package hintcache caches extracted search hints in the key-value store,
// so repeated natural-language queries skip the language model entirely.
package hintcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/keepson/keepson/internal/db"
	"github.com/keepson/keepson/internal/domain/search/hints"
)

const (
	defaultKeyPrefix = "keepson:"
	defaultTTL       = 24 * time.Hour
)

// oracle is the consumer interface for the wrapped extractor (ISP).
type oracle interface {
	ExtractSearchParams(ctx context.Context, query string, knownTypes []string) (hints.Hints, error)
}

// store is the consumer interface for the hint cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedOracle caches hint extraction results in a key-value store.
type CachedOracle struct {
	inner      oracle
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. An empty key prefix falls back to
// "keepson:", a non-positive TTL to 24h.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner oracle,
	s store,
	keyPrefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedOracle {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CachedOracle{
		inner:      inner,
		store:      s,
		prefix:     keyPrefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// cachedHints is the stored representation of an extraction result.
type cachedHints struct {
	Keywords []string `json:"keywords"`
	Types    []string `json:"types"`
	DateFrom string   `json:"date_from,omitempty"`
	DateTo   string   `json:"date_to,omitempty"`
}

// ExtractSearchParams returns cached hints or calls the inner extractor.
// Cache errors degrade to a miss; a hit never touches provider or budget.
func (c *CachedOracle) ExtractSearchParams(ctx context.Context, query string, knownTypes []string) (hints.Hints, error) {
	key := c.cacheKey(query, knownTypes)

	if h, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return h, nil
	}

	c.incCache("miss")

	h, err := c.inner.ExtractSearchParams(ctx, query, knownTypes)
	if err != nil {
		return hints.Hints{}, fmt.Errorf("extract search params: %w", err)
	}

	c.putToCache(ctx, key, h)
	return h, nil
}

func (c *CachedOracle) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey folds in the UTC date: the extractor resolves relative phrases
// ("last week") against today, so yesterday's hints are wrong today.
func (c *CachedOracle) cacheKey(query string, knownTypes []string) string {
	day := time.Now().UTC().Format("2006-01-02")
	h := sha256.Sum256([]byte(day + "\x00" + query + "\x00" + strings.Join(knownTypes, ",")))
	return c.prefix + "hint_cache:" + hex.EncodeToString(h[:])
}

func (c *CachedOracle) getFromCache(ctx context.Context, key string) (hints.Hints, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached hints", zap.String("key", key), zap.Error(err))
		}
		return hints.Hints{}, false
	}
	if len(data) == 0 {
		return hints.Hints{}, false
	}

	var ch cachedHints
	if err := json.Unmarshal(data, &ch); err != nil {
		c.logger.Warn("Failed to parse cached hints", zap.String("key", key), zap.Error(err))
		return hints.Hints{}, false
	}

	// hints.New re-drops unknown types, so stale entries written under an
	// older type set revalidate cleanly.
	return hints.New(ch.Keywords, ch.Types, ch.DateFrom, ch.DateTo), true
}

func (c *CachedOracle) putToCache(ctx context.Context, key string, h hints.Hints) {
	types := make([]string, 0, len(h.Types()))
	for _, t := range h.Types() {
		types = append(types, string(t))
	}

	data, _ := json.Marshal(cachedHints{
		Keywords: h.Keywords(),
		Types:    types,
		DateFrom: h.DateFrom(),
		DateTo:   h.DateTo(),
	})

	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache hints", zap.String("key", key), zap.Error(err))
	}
}
