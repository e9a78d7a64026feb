package hintcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/keepson/keepson/internal/db"
	"github.com/keepson/keepson/internal/domain/search/hints"
)

type mockOracle struct {
	hints hints.Hints
	err   error
	calls int
}

func (m *mockOracle) ExtractSearchParams(_ context.Context, _ string, _ []string) (hints.Hints, error) {
	m.calls++
	if m.err != nil {
		return hints.Hints{}, m.err
	}
	return m.hints, nil
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedOracle(t *testing.T, inner *mockOracle) (*CachedOracle, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	co := New(inner, ms, "", time.Hour, nil, zap.NewNop())
	return co, ms
}
