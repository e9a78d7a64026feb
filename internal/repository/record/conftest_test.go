package record

import (
	"context"
	"slices"
	"testing"
	"time"

	domrec "github.com/keepson/keepson/internal/domain/record"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, key string) error
	zaddFn         func(ctx context.Context, key string, score float64, member string) error
	zremFn         func(ctx context.Context, key, member string) error
	zrangeRevFn    func(ctx context.Context, key string, start, stop int64) ([]string, error)
	zcardFn        func(ctx context.Context, key string) (int64, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	if m.zaddFn != nil {
		return m.zaddFn(ctx, key, score, member)
	}
	return nil
}

func (m *mockStore) ZRem(ctx context.Context, key, member string) error {
	if m.zremFn != nil {
		return m.zremFn(ctx, key, member)
	}
	return nil
}

func (m *mockStore) ZRangeRev(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if m.zrangeRevFn != nil {
		return m.zrangeRevFn(ctx, key, start, stop)
	}
	return nil, nil
}

func (m *mockStore) ZCard(ctx context.Context, key string) (int64, error) {
	if m.zcardFn != nil {
		return m.zcardFn(ctx, key)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "keepson:"), ms
}

var baseTime = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func testNote(id, owner, title, content string, tags []string, createdAt time.Time) domrec.Record {
	return domrec.Reconstruct(id, owner, domrec.Note, title, content, "", tags, "", createdAt, createdAt)
}

// seedStore wires the mock to serve the given records the way the real
// store would: ids from the owner index newest first, hashes per key.
func seedStore(ms *mockStore, recs ...domrec.Record) {
	byKey := make(map[string]map[string]string, len(recs))
	sorted := slices.Clone(recs)
	slices.SortStableFunc(sorted, func(a, b domrec.Record) int {
		return b.CreatedAt().Compare(a.CreatedAt())
	})

	ids := make([]string, len(sorted))
	for i := range sorted {
		ids[i] = sorted[i].ID()
		byKey["keepson:record:"+sorted[i].ID()] = buildHashFields(&sorted[i])
	}

	ms.zrangeRevFn = func(_ context.Context, _ string, _, _ int64) ([]string, error) {
		return ids, nil
	}
	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if h, ok := byKey[key]; ok {
			return h, nil
		}
		return map[string]string{}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		out := make([]map[string]string, len(keys))
		for i, key := range keys {
			if h, ok := byKey[key]; ok {
				out[i] = h
			} else {
				out[i] = map[string]string{}
			}
		}
		return out, nil
	}
	ms.zcardFn = func(_ context.Context, _ string) (int64, error) {
		return int64(len(ids)), nil
	}
}
