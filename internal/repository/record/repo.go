// Package record persists records as hashes with a per-owner sorted-set
// index scored by creation time. Filtering and ordering happen in process:
// an owner's capture set is small enough that a full scan of it beats
// maintaining a server-side search index.
package record

import (
	"context"
	"fmt"
	"slices"

	"github.com/keepson/keepson/internal/domain"
	domrec "github.com/keepson/keepson/internal/domain/record"
	"github.com/keepson/keepson/internal/domain/search/filter"
	domsort "github.com/keepson/keepson/internal/domain/search/sort"
)

// store is the consumer interface for record persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRem(ctx context.Context, key, member string) error
	ZRangeRev(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZCard(ctx context.Context, key string) (int64, error)
}

const defaultKeyPrefix = "keepson:"

// Repo implements usecase record and search persistence.
type Repo struct {
	store  store
	prefix string
}

// New creates a record repository. An empty key prefix falls back to
// "keepson:".
func New(s store, keyPrefix string) *Repo {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &Repo{store: s, prefix: keyPrefix}
}

// Save writes the record hash and indexes it in the owner's recency set.
func (r *Repo) Save(ctx context.Context, rec *domrec.Record) error {
	key := r.recordKey(rec.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(rec)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}

	idx := r.ownerKey(rec.Owner())
	if err := r.store.ZAdd(ctx, idx, float64(rec.CreatedAt().UnixMilli()), rec.ID()); err != nil {
		return fmt.Errorf("zadd %s: %w", idx, err)
	}
	return nil
}

// Get returns an owner's record by ID. Records of other owners are
// reported as missing, not forbidden.
func (r *Repo) Get(ctx context.Context, owner, id string) (domrec.Record, error) {
	key := r.recordKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domrec.Record{}, domain.ErrRecordNotFound
	}

	rec := parseHashFields(m)
	if rec.Owner() != owner {
		return domrec.Record{}, domain.ErrRecordNotFound
	}
	return rec, nil
}

// Delete removes a record and its index entry.
func (r *Repo) Delete(ctx context.Context, owner, id string) error {
	if _, err := r.Get(ctx, owner, id); err != nil {
		return err
	}

	key := r.recordKey(id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}

	idx := r.ownerKey(owner)
	if err := r.store.ZRem(ctx, idx, id); err != nil {
		return fmt.Errorf("zrem %s: %w", idx, err)
	}
	return nil
}

// FindMatching returns records passing the filter, ordered and paginated.
// The index already yields recency order, so the default ordering needs
// no extra sort.
func (r *Repo) FindMatching(
	ctx context.Context, f filter.Filter, ord domsort.Sort, skip, limit int,
) ([]domrec.Record, error) {
	matched, err := r.matching(ctx, f)
	if err != nil {
		return nil, err
	}

	if ord != domsort.Recency() {
		slices.SortStableFunc(matched, func(a, b domrec.Record) int {
			return compareRecords(&a, &b, ord)
		})
	}

	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Count returns the number of records passing the filter. An owner-only
// filter is answered from the index cardinality without fetching hashes.
func (r *Repo) Count(ctx context.Context, f filter.Filter) (int, error) {
	if ownerOnly(f) {
		idx := r.ownerKey(f.Owner())
		n, err := r.store.ZCard(ctx, idx)
		if err != nil {
			return 0, fmt.Errorf("zcard %s: %w", idx, err)
		}
		return int(n), nil
	}

	matched, err := r.matching(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// matching fetches the owner's records in recency order and keeps those
// passing the filter.
func (r *Repo) matching(ctx context.Context, f filter.Filter) ([]domrec.Record, error) {
	m, err := compileMatcher(f)
	if err != nil {
		return nil, err
	}

	idx := r.ownerKey(f.Owner())
	ids, err := r.store.ZRangeRev(ctx, idx, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", idx, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.recordKey(id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	var matched []domrec.Record
	for _, h := range hashes {
		if len(h) == 0 {
			// index entry without a backing hash (interrupted delete)
			continue
		}
		rec := parseHashFields(h)
		if m.matches(&rec) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

func ownerOnly(f filter.Filter) bool {
	return len(f.Patterns()) == 0 && len(f.Types()) == 0 &&
		f.CreatedFrom() == nil && f.CreatedTo() == nil && len(f.TagsAll()) == 0
}

func (r *Repo) recordKey(id string) string {
	return r.prefix + "record:" + id
}

func (r *Repo) ownerKey(owner string) string {
	return r.prefix + "owner:" + owner + ":records"
}
