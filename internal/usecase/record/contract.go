package record

import (
	"context"
	"io"

	domrec "github.com/keepson/keepson/internal/domain/record"
	"github.com/keepson/keepson/internal/domain/search/filter"
	domsort "github.com/keepson/keepson/internal/domain/search/sort"
)

// Repository defines the storage contract for records.
type Repository interface {
	Save(ctx context.Context, rec *domrec.Record) error
	Get(ctx context.Context, owner, id string) (domrec.Record, error)
	Delete(ctx context.Context, owner, id string) error
	FindMatching(
		ctx context.Context, f filter.Filter, ord domsort.Sort, skip, limit int,
	) ([]domrec.Record, error)
	Count(ctx context.Context, f filter.Filter) (int, error)
}

// Files stores uploaded blobs.
type Files interface {
	Save(ctx context.Context, owner, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, owner, ref string) (io.ReadSeekCloser, error)
	Delete(ctx context.Context, owner, ref string) error
}

// Summarizer produces short summaries for text content.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}
