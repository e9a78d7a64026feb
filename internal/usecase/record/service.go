// Package record handles capture and management of a user's records.
package record

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/keepson/keepson/internal/domain"
	domrec "github.com/keepson/keepson/internal/domain/record"
	"github.com/keepson/keepson/internal/domain/record/patch"
	"github.com/keepson/keepson/internal/domain/search/filter"
	"github.com/keepson/keepson/internal/domain/search/result"
	domsort "github.com/keepson/keepson/internal/domain/search/sort"
	"github.com/keepson/keepson/internal/logger"
)

// Content shorter than this is its own summary.
const minSummaryChars = 200

// Service handles record CRUD with file storage and optional summaries.
type Service struct {
	repo            Repository
	files           Files
	summarizer      Summarizer // nil disables summaries
	defaultPageSize int
	maxPageSize     int
}

// New creates a record service.
func New(repo Repository, files Files, summarizer Summarizer) *Service {
	return &Service{
		repo:            repo,
		files:           files,
		summarizer:      summarizer,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// CreateInput carries a capture request. File is required for file-backed
// types and forbidden otherwise.
type CreateInput struct {
	Type     string
	Title    string
	Content  string
	Tags     []string
	Filename string
	File     io.Reader
}

// Create captures a record: stores the upload if any, derives a title when
// none was given, generates a summary when configured, and persists.
func (s *Service) Create(ctx context.Context, owner string, in CreateInput) (domrec.Record, error) {
	typ, ok := domrec.ParseType(in.Type)
	if !ok {
		return domrec.Record{}, fmt.Errorf("%w: unknown record type %q", domain.ErrInvalidInput, in.Type)
	}

	var fileRef string
	if typ.RequiresFile() {
		if in.File == nil {
			return domrec.Record{}, fmt.Errorf("%w: %s records require a file", domain.ErrInvalidInput, typ)
		}
		ref, err := s.files.Save(ctx, owner, in.Filename, in.File)
		if err != nil {
			return domrec.Record{}, fmt.Errorf("store file: %w", err)
		}
		fileRef = ref
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = domrec.DeriveTitle(typ, in.Content, in.Filename)
	}

	rec, err := domrec.New(uuid.NewString(), owner, typ, title, in.Content, fileRef, in.Tags, time.Now())
	if err != nil {
		s.discardBlob(ctx, owner, fileRef)
		return domrec.Record{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	rec = s.summarized(ctx, rec)

	if err := s.repo.Save(ctx, &rec); err != nil {
		s.discardBlob(ctx, owner, fileRef)
		return domrec.Record{}, fmt.Errorf("save record: %w", err)
	}
	return rec, nil
}

// Get returns an owner's record.
func (s *Service) Get(ctx context.Context, owner, id string) (domrec.Record, error) {
	rec, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// List returns the owner's records, newest first, with pagination.
func (s *Service) List(
	ctx context.Context, owner string, page, limit int,
) ([]domrec.Record, result.Page, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	f, err := filter.New(owner)
	if err != nil {
		return nil, result.Page{}, err
	}

	var (
		records []domrec.Record
		total   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.repo.FindMatching(gctx, f, domsort.Recency(), (page-1)*limit, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, result.Page{}, fmt.Errorf("list records: %w", err)
	}

	return records, result.NewPage(page, limit, total, len(records)), nil
}

// Update applies a partial update. A content change invalidates the old
// summary and regenerates it.
func (s *Service) Update(ctx context.Context, owner, id string, p patch.Patch) (domrec.Record, error) {
	rec, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("get record: %w", err)
	}

	updated, err := rec.Apply(p, time.Now())
	if err != nil {
		return domrec.Record{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	if p.HasContent() {
		updated = updated.WithSummary("")
		updated = s.summarized(ctx, updated)
	}

	if err := s.repo.Save(ctx, &updated); err != nil {
		return domrec.Record{}, fmt.Errorf("save record: %w", err)
	}
	return updated, nil
}

// Delete removes the record and its blob, if any. A blob that cannot be
// removed is logged and left for cleanup; the record itself is gone.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	rec, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}

	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	if ref := rec.FileRef(); ref != "" {
		if err := s.files.Delete(ctx, owner, ref); err != nil && !errors.Is(err, domain.ErrFileNotFound) {
			logger.FromContext(ctx).Warn("orphaned blob after record delete",
				zap.String("record_id", id),
				zap.String("file_ref", ref),
				zap.Error(err))
		}
	}
	return nil
}

// OpenFile returns the record's blob and a download name.
func (s *Service) OpenFile(ctx context.Context, owner, id string) (io.ReadSeekCloser, string, error) {
	rec, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, "", fmt.Errorf("get record: %w", err)
	}
	if rec.FileRef() == "" {
		return nil, "", fmt.Errorf("record %s: %w", id, domain.ErrFileNotFound)
	}

	rc, err := s.files.Open(ctx, owner, rec.FileRef())
	if err != nil {
		return nil, "", fmt.Errorf("open file: %w", err)
	}
	return rc, downloadName(rec.FileRef()), nil
}

// summarized attaches a generated summary to records whose content is
// long enough to need one. Failures degrade to no summary.
func (s *Service) summarized(ctx context.Context, rec domrec.Record) domrec.Record {
	if s.summarizer == nil || len([]rune(rec.Content())) < minSummaryChars {
		return rec
	}

	sum, err := s.summarizer.Summarize(ctx, rec.Content())
	if err != nil {
		logger.FromContext(ctx).Warn("summary generation failed",
			zap.String("record_id", rec.ID()),
			zap.Error(err))
		return rec
	}
	return rec.WithSummary(sum)
}

func (s *Service) discardBlob(ctx context.Context, owner, ref string) {
	if ref == "" {
		return
	}
	if err := s.files.Delete(ctx, owner, ref); err != nil {
		logger.FromContext(ctx).Warn("orphaned blob after failed create",
			zap.String("file_ref", ref),
			zap.Error(err))
	}
}

// downloadName strips the UUID prefix a stored reference carries.
func downloadName(ref string) string {
	if _, name, ok := strings.Cut(ref, "_"); ok && name != "" {
		return name
	}
	return ref
}
