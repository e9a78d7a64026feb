package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/keepson/keepson/internal/domain/record"
	"github.com/keepson/keepson/internal/domain/search/sort"
)

// MaxKeywords caps the structured keyword list.
const MaxKeywords = 32

// Advanced is a validated structured search query. Every filter is
// optional; an empty Advanced lists all records of the owner.
type Advanced struct {
	keywords []string
	types    []record.Type
	dateFrom *time.Time
	dateTo   *time.Time
	tags     []string
	page     int
	limit    int
	ordering sort.Sort
}

// NewAdvanced validates and normalizes structured search filters.
// Defaults: page=1, limit=20, sort by creation time descending.
func NewAdvanced(
	keywords []string,
	types []string,
	dateFrom, dateTo *time.Time,
	tags []string,
	page, limit int,
	sortBy, sortOrder string,
) (Advanced, error) {
	a := Advanced{}

	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			a.keywords = append(a.keywords, k)
		}
	}
	if len(a.keywords) > MaxKeywords {
		return Advanced{}, fmt.Errorf("too many keywords (max %d)", MaxKeywords)
	}

	for _, s := range types {
		t, ok := record.ParseType(strings.TrimSpace(s))
		if !ok {
			return Advanced{}, fmt.Errorf("unknown record type %q", s)
		}
		a.types = append(a.types, t)
	}

	if dateFrom != nil && dateTo != nil && dateFrom.After(*dateTo) {
		return Advanced{}, fmt.Errorf("dateFrom is after dateTo")
	}
	a.dateFrom = dateFrom
	a.dateTo = dateTo

	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			a.tags = append(a.tags, tag)
		}
	}

	if page <= 0 {
		page = 1
	}
	a.page = page

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	a.limit = limit

	ordering, err := sort.New(sort.Field(sortBy), sort.Order(sortOrder))
	if err != nil {
		return Advanced{}, err
	}
	a.ordering = ordering

	return a, nil
}

// Keywords returns the structured keyword filters.
func (a *Advanced) Keywords() []string { return a.keywords }

// Types returns the record type restriction.
func (a *Advanced) Types() []record.Type { return a.types }

// DateFrom returns the inclusive lower creation bound.
func (a *Advanced) DateFrom() *time.Time { return a.dateFrom }

// DateTo returns the inclusive upper creation bound.
func (a *Advanced) DateTo() *time.Time { return a.dateTo }

// Tags returns tags every result must carry.
func (a *Advanced) Tags() []string { return a.tags }

// Page returns the 1-based page number.
func (a *Advanced) Page() int { return a.page }

// Limit returns the page size.
func (a *Advanced) Limit() int { return a.limit }

// Ordering returns the result sort.
func (a *Advanced) Ordering() sort.Sort { return a.ordering }

// Skip returns the store offset for the requested page.
func (a *Advanced) Skip() int { return (a.page - 1) * a.limit }
