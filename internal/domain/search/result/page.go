package result

import "github.com/keepson/keepson/internal/domain/record"

// Page is a pagination descriptor for structured search.
type Page struct {
	currentPage  int
	totalPages   int
	totalRecords int
	hasNext      bool
	hasPrevious  bool
}

// NewPage computes a pagination descriptor.
// totalPages = ceil(total/limit); hasNext compares the window end
// (skip + returned) with the total.
func NewPage(page, limit, total, returned int) Page {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	skip := (page - 1) * limit
	return Page{
		currentPage:  page,
		totalPages:   totalPages,
		totalRecords: total,
		hasNext:      skip+returned < total,
		hasPrevious:  page > 1,
	}
}

// CurrentPage returns the 1-based page number.
func (p Page) CurrentPage() int { return p.currentPage }

// TotalPages returns the page count for the full result set.
func (p Page) TotalPages() int { return p.totalPages }

// TotalRecords returns the full result set size.
func (p Page) TotalRecords() int { return p.totalRecords }

// HasNext reports whether records exist beyond this page.
func (p Page) HasNext() bool { return p.hasNext }

// HasPrevious reports whether this is not the first page.
func (p Page) HasPrevious() bool { return p.hasPrevious }

// Advanced is the outcome of a structured search.
type Advanced struct {
	records []record.Record
	page    Page
}

// NewAdvanced creates a structured search outcome.
func NewAdvanced(records []record.Record, page Page) Advanced {
	return Advanced{records: records, page: page}
}

// Records returns the matched page of records.
func (a *Advanced) Records() []record.Record { return a.records }

// Page returns the pagination descriptor.
func (a *Advanced) Page() Page { return a.page }
