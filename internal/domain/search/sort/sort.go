// Package sort describes record ordering for store queries.
package sort

import "fmt"

// Field is the record attribute results are ordered by.
type Field string

// Sortable fields.
const (
	CreatedAt Field = "createdAt"
	UpdatedAt Field = "updatedAt"
	Title     Field = "title"
)

// IsValid checks if the field is sortable.
func (f Field) IsValid() bool {
	return f == CreatedAt || f == UpdatedAt || f == Title
}

// Order is the sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// IsValid checks if the order is supported.
func (o Order) IsValid() bool { return o == Asc || o == Desc }

// Sort is a validated ordering. The zero value is not usable; construct
// via New or use Recency.
type Sort struct {
	field Field
	order Order
}

// New validates and creates a Sort. Empty values take the defaults
// (createdAt descending).
func New(field Field, order Order) (Sort, error) {
	if field == "" {
		field = CreatedAt
	}
	if !field.IsValid() {
		return Sort{}, fmt.Errorf("unsupported sort field %q", field)
	}
	if order == "" {
		order = Desc
	}
	if !order.IsValid() {
		return Sort{}, fmt.Errorf("unsupported sort order %q", order)
	}
	return Sort{field: field, order: order}, nil
}

// Recency returns the default ordering: creation time, newest first.
func Recency() Sort {
	return Sort{field: CreatedAt, order: Desc}
}

// ByField returns the ordered attribute.
func (s Sort) ByField() Field { return s.field }

// Direction returns the sort direction.
func (s Sort) Direction() Order { return s.order }

// Descending reports whether the order is newest/highest first.
func (s Sort) Descending() bool { return s.order == Desc }
