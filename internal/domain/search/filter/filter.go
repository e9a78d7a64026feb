// Package filter describes record store predicates.
package filter

import (
	"fmt"
	"time"

	"github.com/keepson/keepson/internal/domain/record"
)

// MaxPatterns caps the pattern alternation per filter. Pattern generation
// is bounded by query word count, so this is a hard stop for abuse only.
const MaxPatterns = 128

// Field names a searchable text field of a record.
type Field string

// Searchable text fields.
const (
	FieldTitle   Field = "title"
	FieldSummary Field = "summary"
	FieldContent Field = "content"
	FieldTags    Field = "tags"
)

// NaturalFields is the field set scanned by natural-language search.
func NaturalFields() []Field {
	return []Field{FieldTitle, FieldSummary, FieldContent, FieldTags}
}

// KeywordFields is the field set scanned by advanced keyword filters
// (tags are matched exactly there, not by substring).
func KeywordFields() []Field {
	return []Field{FieldTitle, FieldSummary, FieldContent}
}

// Filter is an owner-scoped record predicate. Patterns are escaped
// regular-expression sources matched case-insensitively; an empty
// pattern list matches every record of the owner.
type Filter struct {
	owner       string
	patterns    []string
	fields      []Field
	types       []record.Type
	createdFrom *time.Time
	createdTo   *time.Time
	tagsAll     []string
}

// New creates an owner-scoped filter. Owner scoping is mandatory:
// every store query starts here.
func New(owner string) (Filter, error) {
	if owner == "" {
		return Filter{}, fmt.Errorf("filter owner is required")
	}
	return Filter{owner: owner}, nil
}

// WithPatterns returns a copy matching any of the given patterns across fields.
func (f Filter) WithPatterns(patterns []string, fields []Field) (Filter, error) {
	if len(patterns) > MaxPatterns {
		return Filter{}, fmt.Errorf("too many patterns (max %d)", MaxPatterns)
	}
	f.patterns = patterns
	f.fields = fields
	return f, nil
}

// WithTypes returns a copy restricted to the given record types.
func (f Filter) WithTypes(types []record.Type) Filter {
	f.types = types
	return f
}

// WithCreatedRange returns a copy bounded by creation time. Either bound
// may be nil; both are inclusive.
func (f Filter) WithCreatedRange(from, to *time.Time) Filter {
	f.createdFrom = from
	f.createdTo = to
	return f
}

// WithTagsAll returns a copy requiring every listed tag to be present.
func (f Filter) WithTagsAll(tags []string) Filter {
	f.tagsAll = tags
	return f
}

// Owner returns the scoping user identifier.
func (f Filter) Owner() string { return f.owner }

// Patterns returns the escaped match patterns.
func (f Filter) Patterns() []string { return f.patterns }

// Fields returns the text fields scanned by the patterns.
func (f Filter) Fields() []Field { return f.fields }

// Types returns the record type restriction, empty for all types.
func (f Filter) Types() []record.Type { return f.types }

// CreatedFrom returns the inclusive lower creation bound.
func (f Filter) CreatedFrom() *time.Time { return f.createdFrom }

// CreatedTo returns the inclusive upper creation bound.
func (f Filter) CreatedTo() *time.Time { return f.createdTo }

// TagsAll returns tags that must all be present.
func (f Filter) TagsAll() []string { return f.tagsAll }
