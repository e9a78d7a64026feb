package record

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	domrec "github.com/keepson/keepson/internal/domain/record"
	"github.com/keepson/keepson/internal/domain/search/filter"
	domsort "github.com/keepson/keepson/internal/domain/search/sort"
)

// matcher is a compiled filter ready to test records in memory. Patterns
// arrive as escaped regex sources and are matched case-insensitively.
type matcher struct {
	res    []*regexp.Regexp
	fields []filter.Field
	types  map[domrec.Type]struct{}
	from   *time.Time
	to     *time.Time
	tags   []string
}

func compileMatcher(f filter.Filter) (*matcher, error) {
	m := &matcher{
		fields: f.Fields(),
		from:   f.CreatedFrom(),
		to:     f.CreatedTo(),
		tags:   f.TagsAll(),
	}

	for _, p := range f.Patterns() {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		m.res = append(m.res, re)
	}

	if types := f.Types(); len(types) > 0 {
		m.types = make(map[domrec.Type]struct{}, len(types))
		for _, t := range types {
			m.types[t] = struct{}{}
		}
	}
	return m, nil
}

// matches tests every constraint; the pattern set matches when any one
// pattern hits any of the configured fields.
func (m *matcher) matches(rec *domrec.Record) bool {
	if m.types != nil {
		if _, ok := m.types[rec.RecordType()]; !ok {
			return false
		}
	}
	if m.from != nil && rec.CreatedAt().Before(*m.from) {
		return false
	}
	if m.to != nil && rec.CreatedAt().After(*m.to) {
		return false
	}
	for _, tag := range m.tags {
		if !rec.HasTag(tag) {
			return false
		}
	}

	if len(m.res) == 0 {
		return true
	}
	for _, re := range m.res {
		if m.patternHits(rec, re) {
			return true
		}
	}
	return false
}

func (m *matcher) patternHits(rec *domrec.Record, re *regexp.Regexp) bool {
	for _, field := range m.fields {
		switch field {
		case filter.FieldTitle:
			if re.MatchString(rec.Title()) {
				return true
			}
		case filter.FieldSummary:
			if re.MatchString(rec.Summary()) {
				return true
			}
		case filter.FieldContent:
			if re.MatchString(rec.Content()) {
				return true
			}
		case filter.FieldTags:
			for _, tag := range rec.Tags() {
				if re.MatchString(tag) {
					return true
				}
			}
		}
	}
	return false
}

func compareRecords(a, b *domrec.Record, ord domsort.Sort) int {
	var c int
	switch ord.ByField() {
	case domsort.Title:
		c = strings.Compare(strings.ToLower(a.Title()), strings.ToLower(b.Title()))
	case domsort.UpdatedAt:
		c = a.UpdatedAt().Compare(b.UpdatedAt())
	default:
		c = a.CreatedAt().Compare(b.CreatedAt())
	}
	if ord.Descending() {
		c = -c
	}
	return c
}
