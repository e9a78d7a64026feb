package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/keepson/keepson/internal/domain/record/patch"
)

// Size limits for record fields.
const (
	MaxTitleLen    = 200
	MaxContentSize = 163840 // 160KB
	MaxTags        = 32
	MaxTagLen      = 64
)

// Record is the captured content aggregate (immutable value object).
// Owner, type, file reference and creation time never change after creation.
type Record struct {
	id        string
	owner     string
	typ       Type
	title     string
	content   string
	summary   string
	tags      []string
	fileRef   string
	createdAt time.Time
	updatedAt time.Time
}

// New validates and creates a Record.
// Note and link records must carry content or a title; file-backed types
// (image, audio, video) must carry a file reference.
func New(
	id, owner string, typ Type, title, content, fileRef string,
	tags []string, now time.Time,
) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("record ID is required")
	}
	if owner == "" {
		return Record{}, fmt.Errorf("record owner is required")
	}
	if !typ.IsValid() {
		return Record{}, fmt.Errorf("unknown record type %q", typ)
	}
	if len(title) > MaxTitleLen {
		return Record{}, fmt.Errorf("title too long (max %d)", MaxTitleLen)
	}
	if len(content) > MaxContentSize {
		return Record{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	if typ.RequiresFile() && fileRef == "" {
		return Record{}, fmt.Errorf("%s records require a file", typ)
	}
	if !typ.RequiresFile() && fileRef != "" {
		return Record{}, fmt.Errorf("%s records cannot carry a file", typ)
	}
	if !typ.RequiresFile() && strings.TrimSpace(content) == "" && strings.TrimSpace(title) == "" {
		return Record{}, fmt.Errorf("%s records require content or a title", typ)
	}

	normalized, err := normalizeTags(tags)
	if err != nil {
		return Record{}, err
	}

	return Record{
		id:        id,
		owner:     owner,
		typ:       typ,
		title:     title,
		content:   content,
		tags:      normalized,
		fileRef:   fileRef,
		createdAt: now.UTC(),
		updatedAt: now.UTC(),
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(
	id, owner string, typ Type, title, content, summary string,
	tags []string, fileRef string, createdAt, updatedAt time.Time,
) Record {
	return Record{
		id: id, owner: owner, typ: typ, title: title, content: content,
		summary: summary, tags: tags, fileRef: fileRef,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// Owner returns the owning user identifier.
func (r *Record) Owner() string { return r.owner }

// RecordType returns the content kind.
func (r *Record) RecordType() Type { return r.typ }

// Title returns the record title.
func (r *Record) Title() string { return r.title }

// Content returns the text content (note body, link URL, caption).
func (r *Record) Content() string { return r.content }

// Summary returns the generated summary, empty when none was produced.
func (r *Record) Summary() string { return r.summary }

// Tags returns the record tags.
func (r *Record) Tags() []string { return r.tags }

// FileRef returns the stored file reference, empty for note and link records.
func (r *Record) FileRef() string { return r.fileRef }

// CreatedAt returns the creation time.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last modification time.
func (r *Record) UpdatedAt() time.Time { return r.updatedAt }

// HasTag reports whether the record carries the given tag.
func (r *Record) HasTag(tag string) bool {
	for _, t := range r.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Apply returns a copy with the patch applied and updatedAt bumped.
func (r *Record) Apply(p patch.Patch, now time.Time) (Record, error) {
	updated := *r

	if p.Title() != nil {
		if len(*p.Title()) > MaxTitleLen {
			return Record{}, fmt.Errorf("title too long (max %d)", MaxTitleLen)
		}
		updated.title = *p.Title()
	}
	if p.Content() != nil {
		if len(*p.Content()) > MaxContentSize {
			return Record{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
		}
		updated.content = *p.Content()
	}
	if p.Tags() != nil {
		normalized, err := normalizeTags(*p.Tags())
		if err != nil {
			return Record{}, err
		}
		updated.tags = normalized
	}

	updated.updatedAt = now.UTC()
	return updated, nil
}

// WithSummary returns a copy with the summary set.
// The summary is derived content, so updatedAt is left untouched.
func (r *Record) WithSummary(summary string) Record {
	updated := *r
	updated.summary = summary
	return updated
}

// normalizeTags trims, drops empties and deduplicates preserving order.
func normalizeTags(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		if len(t) > MaxTagLen {
			return nil, fmt.Errorf("tag %q too long (max %d)", t, MaxTagLen)
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) > MaxTags {
		return nil, fmt.Errorf("too many tags (max %d)", MaxTags)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
