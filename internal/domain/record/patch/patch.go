// Package patch describes partial record updates.
package patch

import "fmt"

// Patch is a partial record update. Nil fields are unchanged.
type Patch struct {
	title   *string
	content *string
	tags    *[]string
}

// New validates and creates a Patch. At least one field must be provided.
func New(title, content *string, tags *[]string) (Patch, error) {
	if title == nil && content == nil && tags == nil {
		return Patch{}, fmt.Errorf("at least one field must be provided")
	}
	return Patch{title: title, content: content, tags: tags}, nil
}

// Title returns the new title, or nil if unchanged.
func (p Patch) Title() *string { return p.title }

// Content returns the new content, or nil if unchanged.
func (p Patch) Content() *string { return p.content }

// Tags returns the replacement tag set, or nil if unchanged.
func (p Patch) Tags() *[]string { return p.tags }

// HasContent reports whether the patch includes a content change.
func (p Patch) HasContent() bool { return p.content != nil }
