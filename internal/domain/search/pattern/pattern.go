// Package pattern derives literal match candidates from query text.
//
// Patterns are regular-expression sources consumed by the record store's
// case-insensitive matcher, so every user- or oracle-derived term must pass
// through Escape before it reaches a filter.
package pattern

import (
	"regexp"
	"strings"
)

// Per-word and phrase length floors. Words of 1-2 characters and phrases
// of up to 3 joined characters produce over-broad matches and are skipped.
const (
	minWordLen   = 3
	minPhraseLen = 4
)

// Escape quotes matching-syntax characters (. * + ? ^ $ { } ( ) | [ ] \)
// so the term always matches as a literal substring.
func Escape(term string) string {
	return regexp.QuoteMeta(term)
}

// EscapeAll quotes every term, preserving order.
func EscapeAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = Escape(t)
	}
	return out
}

// GenerateAll produces the deduplicated candidate set for a query:
// the original, its lowercase form, whitespace-stripped variants, each
// word longer than 2 characters lowercased, and every contiguous word
// sub-sequence whose joined length exceeds 3 characters together with
// its stripped form. Bounded by word count; idempotent.
func GenerateAll(query string) []string {
	set := newOrderedSet()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	set.add(query)
	set.add(strings.ToLower(query))

	words := strings.Fields(query)
	if len(words) > 1 {
		stripped := strings.Join(words, "")
		set.add(stripped)
		set.add(strings.ToLower(stripped))
	}

	for _, w := range words {
		if len(w) >= minWordLen {
			set.add(strings.ToLower(w))
		}
	}

	for i := 0; i < len(words); i++ {
		for j := i + 1; j <= len(words); j++ {
			phrase := strings.Join(words[i:j], " ")
			if len(phrase) < minPhraseLen {
				continue
			}
			set.add(phrase)
			if j-i > 1 {
				set.add(strings.Join(words[i:j], ""))
			}
		}
	}

	return set.values()
}

// ExpandKeyword widens one oracle-supplied keyword into match candidates:
// the keyword itself plus, for multi-word phrases, the stripped form and
// each individual word. Oracle keywords are already curated, so no word
// length floor applies here.
func ExpandKeyword(keyword string) []string {
	set := newOrderedSet()

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}

	set.add(keyword)

	words := strings.Fields(keyword)
	if len(words) > 1 {
		set.add(strings.Join(words, ""))
		for _, w := range words {
			set.add(w)
		}
	}

	return set.values()
}

// orderedSet deduplicates while keeping first-seen order, so pattern
// lists stay deterministic for logging and tests.
type orderedSet struct {
	seen map[string]bool
	keys []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) add(v string) {
	if v == "" || s.seen[v] {
		return
	}
	s.seen[v] = true
	s.keys = append(s.keys, v)
}

func (s *orderedSet) values() []string { return s.keys }
