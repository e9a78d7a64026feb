package record

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DerivedTitleMaxLen caps titles produced by DeriveTitle.
const DerivedTitleMaxLen = 80

// DeriveTitle produces a title for records captured without one.
// Notes use the first line of content, links use the URL host and
// file-backed records use a cleaned file name. Returns "" when nothing
// usable is available.
func DeriveTitle(typ Type, content, filename string) string {
	switch typ {
	case Note:
		return clipAtWord(firstLine(content), DerivedTitleMaxLen)
	case Link:
		if host := urlHost(content); host != "" {
			return host
		}
		return clipAtWord(firstLine(content), DerivedTitleMaxLen)
	case Image, Audio, Video:
		return clipAtWord(cleanFilename(filename), DerivedTitleMaxLen)
	default:
		return ""
	}
}

// firstLine returns the first non-empty line with collapsed whitespace.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if cleaned := strings.Join(strings.Fields(line), " "); cleaned != "" {
			return cleaned
		}
	}
	return ""
}

// urlHost extracts the host from a URL, dropping a leading "www.".
func urlHost(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// cleanFilename strips the path and extension and normalizes separators.
func cleanFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// clipAtWord shortens s to at most max bytes, cutting at a word boundary.
func clipAtWord(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := strings.LastIndex(s[:max], " ")
	if cut <= 0 {
		cut = max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
	}
	return strings.TrimRight(s[:cut], " ")
}
