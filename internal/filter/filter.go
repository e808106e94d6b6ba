package filter

import (
	"path/filepath"
	"strings"

	"github.com/amishk599/studypack/internal/model"
)

// Ensure DocumentFilter implements model.DocumentFilter.
var _ model.DocumentFilter = (*DocumentFilter)(nil)

// DocumentFilter matches notes files by name and extension. Matching is
// case-insensitive. Empty lists are treated as "match all".
type DocumentFilter struct {
	include    []string
	exclude    []string
	extensions []string
}

// NewDocumentFilter returns a filter that requires a name containing any of
// include, none of exclude, and an extension from extensions (".pdf" or "pdf").
func NewDocumentFilter(include, exclude, extensions []string) *DocumentFilter {
	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return &DocumentFilter{
		include:    lowerAll(include),
		exclude:    lowerAll(exclude),
		extensions: exts,
	}
}

// Match returns true if doc passes the extension, include and exclude checks.
func (f *DocumentFilter) Match(doc model.Document) bool {
	nameLower := strings.ToLower(doc.Name)

	if len(f.extensions) > 0 {
		ext := filepath.Ext(nameLower)
		matched := false
		for _, e := range f.extensions {
			if ext == e {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.include) > 0 && !containsAny(nameLower, f.include) {
		return false
	}

	if containsAny(nameLower, f.exclude) {
		return false
	}

	return true
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
