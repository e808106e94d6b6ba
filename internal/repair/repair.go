// Package repair recovers a single JSON object from free-form model output.
//
// Model responses arrive wrapped in markdown fences, surrounded by prose,
// truncated, or carrying LaTeX with unescaped backslashes. Repair tries a
// fixed sequence of strategies and returns the first candidate that parses,
// falling back to a best-effort substring that callers must still parse
// defensively.
package repair

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/amishk599/studypack/internal/model"
)

const fence = "```"

// Repair returns the best recoverable JSON object found in text.
//
// Text without a '{' is returned unchanged, but pass-through applies after
// fence stripping: a fenced reply with no '{' yields the fence interior. Otherwise
// the result always begins at the first '{' and is a contiguous slice of the
// input, possibly with lone backslashes doubled. Repair never panics and does
// not guarantee that the result parses.
func Repair(text string) string {
	if text == "" {
		return ""
	}

	text = stripFence(text)

	start := strings.IndexByte(text, '{')
	if start == -1 {
		return text
	}
	candidate := text[start:]

	// Greedy: first '{' through last '}'.
	greedyEnd := strings.LastIndexByte(candidate, '}')
	if greedyEnd != -1 {
		if got, ok := tryParse(candidate[:greedyEnd+1]); ok {
			return got
		}
	}

	// Balanced: stop where the brace depth first returns to zero.
	if end := balancedEnd(candidate); end != -1 {
		if got, ok := tryParse(candidate[:end+1]); ok {
			return got
		}
	}

	if greedyEnd != -1 {
		return EscapeBackslashes(candidate[:greedyEnd+1])
	}
	return candidate
}

// Outcome applies Repair to a successful outcome and returns a failed one
// untouched.
func Outcome(o model.Outcome) model.Outcome {
	if o.Failed() {
		return o
	}
	return model.Success(Repair(o.Text))
}

// tryParse reports whether s is valid JSON, first as-is and then with
// backslashes escaped. It returns the variant that parsed.
func tryParse(s string) (string, bool) {
	if json.Valid([]byte(s)) {
		return s, true
	}
	fixed := EscapeBackslashes(s)
	if json.Valid([]byte(fixed)) {
		return fixed, true
	}
	return "", false
}

// stripFence replaces text with the interior of its first fenced block, if
// any. An optional language tag directly after the opening marker is dropped
// along with the whitespace around the interior.
func stripFence(text string) string {
	open := strings.Index(text, fence)
	if open == -1 {
		return text
	}

	i := open + len(fence)
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		i += size
	}
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}

	end := strings.Index(text[i:], fence)
	if end == -1 {
		return text
	}
	return strings.TrimRightFunc(text[i:i+end], unicode.IsSpace)
}

// balancedEnd returns the index in s (which starts with '{') where the brace
// depth first drops back to zero, or -1. Braces inside string literals are
// counted too; a quoted "{" or "}" throws the count off.
func balancedEnd(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// EscapeBackslashes doubles every backslash that is neither preceded by a
// backslash nor followed by a JSON escape character (\ / " b f n r t u).
// This turns LaTeX such as \alpha or \sum inside string values into valid
// JSON escapes.
func EscapeBackslashes(s string) string {
	if strings.IndexByte(s, '\\') == -1 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		escapedBefore := i > 0 && s[i-1] == '\\'
		escapesNext := i+1 < len(s) && isEscapeChar(s[i+1])
		if escapedBefore || escapesNext {
			b.WriteByte(c)
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

func isEscapeChar(c byte) bool {
	switch c {
	case '\\', '/', '"', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	}
	return false
}
