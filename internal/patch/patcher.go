package patch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrAnchorNotFound is returned when a declaration to replace is missing
	// or cannot be delimited
	ErrAnchorNotFound = errors.New("anchor not found")
	// ErrAmbiguousAnchor is returned when a declaration occurs more than once
	ErrAmbiguousAnchor = errors.New("anchor matched more than once")
)

// Anchor identifies one generated declaration in the page
type Anchor struct {
	Name  string
	Open  byte
	Close byte
	re    *regexp.Regexp
}

// NewAnchor builds the anchor for `const|let|var NAME = <open> ... <close>;`
func NewAnchor(name string, openCh, closeCh byte) Anchor {
	pattern := fmt.Sprintf(`\b(?:const|let|var)\s+%s\s*=\s*%s`, regexp.QuoteMeta(name), regexp.QuoteMeta(string(openCh)))
	return Anchor{Name: name, Open: openCh, Close: closeCh, re: regexp.MustCompile(pattern)}
}

// Default anchors of the issue page
var (
	ConfigAnchor   = NewAnchor("ISSUE_CONFIG", '{', '}')
	SectionsAnchor = NewAnchor("SECTIONS", '[', ']')
)

// Patch replaces the ISSUE_CONFIG and SECTIONS declarations of document with
// the given blocks. Everything outside the two declarations is kept byte for
// byte.
func Patch(document, configBlock, sectionBlock string) (string, error) {
	out, err := Replace(document, ConfigAnchor, configBlock)
	if err != nil {
		return "", err
	}
	return Replace(out, SectionsAnchor, sectionBlock)
}

// Replace swaps exactly one declaration matched by anchor for block
func Replace(document string, anchor Anchor, block string) (string, error) {
	start, end, err := Locate(document, anchor)
	if err != nil {
		return "", err
	}
	return document[:start] + block + document[end:], nil
}

// Locate returns the byte span of the declaration, from its keyword through
// the terminating semicolon. Matches inside string literals or comments do
// not count.
func Locate(document string, anchor Anchor) (int, int, error) {
	matches := codeMatches(anchor.re.FindAllStringIndex(document, -1), literalSpans(document))
	switch {
	case len(matches) == 0:
		return 0, 0, fmt.Errorf("%w: %s", ErrAnchorNotFound, anchor.Name)
	case len(matches) > 1:
		return 0, 0, fmt.Errorf("%w: %s (%d occurrences)", ErrAmbiguousAnchor, anchor.Name, len(matches))
	}

	start := matches[0][0]
	openIdx := matches[0][1] - 1

	closeIdx, ok := matchDelimiter(document, openIdx, anchor.Open, anchor.Close)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s is not closed", ErrAnchorNotFound, anchor.Name)
	}

	end := closeIdx + 1
	for end < len(document) && isSpace(document[end]) {
		end++
	}
	if end >= len(document) || document[end] != ';' {
		return 0, 0, fmt.Errorf("%w: %s is not terminated by ';'", ErrAnchorNotFound, anchor.Name)
	}
	return start, end + 1, nil
}

// codeMatches drops the matches that start inside one of the sorted spans
func codeMatches(matches [][]int, spans [][2]int) [][]int {
	var out [][]int
	k := 0
	for _, m := range matches {
		for k < len(spans) && spans[k][1] <= m[0] {
			k++
		}
		if k < len(spans) && spans[k][0] <= m[0] {
			continue
		}
		out = append(out, m)
	}
	return out
}

// literalSpans returns the byte ranges of s covered by quoted strings,
// template literals and comments. A quote that is never closed is treated
// as a plain character, so stray apostrophes in markup do not hide code.
func literalSpans(s string) [][2]int {
	var spans [][2]int
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'', '`':
			if j, ok := skipQuoted(s, i, c); ok {
				spans = append(spans, [2]int{i, j + 1})
				i = j
			}
		case '/':
			if end, ok := skipComment(s, i); ok {
				spans = append(spans, [2]int{i, end})
				i = end - 1
			}
		}
	}
	return spans
}

// matchDelimiter finds the delimiter closing the one at openIdx. Quoted
// strings, template literals and comments are skipped.
func matchDelimiter(s string, openIdx int, openCh, closeCh byte) (int, bool) {
	depth := 0
	for i := openIdx; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'', '`':
			j, ok := skipQuoted(s, i, c)
			if !ok {
				return 0, false
			}
			i = j
		case '/':
			if end, ok := skipComment(s, i); ok {
				i = end - 1
			}
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// skipComment reports whether a comment starts at i and returns the index
// just past it. An unterminated block comment runs to the end of s.
func skipComment(s string, i int) (int, bool) {
	if i+1 >= len(s) || s[i] != '/' {
		return 0, false
	}
	switch s[i+1] {
	case '/':
		if k := strings.IndexByte(s[i+2:], '\n'); k != -1 {
			return i + 2 + k, true
		}
		return len(s), true
	case '*':
		if k := strings.Index(s[i+2:], "*/"); k != -1 {
			return i + 2 + k + 2, true
		}
		return len(s), true
	}
	return 0, false
}

// skipQuoted returns the index of the quote closing the one at i
func skipQuoted(s string, i int, quote byte) (int, bool) {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j, true
		case '\n':
			if quote != '`' {
				return 0, false
			}
		}
	}
	return 0, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
