package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no strategy finds a JSON value in the text
var ErrNoJSON = errors.New("no valid JSON found in model output")

var fencedJSON = regexp.MustCompile("(?is)```json\\s*(.*?)```")

// ExtractJSON pulls a JSON value out of free-form model output. It tries the
// whole text, then the first ```json fenced block, then the outermost
// bracket slice. Syntax errors fall through to the next strategy.
func ExtractJSON(text string) (any, error) {
	if v, ok := parseJSON(text); ok {
		return v, nil
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if v, ok := parseJSON(m[1]); ok {
			return v, nil
		}
	}

	for _, pair := range slicePairs(text) {
		if v, ok := parseJSON(sliceBetween(text, pair[0], pair[1])); ok {
			return v, nil
		}
	}

	return nil, ErrNoJSON
}

func parseJSON(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// slicePairs orders the delimiter pairs so the container that opens first
// in the text is tried first
func slicePairs(text string) [][2]byte {
	arr := strings.IndexByte(text, '[')
	obj := strings.IndexByte(text, '{')
	if obj != -1 && (arr == -1 || obj < arr) {
		return [][2]byte{{'{', '}'}, {'[', ']'}}
	}
	return [][2]byte{{'[', ']'}, {'{', '}'}}
}

func sliceBetween(text string, openCh, closeCh byte) string {
	start := strings.IndexByte(text, openCh)
	end := strings.LastIndexByte(text, closeCh)
	if start == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}
