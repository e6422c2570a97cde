package ai

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("fixture is not valid JSON: %v", err)
	}
	return v
}

func TestExtractJSONDirect(t *testing.T) {
	inputs := []string{
		`{"global":[{"title":"a"}]}`,
		`[1, 2, {"x": "y"}]`,
		`  [{"title":"含中文","tags":["设计"]}]  `,
		`"just a string"`,
		`42`,
	}

	for _, in := range inputs {
		got, err := ExtractJSON(in)
		if err != nil {
			t.Fatalf("ExtractJSON(%q) returned error: %v", in, err)
		}
		if diff := cmp.Diff(mustParse(t, in), got); diff != "" {
			t.Errorf("ExtractJSON(%q) mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestExtractJSONWrapped(t *testing.T) {
	inner := `[{"title":"A \"quoted\" title","url":"#"},{"title":"B"}]`
	object := `{"global":[{"title":"x"}],"design":[{"title":"y"}]}`

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "fenced block", input: "Here you go:\n```json\n" + inner + "\n```\nEnjoy!", want: inner},
		{name: "fenced block upper case tag", input: "```JSON\n" + inner + "```", want: inner},
		{name: "prose around array", input: "Sure! The news: " + inner + " Let me know.", want: inner},
		{name: "prose around object", input: "Result follows.\n" + object + "\nDone.", want: object},
		{name: "object with arrays inside prose", input: "note [see below]: " + object, want: object},
		{name: "broken fence falls back to slice", input: "```json\n{oops\n```\n" + inner, want: inner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if err != nil {
				t.Fatalf("Expected a value, got error %v", err)
			}
			if diff := cmp.Diff(mustParse(t, tt.want), got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractJSONMalformed(t *testing.T) {
	inputs := []string{
		"",
		"I could not find any news this week.",
		`[{"title": "truncated"`,
		`{"global": [`,
		"] reversed [",
		"```json\n```",
		strings.Repeat("[", 50),
	}

	for _, in := range inputs {
		got, err := ExtractJSON(in)
		if !errors.Is(err, ErrNoJSON) {
			t.Errorf("ExtractJSON(%q): expected ErrNoJSON, got value %v err %v", in, got, err)
		}
		if got != nil {
			t.Errorf("ExtractJSON(%q): expected nil value, got %v", in, got)
		}
	}
}
