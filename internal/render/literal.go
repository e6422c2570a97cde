package render

import (
	"encoding/json"
	"strings"

	"github.com/bilgisen/weeklyissue/internal/models"
)

// JSON encoding already escapes quotes, backslashes, control characters,
// <, >, & and the JS line separators. Single quotes are escaped on top so a
// literal stays inert inside single-quoted contexts too.
var singleQuote = strings.NewReplacer("'", `\`+"u0027")

// Literal renders s as a double-quoted string literal that is valid both as
// JSON and as JavaScript. Non-ASCII text is kept as is.
func Literal(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// strings always marshal
		return `""`
	}
	return singleQuote.Replace(string(b))
}

// ListLiteral renders an array of string literals
func ListLiteral(list []string) string {
	parts := make([]string, len(list))
	for i, s := range list {
		parts[i] = Literal(s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// itemFields is the output order of item fields
var itemFields = []string{
	"title", "content", "source", "date", "image", "url",
	"fullContent", "analysis", "tags", "relevant_majors", "key_points",
}

// SanitizeItem returns the embeddable literal of every item field, keyed by
// the output field name
func SanitizeItem(item models.NewsItem) map[string]string {
	return map[string]string{
		"title":           Literal(item.Title),
		"content":         Literal(item.Content),
		"source":          Literal(item.Source),
		"date":            Literal(item.Date),
		"image":           Literal(item.Image),
		"url":             Literal(item.URL),
		"fullContent":     Literal(item.FullContent),
		"analysis":        Literal(item.Analysis),
		"tags":            ListLiteral(item.Tags),
		"relevant_majors": ListLiteral(item.RelevantMajors),
		"key_points":      ListLiteral(item.KeyPoints),
	}
}
