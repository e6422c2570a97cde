package ai

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bilgisen/weeklyissue/internal/models"
)

// ErrUnexpectedShape is returned when valid JSON does not hold news items
var ErrUnexpectedShape = errors.New("unexpected JSON shape")

var (
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	htmlTags     = regexp.MustCompile(`<[^>]*>`)
	listSplitter = regexp.MustCompile(`[,，、;；]`)
)

// PostProcessor turns decoded model output into normalized news items
type PostProcessor struct {
	brandName string
	now       func() time.Time
}

func NewPostProcessor(brandName string) *PostProcessor {
	return &PostProcessor{
		brandName: brandName,
		now:       time.Now,
	}
}

// SplitSections reads the combined answer: an object keyed by section id,
// optionally wrapped in a "sections" key. Unknown keys are ignored and a
// missing section maps to no items.
func (p *PostProcessor) SplitSections(v any) (map[string][]models.NewsItem, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object keyed by section, got %T", ErrUnexpectedShape, v)
	}
	if inner, ok := obj["sections"].(map[string]any); ok {
		obj = inner
	}

	sections := make(map[string][]models.NewsItem)
	found := 0
	for _, id := range models.SectionIDs() {
		raw, ok := obj[id]
		if !ok {
			continue
		}
		items, err := p.ProcessItems(raw)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", id, err)
		}
		sections[id] = items
		found++
	}

	if found == 0 {
		return nil, fmt.Errorf("%w: no known section keys", ErrUnexpectedShape)
	}
	return sections, nil
}

// ProcessItems reads an array of items, or an object carrying an "items"
// array, and normalizes every element
func (p *PostProcessor) ProcessItems(v any) ([]models.NewsItem, error) {
	if obj, ok := v.(map[string]any); ok {
		v = obj["items"]
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an array of items, got %T", ErrUnexpectedShape, v)
	}

	items := make([]models.NewsItem, 0, len(list))
	for _, el := range list {
		raw, ok := el.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, p.NormalizeItem(raw))
	}
	return items, nil
}

// NormalizeItem cleans one raw item. Every key is present afterwards.
func (p *PostProcessor) NormalizeItem(raw map[string]any) models.NewsItem {
	item := models.NewsItem{
		Title:          p.plainText(field(raw, "title")),
		Content:        p.plainText(field(raw, "content", "summary")),
		Source:         p.plainText(field(raw, "source")),
		Date:           p.cleanText(field(raw, "date")),
		Image:          p.cleanText(field(raw, "image", "image_url", "imageUrl")),
		URL:            p.cleanText(field(raw, "url", "link")),
		FullContent:    p.cleanText(field(raw, "fullContent", "full_content")),
		Analysis:       p.plainText(field(raw, "analysis")),
		Tags:           p.stringList(raw, "tags"),
		RelevantMajors: p.stringList(raw, "relevant_majors", "relevantMajors"),
		KeyPoints:      p.stringList(raw, "key_points", "keyPoints"),
	}

	// Ensure required fields have values
	if item.Source == "" {
		item.Source = p.brandName
	}
	if item.URL == "" {
		item.URL = models.NoLink
	}
	return item
}

// Placeholder builds the stand-in item for a section the model under-delivered
func (p *PostProcessor) Placeholder(meta models.SectionMeta) models.NewsItem {
	return models.NewsItem{
		Title:          "数据暂缺",
		Content:        fmt.Sprintf("本周「%s」栏目暂无更多可核实的资讯，敬请期待下期更新。", meta.Title),
		Source:         p.brandName,
		Date:           models.ItemDate(p.now()),
		URL:            models.NoLink,
		FullContent:    "<p>本条目为系统占位内容。</p>",
		Tags:           append([]string(nil), models.PlaceholderTags...),
		RelevantMajors: []string{},
		KeyPoints:      []string{},
	}.AsPlaceholder()
}

// cleanText removes control characters (newlines included) and normalizes
// whitespace
func (p *PostProcessor) cleanText(s string) string {
	s = controlChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// plainText additionally strips markup and unescapes entities
func (p *PostProcessor) plainText(s string) string {
	s = htmlTags.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return p.cleanText(s)
}

func (p *PostProcessor) stringList(raw map[string]any, keys ...string) []string {
	out := []string{}
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		var parts []string
		switch t := v.(type) {
		case []any:
			for _, el := range t {
				parts = append(parts, scalar(el))
			}
		case string:
			parts = listSplitter.Split(t, -1)
		default:
			parts = []string{scalar(t)}
		}
		for _, part := range parts {
			if cleaned := p.plainText(part); cleaned != "" {
				out = append(out, cleaned)
			}
		}
		break
	}
	return out
}

// field returns the first present key as a string
func field(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return scalar(v)
		}
	}
	return ""
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
