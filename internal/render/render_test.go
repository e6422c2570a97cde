package render

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/bilgisen/weeklyissue/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// declarationBody strips "const NAME = " and the trailing semicolon
func declarationBody(t *testing.T, block, name string) string {
	t.Helper()
	prefix := "const " + name + " = "
	if !strings.HasPrefix(block, prefix) || !strings.HasSuffix(block, ";") {
		t.Fatalf("unexpected declaration shape:\n%s", block)
	}
	return strings.TrimSuffix(strings.TrimPrefix(block, prefix), ";")
}

func TestConfigBlock(t *testing.T) {
	week := models.NewWeekInfo(time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC))
	block := ConfigBlock(week, time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC))

	var got map[string]any
	if err := json.Unmarshal([]byte(declarationBody(t, block, ConfigName)), &got); err != nil {
		t.Fatalf("config body is not valid JSON: %v\n%s", err, block)
	}

	want := map[string]any{
		"vol":         "Vol.2642",
		"week":        "第42周",
		"date":        "2026.10.15",
		"range":       "10.12-10.18",
		"isoWeek":     float64(42),
		"isoYear":     float64(2026),
		"generatedAt": "2026-10-15T08:00:00Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSectionsBlockRoundTrip(t *testing.T) {
	var sections []models.Section
	id := 1
	for _, meta := range models.SectionCatalog[:2] {
		s := models.Section{SectionMeta: meta}
		for i := 0; i < 2; i++ {
			item := models.NewsItem{
				ID:          id,
				Title:       `Title with "quotes" and it's`,
				Content:     `back\slash`,
				Source:      "来源",
				Date:        "10.15",
				URL:         "#",
				FullContent: `<p>x</p></script>`,
				Tags:        []string{"设计", `a"b`},
			}
			item.EnsureSlices()
			s.Items = append(s.Items, item)
			id++
		}
		sections = append(sections, s)
	}

	block := SectionsBlock(sections)
	if strings.Contains(block, "</script>") {
		t.Fatal("block must not contain a raw closing script tag")
	}

	var got []models.Section
	if err := json.Unmarshal([]byte(declarationBody(t, block, SectionsName)), &got); err != nil {
		t.Fatalf("sections body is not valid JSON: %v\n%s", err, block)
	}
	if diff := cmp.Diff(sections, got, cmpopts.IgnoreUnexported(models.NewsItem{})); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestSectionsBlockFieldOrder(t *testing.T) {
	item := models.NewsItem{ID: 1}
	item.EnsureSlices()
	block := SectionsBlock([]models.Section{{SectionMeta: models.SectionCatalog[0], Items: []models.NewsItem{item}}})

	last := -1
	for _, name := range append([]string{"id"}, itemFields...) {
		idx := strings.Index(block, `        "`+name+`": `)
		if idx == -1 {
			t.Fatalf("field %s missing from block:\n%s", name, block)
		}
		if idx < last {
			t.Errorf("field %s is out of order", name)
		}
		last = idx
	}
}

func TestSectionsBlockEmpty(t *testing.T) {
	block := SectionsBlock(nil)
	var got []any
	if err := json.Unmarshal([]byte(declarationBody(t, block, SectionsName)), &got); err != nil {
		t.Fatalf("empty block is not valid JSON: %v\n%s", err, block)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty array, got %v", got)
	}
}
