package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewsItemJSONFields(t *testing.T) {
	item := NewsItem{
		ID:          7,
		Title:       "Test Title",
		FullContent: "<p>Long text</p>",
		URL:         "https://example.com/news",
	}
	item.EnsureSlices()

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Failed to marshal NewsItem: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	if result["fullContent"] != "<p>Long text</p>" {
		t.Errorf("Expected fullContent field, got %v", result["fullContent"])
	}
	if result["id"] != float64(7) {
		t.Errorf("Expected id 7, got %v", result["id"])
	}
	for _, key := range []string{"tags", "relevant_majors", "key_points"} {
		arr, ok := result[key].([]interface{})
		if !ok {
			t.Errorf("Expected %s to be an empty array, got %v", key, result[key])
			continue
		}
		if len(arr) != 0 {
			t.Errorf("Expected %s to be empty, got %v", key, arr)
		}
	}
}

func TestNewsItemFlags(t *testing.T) {
	placeholder := NewsItem{URL: NoLink, Tags: []string{"System", "Update"}}.AsPlaceholder()
	if !placeholder.IsPlaceholder() {
		t.Error("Expected marked item to be a placeholder")
	}
	if placeholder.HasLink() {
		t.Error("Expected # to count as no link")
	}

	story := NewsItem{URL: "https://example.com", Tags: []string{"System", "Update"}}
	if story.IsPlaceholder() {
		t.Error("Expected a story carrying placeholder tags not to be a placeholder")
	}
	if !story.HasLink() {
		t.Error("Expected a real url to count as a link")
	}
}

func TestSectionCatalog(t *testing.T) {
	want := []string{"global", "education", "university", "design", "summer", "competitions"}
	got := SectionIDs()
	if len(got) != len(want) {
		t.Fatalf("Expected %d sections, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Section %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if TotalItems() != 30 {
		t.Errorf("Expected 30 items, got %d", TotalItems())
	}
	if _, ok := LookupSection("sports"); ok {
		t.Error("Expected unknown section lookup to fail")
	}
}

func TestNewWeekInfo(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want WeekInfo
	}{
		{
			name: "mid year",
			now:  time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC),
			want: WeekInfo{ISOWeek: 42, ISOYear: 2026, Vol: "Vol.2642", Week: "第42周", Date: "2026.10.15", Range: "10.12-10.18"},
		},
		{
			name: "iso year differs from calendar year",
			now:  time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: WeekInfo{ISOWeek: 53, ISOYear: 2026, Vol: "Vol.2653", Week: "第53周", Date: "2027.01.01", Range: "12.28-01.03"},
		},
		{
			name: "sunday closes the week",
			now:  time.Date(2026, time.October, 18, 23, 0, 0, 0, time.UTC),
			want: WeekInfo{ISOWeek: 42, ISOYear: 2026, Vol: "Vol.2642", Week: "第42周", Date: "2026.10.18", Range: "10.12-10.18"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewWeekInfo(tt.now)
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
