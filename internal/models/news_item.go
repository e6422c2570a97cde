package models

// NewsItem represents one normalized story of the weekly issue
type NewsItem struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Source         string   `json:"source"`
	Date           string   `json:"date"`
	Image          string   `json:"image"`
	URL            string   `json:"url"`
	FullContent    string   `json:"fullContent"`
	Analysis       string   `json:"analysis"`
	Tags           []string `json:"tags"`
	RelevantMajors []string `json:"relevant_majors"`
	KeyPoints      []string `json:"key_points"`

	placeholder bool
}

// PlaceholderTags marks synthetic items that fill an under-delivered section
var PlaceholderTags = []string{"System", "Update"}

// NoLink is the url value for items without a source link
const NoLink = "#"

// HasLink reports whether the item points at a real source
func (n NewsItem) HasLink() bool {
	return n.URL != "" && n.URL != NoLink
}

// AsPlaceholder returns a copy of the item marked as synthetic filler. The
// mark is not serialized.
func (n NewsItem) AsPlaceholder() NewsItem {
	n.placeholder = true
	return n
}

// IsPlaceholder reports whether the item was synthesized for an
// under-delivered section. Tags alone never make an item a placeholder.
func (n NewsItem) IsPlaceholder() bool {
	return n.placeholder
}

// EnsureSlices replaces nil array fields with empty ones so they never
// serialize as null
func (n *NewsItem) EnsureSlices() {
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if n.RelevantMajors == nil {
		n.RelevantMajors = []string{}
	}
	if n.KeyPoints == nil {
		n.KeyPoints = []string{}
	}
}
