package models

// ItemsPerSection is the number of stories every section carries
const ItemsPerSection = 5

// SectionMeta is the static presentation data of a section. It never comes
// from the model output.
type SectionMeta struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Color    string `json:"color"`
	Accent   string `json:"accent"`
}

// Section is one assembled section of the issue
type Section struct {
	SectionMeta
	Items []NewsItem `json:"items"`
}

// SectionCatalog lists the sections in canonical order
var SectionCatalog = []SectionMeta{
	{ID: "global", Title: "全球视野", Subtitle: "Global Perspective", Color: "blue", Accent: "sky"},
	{ID: "education", Title: "教育动态", Subtitle: "Education Trends", Color: "emerald", Accent: "teal"},
	{ID: "university", Title: "院校资讯", Subtitle: "University News", Color: "indigo", Accent: "violet"},
	{ID: "design", Title: "设计前沿", Subtitle: "Design Frontier", Color: "rose", Accent: "pink"},
	{ID: "summer", Title: "夏校项目", Subtitle: "Summer Programs", Color: "amber", Accent: "orange"},
	{ID: "competitions", Title: "竞赛信息", Subtitle: "Competitions", Color: "purple", Accent: "fuchsia"},
}

// SectionIDs returns the section ids in canonical order
func SectionIDs() []string {
	ids := make([]string, len(SectionCatalog))
	for i, meta := range SectionCatalog {
		ids[i] = meta.ID
	}
	return ids
}

// LookupSection returns the metadata of the given section id
func LookupSection(id string) (SectionMeta, bool) {
	for _, meta := range SectionCatalog {
		if meta.ID == id {
			return meta, true
		}
	}
	return SectionMeta{}, false
}

// TotalItems is the item count of a complete issue
func TotalItems() int {
	return len(SectionCatalog) * ItemsPerSection
}
