package render

import (
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/bilgisen/weeklyissue/internal/models"
)

// Names of the generated declarations in the page
const (
	ConfigName   = "ISSUE_CONFIG"
	SectionsName = "SECTIONS"
)

// field is one pre-escaped key/value pair
type field struct {
	Key   string
	Value string
}

type sectionView struct {
	Fields []field
	Items  [][]field
}

// Every value reaching the templates is already a literal, so plain
// text/template substitution is enough.
var (
	configTmpl = template.Must(template.New("config").Parse(
		`const {{.Name}} = {
{{- range $i, $f := .Fields}}{{if $i}},{{end}}
  {{$f.Key}}: {{$f.Value}}
{{- end}}
};`))

	sectionsTmpl = template.Must(template.New("sections").Parse(
		`const {{.Name}} = [
{{- range $i, $s := .Sections}}{{if $i}},{{end}}
  {
{{- range $s.Fields}}
    {{.Key}}: {{.Value}},
{{- end}}
    "items": [
{{- range $j, $item := $s.Items}}{{if $j}},{{end}}
      {
{{- range $k, $f := $item}}{{if $k}},{{end}}
        {{$f.Key}}: {{$f.Value}}
{{- end}}
      }
{{- end}}
    ]
  }
{{- end}}
];`))
)

// ConfigBlock renders the ISSUE_CONFIG declaration
func ConfigBlock(week models.WeekInfo, generatedAt time.Time) string {
	fields := []field{
		{Key: Literal("vol"), Value: Literal(week.Vol)},
		{Key: Literal("week"), Value: Literal(week.Week)},
		{Key: Literal("date"), Value: Literal(week.Date)},
		{Key: Literal("range"), Value: Literal(week.Range)},
		{Key: Literal("isoWeek"), Value: strconv.Itoa(week.ISOWeek)},
		{Key: Literal("isoYear"), Value: strconv.Itoa(week.ISOYear)},
		{Key: Literal("generatedAt"), Value: Literal(generatedAt.Format(time.RFC3339))},
	}
	return execute(configTmpl, map[string]any{"Name": ConfigName, "Fields": fields})
}

// SectionsBlock renders the SECTIONS declaration
func SectionsBlock(sections []models.Section) string {
	views := make([]sectionView, len(sections))
	for i, s := range sections {
		views[i].Fields = []field{
			{Key: Literal("id"), Value: Literal(s.ID)},
			{Key: Literal("title"), Value: Literal(s.Title)},
			{Key: Literal("subtitle"), Value: Literal(s.Subtitle)},
			{Key: Literal("color"), Value: Literal(s.Color)},
			{Key: Literal("accent"), Value: Literal(s.Accent)},
		}
		for _, item := range s.Items {
			views[i].Items = append(views[i].Items, itemView(item))
		}
	}
	return execute(sectionsTmpl, map[string]any{"Name": SectionsName, "Sections": views})
}

func itemView(item models.NewsItem) []field {
	literals := SanitizeItem(item)
	fields := make([]field, 0, len(itemFields)+1)
	fields = append(fields, field{Key: Literal("id"), Value: strconv.Itoa(item.ID)})
	for _, name := range itemFields {
		fields = append(fields, field{Key: Literal(name), Value: literals[name]})
	}
	return fields
}

func execute(t *template.Template, data any) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		// Templates are static and fed only strings
		panic("render: " + err.Error())
	}
	return b.String()
}
