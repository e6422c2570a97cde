package issue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bilgisen/weeklyissue/internal/models"
)

// ErrIncomplete is returned when the issue cannot reach its full item count
var ErrIncomplete = errors.New("issue incomplete")

// PlaceholderFunc builds a stand-in item for an under-delivered section
type PlaceholderFunc func(meta models.SectionMeta) models.NewsItem

// Assembler orders sections canonically and numbers their items
type Assembler struct {
	placeholder PlaceholderFunc
	padMissing  bool
}

// NewAssembler creates an assembler. With padMissing off, short sections
// abort the assembly instead of being padded.
func NewAssembler(placeholder PlaceholderFunc, padMissing bool) *Assembler {
	return &Assembler{placeholder: placeholder, padMissing: padMissing}
}

// Assemble walks the section catalog in canonical order, keeps at most
// ItemsPerSection items per section in their given order, pads short
// sections when allowed and assigns ids 1..N continuously across sections.
// Sections absent from the input count as empty.
func (a *Assembler) Assemble(input map[string][]models.NewsItem) ([]models.Section, error) {
	sections := make([]models.Section, 0, len(models.SectionCatalog))
	var short []string

	for _, meta := range models.SectionCatalog {
		items := input[meta.ID]
		if len(items) > models.ItemsPerSection {
			items = items[:models.ItemsPerSection]
		}

		section := models.Section{
			SectionMeta: meta,
			Items:       make([]models.NewsItem, 0, models.ItemsPerSection),
		}
		section.Items = append(section.Items, items...)

		if missing := models.ItemsPerSection - len(section.Items); missing > 0 {
			if !a.padMissing || a.placeholder == nil {
				short = append(short, fmt.Sprintf("%s(%d/%d)", meta.ID, len(section.Items), models.ItemsPerSection))
			} else {
				for i := 0; i < missing; i++ {
					section.Items = append(section.Items, a.placeholder(meta))
				}
			}
		}
		sections = append(sections, section)
	}

	if len(short) > 0 {
		return nil, fmt.Errorf("%w: short sections %s", ErrIncomplete, strings.Join(short, ", "))
	}

	id := 1
	for s := range sections {
		for i := range sections[s].Items {
			sections[s].Items[i].ID = id
			sections[s].Items[i].EnsureSlices()
			id++
		}
	}

	if err := Validate(sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// Validate checks the final shape: every section full, ids exactly 1..N in
// canonical order
func Validate(sections []models.Section) error {
	if len(sections) != len(models.SectionCatalog) {
		return fmt.Errorf("%w: %d sections, want %d", ErrIncomplete, len(sections), len(models.SectionCatalog))
	}

	next := 1
	for i, s := range sections {
		if s.ID != models.SectionCatalog[i].ID {
			return fmt.Errorf("%w: section %d is %q, want %q", ErrIncomplete, i, s.ID, models.SectionCatalog[i].ID)
		}
		if len(s.Items) != models.ItemsPerSection {
			return fmt.Errorf("%w: section %s has %d items", ErrIncomplete, s.ID, len(s.Items))
		}
		for _, item := range s.Items {
			if item.ID != next {
				return fmt.Errorf("%w: item id %d out of sequence, want %d", ErrIncomplete, item.ID, next)
			}
			next++
		}
	}

	if total := next - 1; total != models.TotalItems() {
		return fmt.Errorf("%w: %d items, want %d", ErrIncomplete, total, models.TotalItems())
	}
	return nil
}

// Count returns the number of items and placeholders in the sections
func Count(sections []models.Section) (total, placeholders int) {
	for _, s := range sections {
		for _, item := range s.Items {
			total++
			if item.IsPlaceholder() {
				placeholders++
			}
		}
	}
	return total, placeholders
}
