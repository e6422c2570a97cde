package issue

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bilgisen/weeklyissue/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeholder(meta models.SectionMeta) models.NewsItem {
	return models.NewsItem{
		Title:  "placeholder " + meta.ID,
		URL:    models.NoLink,
		Tags:   append([]string(nil), models.PlaceholderTags...),
		Source: "brand",
	}.AsPlaceholder()
}

func items(section string, n int) []models.NewsItem {
	out := make([]models.NewsItem, n)
	for i := range out {
		out[i] = models.NewsItem{Title: fmt.Sprintf("%s-%d", section, i+1), URL: "https://example.com"}
	}
	return out
}

func fullInput() map[string][]models.NewsItem {
	input := make(map[string][]models.NewsItem)
	for _, id := range models.SectionIDs() {
		input[id] = items(id, models.ItemsPerSection)
	}
	return input
}

func TestAssembleAssignsContinuousIDs(t *testing.T) {
	sections, err := NewAssembler(placeholder, true).Assemble(fullInput())
	require.NoError(t, err)
	require.Len(t, sections, 6)

	id := 1
	for s, section := range sections {
		assert.Equal(t, models.SectionCatalog[s], section.SectionMeta)
		for i, item := range section.Items {
			assert.Equal(t, id, item.ID)
			assert.Equal(t, fmt.Sprintf("%s-%d", section.ID, i+1), item.Title)
			assert.NotNil(t, item.Tags)
			id++
		}
	}
	assert.Equal(t, 31, id)
}

func TestAssembleIgnoresInputOrder(t *testing.T) {
	// Build the map in reverse catalog order; map iteration order must not
	// leak into the result either
	input := make(map[string][]models.NewsItem)
	ids := models.SectionIDs()
	for i := len(ids) - 1; i >= 0; i-- {
		input[ids[i]] = items(ids[i], models.ItemsPerSection)
	}

	for run := 0; run < 5; run++ {
		sections, err := NewAssembler(placeholder, true).Assemble(input)
		require.NoError(t, err)
		for s, section := range sections {
			assert.Equal(t, ids[s], section.ID)
			assert.Equal(t, s*models.ItemsPerSection+1, section.Items[0].ID)
		}
	}
}

func TestAssemblePadsShortSections(t *testing.T) {
	input := fullInput()
	input["summer"] = items("summer", 4)
	input["competitions"] = items("competitions", 4)

	sections, err := NewAssembler(placeholder, true).Assemble(input)
	require.NoError(t, err)

	total, placeholders := Count(sections)
	assert.Equal(t, 30, total)
	assert.Equal(t, 2, placeholders)

	summer := sections[4]
	require.Equal(t, "summer", summer.ID)
	last := summer.Items[4]
	assert.True(t, last.IsPlaceholder())
	assert.Equal(t, []string{"System", "Update"}, last.Tags)
	assert.Equal(t, 25, last.ID)
}

func TestAssembleMissingSectionIsEmpty(t *testing.T) {
	input := fullInput()
	delete(input, "education")

	sections, err := NewAssembler(placeholder, true).Assemble(input)
	require.NoError(t, err)

	for _, item := range sections[1].Items {
		assert.True(t, item.IsPlaceholder())
	}
	assert.Equal(t, 6, sections[1].Items[0].ID)
}

func TestAssembleTruncatesExtraItems(t *testing.T) {
	input := fullInput()
	input["global"] = items("global", 8)

	sections, err := NewAssembler(placeholder, true).Assemble(input)
	require.NoError(t, err)

	assert.Len(t, sections[0].Items, 5)
	assert.Equal(t, "global-5", sections[0].Items[4].Title)
	assert.Equal(t, 6, sections[1].Items[0].ID)
}

func TestAssembleWithoutPaddingAborts(t *testing.T) {
	input := fullInput()
	input["design"] = items("design", 3)

	sections, err := NewAssembler(placeholder, false).Assemble(input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncomplete))
	assert.Contains(t, err.Error(), "design(3/5)")
	assert.Nil(t, sections)
}

func TestAssembleDoesNotMutateInput(t *testing.T) {
	input := fullInput()
	_, err := NewAssembler(placeholder, true).Assemble(input)
	require.NoError(t, err)

	for _, list := range input {
		for _, item := range list {
			assert.Zero(t, item.ID)
		}
	}
}

func TestValidate(t *testing.T) {
	sections, err := NewAssembler(placeholder, true).Assemble(fullInput())
	require.NoError(t, err)
	require.NoError(t, Validate(sections))

	sections[2].Items[0].ID = 99
	assert.ErrorIs(t, Validate(sections), ErrIncomplete)

	assert.ErrorIs(t, Validate(sections[:5]), ErrIncomplete)
}
