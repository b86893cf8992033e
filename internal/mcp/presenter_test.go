package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"neurograph/internal/graph"
)

func TestFormatSearchResults_Empty(t *testing.T) {
	text := FormatSearchResults("quantum", nil)
	assert.Equal(t, `No memories found for "quantum".`, text)
}

func TestFormatSearchResults_NumbersAndScores(t *testing.T) {
	results := []graph.Content{
		{ID: "c1", Title: "First Note", Category: "Ideas", Score: 2.5, Snippet: "a preview", Timestamp: "2026-08-26T10:00:00Z"},
		{ID: "c2", Title: "Second Note", Score: 1.0, Timestamp: "2026-08-25T10:00:00Z"},
	}

	text := FormatSearchResults("note", results)
	assert.Contains(t, text, `Found 2 memories for "note":`)
	assert.Contains(t, text, "1. First Note [Ideas] (score: 2.50)")
	assert.Contains(t, text, "a preview")
	assert.Contains(t, text, "2. Second Note")
	assert.Contains(t, text, "id: c1")
}

func TestFormatCategoryContents_Empty(t *testing.T) {
	text := FormatCategoryContents("cat-1", nil)
	assert.Equal(t, `Category "cat-1" has no contents.`, text)
}

func TestFormatConversation_IncludesTags(t *testing.T) {
	content := &graph.Content{
		Title:     "Design Discussion",
		Category:  "Engineering",
		Timestamp: "2026-08-26T10:00:00Z",
		Tags:      []string{"design", "api"},
		Content:   "Full body here.",
	}

	text := FormatConversation(content)
	assert.Contains(t, text, "# Design Discussion")
	assert.Contains(t, text, "Category: Engineering")
	assert.Contains(t, text, "Tags: design, api")
	assert.Contains(t, text, "Full body here.")
}

func TestFormatCategories(t *testing.T) {
	categories := []graph.Category{
		{ID: "cat-1", Name: "Ideas", ContentCount: 4},
		{ID: "cat-2", Name: "Journal", ContentCount: 0},
	}

	text := FormatCategories(categories)
	assert.Contains(t, text, "2 categories:")
	assert.Contains(t, text, "- Ideas (4 items) [id: cat-1]")
	assert.Contains(t, text, "- Journal (0 items) [id: cat-2]")

	assert.Equal(t, "No categories found.", FormatCategories(nil))
}
