package mcp

import (
	"fmt"
	"strings"

	"neurograph/internal/graph"
)

// ============================================================================
// Text Presenters
//
// Tool results are human-readable text blocks, not raw JSON: the consuming
// assistant reads them directly into its context.
// ============================================================================

// FormatSearchResults renders search hits as a readable summary.
func FormatSearchResults(query string, results []graph.Content) string {
	if len(results) == 0 {
		return fmt.Sprintf("No memories found for %q.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d memories for %q:\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s", i+1, r.Title)
		if r.Category != "" {
			fmt.Fprintf(&b, " [%s]", r.Category)
		}
		if r.Score > 0 {
			fmt.Fprintf(&b, " (score: %.2f)", r.Score)
		}
		b.WriteString("\n")
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
		fmt.Fprintf(&b, "   id: %s | %s\n\n", r.ID, r.Timestamp)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCategoryContents renders a category's content listing.
func FormatCategoryContents(categoryID string, contents []graph.Content) string {
	if len(contents) == 0 {
		return fmt.Sprintf("Category %q has no contents.", categoryID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d items in category %q:\n\n", len(contents), categoryID)
	for i, item := range contents {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, item.Title, item.Timestamp)
		if item.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", item.Snippet)
		}
		fmt.Fprintf(&b, "   id: %s\n\n", item.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatConversation renders a single content record in full.
func FormatConversation(content *graph.Content) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", content.Title)
	fmt.Fprintf(&b, "Category: %s\n", content.Category)
	fmt.Fprintf(&b, "Timestamp: %s\n", content.Timestamp)
	if len(content.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(content.Tags, ", "))
	}
	b.WriteString("\n")
	b.WriteString(content.Content)
	return b.String()
}

// FormatCategories renders the category list with content counts.
func FormatCategories(categories []graph.Category) string {
	if len(categories) == 0 {
		return "No categories found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d categories:\n\n", len(categories))
	for _, cat := range categories {
		fmt.Fprintf(&b, "- %s (%d items) [id: %s]\n", cat.Name, cat.ContentCount, cat.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatError renders a failure for the assistant to read and self-correct.
func FormatError(message string) string {
	return "Error: " + message
}
