package graph

// ============================================================================
// Graph Entity Types
// ============================================================================

// Category represents a topical grouping of content
type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Depth        int    `json:"depth"`
	ContentCount int64  `json:"content_count"`
}

// Content represents a single stored document/conversation
type Content struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Snippet   string   `json:"snippet,omitempty"`
	Timestamp string   `json:"timestamp"`
	Tags      []string `json:"tags,omitempty"`
	Category  string   `json:"category,omitempty"`
	Score     float64  `json:"score,omitempty"`
}

// CategoryCount is a per-category content tally for the stats endpoint
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// ContentStats aggregates content counts across the graph
type ContentStats struct {
	TotalContents   int64           `json:"total_conversations"`
	TotalCategories int64           `json:"total_categories"`
	PerCategory     []CategoryCount `json:"by_category"`
}
