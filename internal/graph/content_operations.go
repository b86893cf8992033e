package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"neurograph/pkg/errors"
)

// ============================================================================
// Category & Content Operations
// ============================================================================

const snippetLength = 200

// contentFromRecord shapes a query record into a Content entity. A missing
// snippet falls back to a truncated prefix of the full text.
func contentFromRecord(record *neo4j.Record) Content {
	c := Content{
		ID:        getStringFromRecord(record, "id"),
		Title:     getStringFromRecord(record, "title"),
		Content:   getStringFromRecord(record, "content"),
		Snippet:   getStringFromRecord(record, "snippet"),
		Timestamp: getStringFromRecord(record, "timestamp"),
		Tags:      getStringSliceFromRecord(record, "tags"),
		Category:  getStringFromRecord(record, "category"),
		Score:     getFloat64FromRecord(record, "score"),
	}
	if c.Snippet == "" && c.Content != "" {
		if len(c.Content) > snippetLength {
			c.Snippet = c.Content[:snippetLength] + "..."
		} else {
			c.Snippet = c.Content
		}
	}
	return c
}

// ListCategories returns every category with its derived content count,
// ordered by name ascending.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	query := `
		MATCH (c:Category)
		OPTIONAL MATCH (c)-[:CONTAINS]->(n:Content)
		RETURN c.id AS id, c.name AS name, coalesce(c.depth, 0) AS depth, count(n) AS content_count
		ORDER BY name ASC
	`

	records, err := r.Run(ctx, query, nil)
	if err != nil {
		return nil, errors.NewGraphQueryFailed("list categories", err)
	}

	categories := make([]Category, 0, len(records))
	for _, record := range records {
		categories = append(categories, Category{
			ID:           getStringFromRecord(record, "id"),
			Name:         getStringFromRecord(record, "name"),
			Depth:        getIntFromRecord(record, "depth"),
			ContentCount: getInt64FromRecord(record, "content_count"),
		})
	}
	return categories, nil
}

// ContentByCategory returns up to limit content records for a category,
// ordered by timestamp descending.
func (r *Repository) ContentByCategory(ctx context.Context, categoryID string, limit int) ([]Content, error) {
	if limit < 1 {
		limit = 20
	}

	query := `
		MATCH (c:Category {id: $categoryID})-[:CONTAINS]->(n:Content)
		RETURN n.id AS id, n.title AS title, n.content AS content, n.snippet AS snippet,
		       n.timestamp AS timestamp, n.tags AS tags, c.name AS category
		ORDER BY n.timestamp DESC
		LIMIT $limit
	`

	records, err := r.Run(ctx, query, map[string]interface{}{
		"categoryID": categoryID,
		"limit":      limit,
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("content by category", err)
	}

	contents := make([]Content, 0, len(records))
	for _, record := range records {
		contents = append(contents, contentFromRecord(record))
	}
	return contents, nil
}

// ContentByID returns a single content record with its owning category name.
func (r *Repository) ContentByID(ctx context.Context, id string) (*Content, error) {
	query := `
		MATCH (c:Category)-[:CONTAINS]->(n:Content {id: $id})
		RETURN n.id AS id, n.title AS title, n.content AS content, n.snippet AS snippet,
		       n.timestamp AS timestamp, n.tags AS tags, c.name AS category
	`

	records, err := r.Run(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("content by id", err)
	}
	if len(records) == 0 {
		return nil, errors.NewNotFound("content", id)
	}

	content := contentFromRecord(records[0])
	return &content, nil
}

// Stats aggregates content counts across the graph in a single pass.
func (r *Repository) Stats(ctx context.Context) (*ContentStats, error) {
	query := `
		MATCH (c:Category)
		OPTIONAL MATCH (c)-[:CONTAINS]->(n:Content)
		RETURN c.name AS category, count(n) AS count
		ORDER BY count DESC
	`

	records, err := r.Run(ctx, query, nil)
	if err != nil {
		return nil, errors.NewGraphQueryFailed("content stats", err)
	}

	stats := &ContentStats{PerCategory: make([]CategoryCount, 0, len(records))}
	for _, record := range records {
		count := getInt64FromRecord(record, "count")
		stats.PerCategory = append(stats.PerCategory, CategoryCount{
			Category: getStringFromRecord(record, "category"),
			Count:    count,
		})
		stats.TotalContents += count
		stats.TotalCategories++
	}
	return stats, nil
}
