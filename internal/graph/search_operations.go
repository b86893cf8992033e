package graph

import (
	"context"

	"go.uber.org/zap"

	"neurograph/pkg/errors"
)

// ============================================================================
// Search Operations
// ============================================================================

// fulltextIndexName is the store-native index over Content title and body,
// maintained by the external sync pipeline.
const fulltextIndexName = "contentSearch"

// SearchContent performs a full-text relevance search over content. When the
// full-text index is unavailable the search degrades to a substring match over
// title and body, ordered by title, with a uniform score of 1.0. The degraded
// path is logged for operator visibility but is not an error.
func (r *Repository) SearchContent(ctx context.Context, query string, limit int) ([]Content, error) {
	if limit < 1 {
		limit = 10
	}

	fulltextQuery := `
		CALL db.index.fulltext.queryNodes($indexName, $query) YIELD node, score
		MATCH (c:Category)-[:CONTAINS]->(node)
		RETURN node.id AS id, node.title AS title, node.content AS content, node.snippet AS snippet,
		       node.timestamp AS timestamp, node.tags AS tags, c.name AS category, score
		ORDER BY score DESC
		LIMIT $limit
	`

	records, err := r.Run(ctx, fulltextQuery, map[string]interface{}{
		"indexName": fulltextIndexName,
		"query":     query,
		"limit":     limit,
	})
	if err != nil {
		if err == errors.ErrGraphNotConnected {
			return nil, err
		}
		r.logger.Warn("Full-text index unavailable, falling back to substring search",
			zap.String("index", fulltextIndexName),
			zap.Error(err),
		)
		return r.substringSearch(ctx, query, limit)
	}

	results := make([]Content, 0, len(records))
	for _, record := range records {
		results = append(results, contentFromRecord(record))
	}
	return results, nil
}

// substringSearch is the degraded-mode path: a case-sensitive CONTAINS match
// ordered by title ascending. Callers must not assume score-based ordering
// here.
func (r *Repository) substringSearch(ctx context.Context, query string, limit int) ([]Content, error) {
	fallbackQuery := `
		MATCH (c:Category)-[:CONTAINS]->(n:Content)
		WHERE n.title CONTAINS $query OR n.content CONTAINS $query
		RETURN n.id AS id, n.title AS title, n.content AS content, n.snippet AS snippet,
		       n.timestamp AS timestamp, n.tags AS tags, c.name AS category, 1.0 AS score
		ORDER BY title ASC
		LIMIT $limit
	`

	records, err := r.Run(ctx, fallbackQuery, map[string]interface{}{
		"query": query,
		"limit": limit,
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("substring search", err)
	}

	results := make([]Content, 0, len(records))
	for _, record := range records {
		results = append(results, contentFromRecord(record))
	}
	return results, nil
}
