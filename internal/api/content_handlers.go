package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"neurograph/internal/graph"
	"neurograph/pkg/errors"
)

const (
	defaultSearchLimit   = 10
	defaultContentsLimit = 20
	defaultGraphNodeCap  = 100

	// Graph sample bounds: only the first categories are walked, and only a
	// small fixed sample of each category's content.
	graphSampleCategories  = 25
	graphSamplePerCategory = 5
	popularSearchesKey     = "search:popular"
)

// Search handles GET /api/search?q&limit&category.
//
// The category filter is applied in memory over the already-limited result
// set, so the filtered count can be smaller than limit even when more matches
// exist. This mirrors the behavior the web console expects; pushing the filter
// into the store query would change result pages under it.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		h.respondError(c, errors.NewValidation("q", "query string is required"))
		return
	}
	limit := intQuery(c, "limit", defaultSearchLimit)
	category := c.Query("category")
	ctx := c.Request.Context()
	cacheKey := "search:" + query + ":" + strconv.Itoa(limit) + ":" + category

	if h.cache != nil {
		if err := h.cache.IncrScore(ctx, popularSearchesKey, query); err != nil {
			h.logger.Warn("Popular-search tracking failed", zap.Error(err))
		}

		if cached, ok, err := h.cache.Get(ctx, cacheKey); err != nil {
			h.logger.Warn("Search cache read failed", zap.Error(err))
		} else if ok {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}

	results, err := h.graph.SearchContent(ctx, query, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if category != "" {
		filtered := make([]graph.Content, 0, len(results))
		for _, r := range results {
			if r.Category == category {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}
	if results == nil {
		results = []graph.Content{}
	}

	response := gin.H{
		"results": results,
		"total":   len(results),
		"query":   query,
	}
	h.writeCached(c, cacheKey, response, h.searchTTL)
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		if cached, ok, err := h.cache.Get(ctx, "categories"); err != nil {
			h.logger.Warn("Category cache read failed", zap.Error(err))
		} else if ok {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}

	categories, err := h.graph.ListCategories(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if categories == nil {
		categories = []graph.Category{}
	}

	response := gin.H{
		"categories": categories,
		"total":      len(categories),
	}
	h.writeCached(c, "categories", response, h.categoryTTL)
}

// CategoryContents handles GET /api/categories/:id/contents?limit.
func (h *Handler) CategoryContents(c *gin.Context) {
	categoryID := c.Param("id")
	limit := intQuery(c, "limit", defaultContentsLimit)
	ctx := c.Request.Context()

	categories, err := h.graph.ListCategories(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var categoryName string
	found := false
	for _, cat := range categories {
		if cat.ID == categoryID {
			categoryName = cat.Name
			found = true
			break
		}
	}
	if !found {
		h.respondError(c, errors.NewNotFound("category", categoryID))
		return
	}

	contents, err := h.graph.ContentByCategory(ctx, categoryID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if contents == nil {
		contents = []graph.Content{}
	}

	c.JSON(http.StatusOK, gin.H{
		"category": gin.H{"id": categoryID, "name": categoryName},
		"contents": contents,
		"total":    len(contents),
	})
}

// ContentByID handles GET /api/conversations/:id.
func (h *Handler) ContentByID(c *gin.Context) {
	content, err := h.graph.ContentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// graphNode is one visualization node, sized by body length.
type graphNode struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Size     int    `json:"size"`
}

// graphEdge chains contents within a category for browsability; it carries no
// computed relationship.
type graphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GraphSample handles GET /api/graph?limit. It walks the first categories in
// listing order and takes a small fixed sample of each, stopping once the node
// cap is reached. The sample is order-dependent, not representative.
func (h *Handler) GraphSample(c *gin.Context) {
	nodeCap := intQuery(c, "limit", defaultGraphNodeCap)
	ctx := c.Request.Context()

	categories, err := h.graph.ListCategories(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if len(categories) > graphSampleCategories {
		categories = categories[:graphSampleCategories]
	}

	nodes := []graphNode{}
	edges := []graphEdge{}

	for _, cat := range categories {
		if len(nodes) >= nodeCap {
			break
		}

		contents, err := h.graph.ContentByCategory(ctx, cat.ID, graphSamplePerCategory)
		if err != nil {
			h.respondError(c, err)
			return
		}

		prevID := ""
		for _, content := range contents {
			if len(nodes) >= nodeCap {
				break
			}
			nodes = append(nodes, graphNode{
				ID:       content.ID,
				Label:    content.Title,
				Category: cat.Name,
				Size:     nodeSize(len(content.Content)),
			})
			if prevID != "" {
				edges = append(edges, graphEdge{Source: prevID, Target: content.ID})
			}
			prevID = content.ID
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"nodes": nodes,
		"edges": edges,
	})
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.graph.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_conversations": stats.TotalContents,
		"total_categories":    stats.TotalCategories,
		"by_category":         stats.PerCategory,
		// Timeline aggregation is owned by the sync pipeline; kept as a
		// placeholder for the console.
		"timeline": []interface{}{},
	})
}

// writeCached serializes the response once, writes it, and stores it in the
// cache with the given TTL. Cache write failures are logged, not surfaced.
func (h *Handler) writeCached(c *gin.Context, key string, response gin.H, ttl time.Duration) {
	body, err := json.Marshal(response)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), key, string(body), ttl); err != nil {
			h.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	c.Data(http.StatusOK, "application/json", body)
}

// nodeSize maps body length to a bounded visualization size.
func nodeSize(bodyLength int) int {
	size := 10 + bodyLength/200
	if size > 30 {
		size = 30
	}
	return size
}

func intQuery(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return defaultValue
	}
	return parsed
}
