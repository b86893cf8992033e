package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"neurograph/internal/graph"
	"neurograph/internal/messaging"
	"neurograph/pkg/logger"
)

// GraphStore is the slice of the graph store client the routes depend on.
// Handlers take it as an interface so tests can substitute a fake.
type GraphStore interface {
	SearchContent(ctx context.Context, query string, limit int) ([]graph.Content, error)
	ListCategories(ctx context.Context) ([]graph.Category, error)
	ContentByCategory(ctx context.Context, categoryID string, limit int) ([]graph.Content, error)
	ContentByID(ctx context.Context, id string) (*graph.Content, error)
	Stats(ctx context.Context) (*graph.ContentStats, error)
}

// MessageStore is the messaging component surface used by the routes.
type MessageStore interface {
	ListChannels(ctx context.Context) ([]messaging.ChannelInfo, error)
	ListMessages(ctx context.Context, channel string, limit int, unreadOnly bool) ([]messaging.Message, error)
	ListSessions(ctx context.Context) ([]messaging.SessionInfo, error)
	Send(ctx context.Context, input messaging.SendInput) (*messaging.SendResult, error)
	GetThread(ctx context.Context, messageID string) ([]messaging.Message, error)
	MarkRead(ctx context.Context, ids []string) (int64, error)
	MessagingStats(ctx context.Context) (*messaging.Stats, error)
}

// Cache is the advisory cache surface. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	IncrScore(ctx context.Context, key, member string) error
}

// Handler holds the route dependencies.
type Handler struct {
	graph    GraphStore
	messages MessageStore
	cache    Cache
	logger   *zap.Logger

	categoryTTL time.Duration
	searchTTL   time.Duration
}

// NewHandler wires the route handlers. cache may be nil.
func NewHandler(graphStore GraphStore, messages MessageStore, cache Cache, categoryTTL, searchTTL time.Duration) *Handler {
	return &Handler{
		graph:       graphStore,
		messages:    messages,
		cache:       cache,
		logger:      logger.Get(),
		categoryTTL: categoryTTL,
		searchTTL:   searchTTL,
	}
}

// NewRouter builds the gin router with middleware and all routes registered.
func NewRouter(h *Handler, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", h.Health)

	api := router.Group("/api")
	{
		api.GET("/search", h.Search)
		api.GET("/categories", h.ListCategories)
		api.GET("/categories/:id/contents", h.CategoryContents)
		api.GET("/conversations/:id", h.ContentByID)
		api.GET("/graph", h.GraphSample)
		api.GET("/stats", h.Stats)

		cc := api.Group("/corpus-callosum")
		{
			cc.GET("/channels", h.ListChannels)
			cc.GET("/messages", h.ListMessages)
			cc.GET("/sessions", h.ListSessions)
			cc.POST("/send", h.SendMessage)
			cc.GET("/thread/:messageId", h.GetThread)
			cc.POST("/mark-read", h.MarkRead)
			cc.GET("/stats", h.MessagingStats)
		}
	}

	return router
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// requestLogger is a zap logging middleware for gin
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
