package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"neurograph/internal/api"
	"neurograph/internal/cache"
	"neurograph/internal/graph"
	"neurograph/internal/messaging"
	"neurograph/pkg/config"
	"neurograph/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Connect to Neo4j; fail fast if the store is unreachable
	ctx := context.Background()
	graphRepo := graph.NewRepository(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err := graphRepo.Connect(ctx); err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer graphRepo.Close(context.Background())

	// Connect to Redis; the cache is advisory, so a failure degrades to
	// uncached reads instead of aborting startup
	var cacheClient api.Cache
	redisClient := cache.NewClient(cfg.RedisAddr())
	if err := redisClient.Ping(ctx); err != nil {
		log.Warn("Cache unavailable, serving uncached", zap.Error(err))
	} else {
		cacheClient = redisClient
		defer redisClient.Close()
	}

	// Wire dependencies
	messagingService := messaging.NewService(graphRepo)
	handler := api.NewHandler(graphRepo, messagingService, cacheClient, cfg.CategoryCacheTTL, cfg.SearchCacheTTL)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(handler, log)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
