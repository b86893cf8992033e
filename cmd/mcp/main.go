package main

import (
	"context"
	"fmt"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"neurograph/internal/graph"
	"neurograph/internal/mcp"
	"neurograph/pkg/config"
	"neurograph/pkg/logger"
)

const version = "1.0.0"

func main() {
	// MCP uses stdio transport: stdout must stay pure JSON-RPC, so all
	// diagnostics go to stderr (zap's development config writes there).
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	graphRepo := graph.NewRepository(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err := graphRepo.Connect(ctx); err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer graphRepo.Close(context.Background())

	server := mcp.NewServer(graphRepo, version)

	log.Info("MCP server starting on stdio")
	if err := server.Run(ctx, mcpsdk.NewStdioTransport()); err != nil {
		log.Fatal("MCP server exited", zap.Error(err))
	}
}
