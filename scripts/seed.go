package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"neurograph/pkg/config"
	"neurograph/pkg/logger"
)

// Development seeder. Stands in for the external sync pipeline: creates the
// uniqueness constraints, the full-text index, and a handful of categories
// with sample content.
func main() {
	contentsPerCategory := flag.Int("contents", 5, "Sample contents per category")
	flag.Parse()

	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	if err := createSchema(ctx, driver); err != nil {
		log.Warn("Failed to create some schema objects (may already exist)", zap.Error(err))
	}

	categories := []struct {
		id   string
		name string
	}{
		{"cat-ideas", "Ideas"},
		{"cat-journal", "Journal"},
		{"cat-research", "Research"},
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, cat := range categories {
		_, err := session.Run(ctx, `
			MERGE (c:Category {id: $id})
			SET c.name = $name, c.depth = 0
		`, map[string]interface{}{"id": cat.id, "name": cat.name})
		if err != nil {
			log.Fatal("Failed to create category", zap.String("id", cat.id), zap.Error(err))
		}

		for i := 0; i < *contentsPerCategory; i++ {
			_, err := session.Run(ctx, `
				MATCH (c:Category {id: $categoryID})
				MERGE (n:Content {id: $id})
				SET n.title = $title,
				    n.content = $content,
				    n.timestamp = $timestamp,
				    n.tags = $tags
				MERGE (c)-[:CONTAINS]->(n)
			`, map[string]interface{}{
				"categoryID": cat.id,
				"id":         fmt.Sprintf("%s-sample-%d", cat.id, i),
				"title":      fmt.Sprintf("%s sample %d", cat.name, i+1),
				"content":    fmt.Sprintf("Sample %s content body number %d for local development.", cat.name, i+1),
				"timestamp":  time.Now().UTC().Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
				"tags":       []string{"sample", cat.id},
			})
			if err != nil {
				log.Fatal("Failed to create content", zap.Error(err))
			}
		}
		log.Info("Seeded category", zap.String("name", cat.name), zap.Int("contents", *contentsPerCategory))
	}

	log.Info("Seeding complete")
}

func createSchema(ctx context.Context, driver neo4j.DriverWithContext) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	statements := []string{
		"CREATE CONSTRAINT category_id IF NOT EXISTS FOR (c:Category) REQUIRE c.id IS UNIQUE",
		"CREATE CONSTRAINT content_id IF NOT EXISTS FOR (n:Content) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT corpus_message_id IF NOT EXISTS FOR (m:CorpusMessage) REQUIRE m.id IS UNIQUE",
		"CREATE FULLTEXT INDEX contentSearch IF NOT EXISTS FOR (n:Content) ON EACH [n.title, n.content]",
	}

	for _, stmt := range statements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return err
		}
	}
	return nil
}
