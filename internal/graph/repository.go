package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"neurograph/pkg/errors"
	"neurograph/pkg/logger"
)

// Repository handles all Neo4j database operations. All mutable state lives in
// the store; the repository holds only the shared driver connection.
type Repository struct {
	uri      string
	user     string
	password string
	driver   neo4j.DriverWithContext
	logger   *zap.Logger
}

// NewRepository creates a graph repository. Connect must be called before any
// query method is used.
func NewRepository(uri, user, password string) *Repository {
	return &Repository{
		uri:      uri,
		user:     user,
		password: password,
		logger:   logger.Get(),
	}
}

// Connect establishes the driver connection and verifies it with a liveness
// probe. It fails fast if the store is unreachable or credentials are rejected.
func (r *Repository) Connect(ctx context.Context) error {
	driver, err := neo4j.NewDriverWithContext(
		r.uri,
		neo4j.BasicAuth(r.user, r.password, ""),
	)
	if err != nil {
		return errors.NewGraphConnectionFailed(r.uri, err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return errors.NewGraphConnectionFailed(r.uri, err)
	}

	r.driver = driver
	r.logger.Info("Connected to Neo4j", zap.String("uri", r.uri))
	return nil
}

// Close releases the driver connection. Safe to call when already closed.
func (r *Repository) Close(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}
	err := r.driver.Close(ctx)
	r.driver = nil
	return err
}

// Run executes a single parametrized query in its own session and returns the
// collected records. The session is released on every exit path.
func (r *Repository) Run(ctx context.Context, query string, params map[string]interface{}) ([]*neo4j.Record, error) {
	if r.driver == nil {
		return nil, errors.ErrGraphNotConnected
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}

	// Collect before the session closes; records are invalid afterwards.
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}
