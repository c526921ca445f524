package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskhive/task-api/internal/pkg/config"
)

const (
	appName          = "task-api"
	connectTimeout   = 10 * time.Second
	selectionTimeout = 5 * time.Second
)

// clientOptions builds the driver options for this service: the configured
// URI plus a client name for server-side logs and bounded timeouts so a dead
// cluster fails startup instead of hanging it.
func clientOptions(cfg config.MongoConfig) *options.ClientOptions {
	return options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(selectionTimeout)
}

// Connect opens the MongoDB client backing the user, task and audit
// repositories, verifies connectivity with a ping, and returns the client
// together with the configured database handle.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}
