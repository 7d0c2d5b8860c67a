package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/holoshare/holoshare-backend/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

// Client wraps mongo.Client with the database handle the service uses
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	logger   *logger.Logger
}

// New connects to the document store at the given URL and returns a
// client bound to the named database. The connection is verified with a
// ping so callers learn about unreachable servers at startup.
func New(url, dbName string, log *logger.Logger) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("database url is empty")
	}
	if dbName == "" {
		dbName = "holoshare"
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), pingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		// Keep the handle; the server may come up later. Callers decide
		// whether a failed ping is fatal.
		log.Warn("mongodb ping failed", zap.Error(err))
	} else {
		log.Info("mongodb connected successfully", zap.String("database", dbName))
	}

	return &Client{
		client:   client,
		database: client.Database(dbName),
		logger:   log,
	}, nil
}

// Database returns the bound database handle
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Collection returns a collection handle by name
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Ping verifies the server is reachable
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.client.Ping(ctx, readpref.Primary())
}

// ListCollectionNames returns up to limit collection names from the
// bound database
func (c *Client) ListCollectionNames(ctx context.Context, limit int) ([]string, error) {
	names, err := c.database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// Close disconnects from the server
func (c *Client) Close(ctx context.Context) error {
	c.logger.Info("closing mongodb connection")
	return c.client.Disconnect(ctx)
}
