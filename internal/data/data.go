package data

import (
	"context"
	"fmt"
	"time"

	"github.com/holoshare/holoshare-backend/internal/conf"
	"github.com/holoshare/holoshare-backend/internal/pkg/blob"
	"github.com/holoshare/holoshare-backend/internal/pkg/logger"
	"github.com/holoshare/holoshare-backend/internal/pkg/mongodb"
	"go.uber.org/zap"
)

// Data holds the external collaborators of the service
type Data struct {
	// Mongo is nil when DATABASE_URL is unset or the connection could
	// not be established; the service then runs with metadata
	// operations disabled
	Mongo *mongodb.Client
	Blobs blob.Store
}

// NewData initializes the blob store and, when configured, the metadata
// store connection. A failed metadata connection degrades the service
// instead of aborting startup.
func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	blobs, err := newBlobStore(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init blob store: %w", err)
	}

	var mongoClient *mongodb.Client
	if config.Database.Enabled() {
		mongoClient, err = mongodb.New(config.Database.URL, config.Database.Name, log)
		if err != nil {
			log.Warn("metadata store unavailable, running degraded", zap.Error(err))
			mongoClient = nil
		}
	} else {
		log.Warn("DATABASE_URL not set, metadata operations disabled")
	}

	d := &Data{
		Mongo: mongoClient,
		Blobs: blobs,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if d.Mongo != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := d.Mongo.Close(ctx); err != nil {
				log.Error("failed to close mongodb connection", zap.Error(err))
			}
		}
	}

	return d, cleanup, nil
}

func newBlobStore(config *conf.Config) (blob.Store, error) {
	switch config.Storage.Backend {
	case "", "local":
		return blob.NewLocalStore(config.Storage.Dir, config.Storage.PublicPrefix)
	case "minio":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return blob.NewMinIOStore(ctx, blob.MinIOConfig{
			Endpoint:  config.MinIO.Endpoint,
			AccessKey: config.MinIO.AccessKey,
			SecretKey: config.MinIO.SecretKey,
			UseSSL:    config.MinIO.UseSSL,
			Bucket:    config.MinIO.Bucket,
		}, config.Storage.PublicPrefix)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}
}
