package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig holds object store connection settings
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// MinIOStore keeps blobs as objects in a single bucket. It is an
// alternative backend behind the same Store interface; generated names
// and public URLs are identical to the local backend's.
type MinIOStore struct {
	client       *minio.Client
	bucket       string
	publicPrefix string
}

// NewMinIOStore connects to the object store and ensures the bucket
// exists
func NewMinIOStore(ctx context.Context, cfg MinIOConfig, publicPrefix string) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStore{
		client:       client,
		bucket:       cfg.Bucket,
		publicPrefix: publicPrefix,
	}, nil
}

// Store uploads data under a uniquely named object
func (s *MinIOStore) Store(ctx context.Context, filename string, data []byte) (*StoredBlob, error) {
	name := uniqueName(filename, time.Now())

	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", name, err)
	}

	return &StoredBlob{
		Name:        name,
		StoragePath: fmt.Sprintf("minio://%s/%s", s.bucket, name),
		PublicURL:   publicURL(s.publicPrefix, name),
		Size:        int64(len(data)),
	}, nil
}

// Open returns a reader over the named object, or ErrNotFound
func (s *MinIOStore) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, 0, ErrNotFound
	}

	obj, err := s.client.GetObject(ctx, s.bucket, base, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get %s: %w", base, err)
	}

	// GetObject is lazy; Stat surfaces missing keys
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to stat %s: %w", base, err)
	}

	return obj, info.Size, nil
}
