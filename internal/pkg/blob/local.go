package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalStore keeps blobs as files in a single flat directory
type LocalStore struct {
	root         string
	publicPrefix string
}

// NewLocalStore creates the storage root if absent and returns a store
// over it
func NewLocalStore(dir, publicPrefix string) (*LocalStore, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{
		root:         root,
		publicPrefix: publicPrefix,
	}, nil
}

// Root returns the absolute storage root directory
func (s *LocalStore) Root() string {
	return s.root
}

// Store writes data to a uniquely named file under the storage root
func (s *LocalStore) Store(_ context.Context, filename string, data []byte) (*StoredBlob, error) {
	name := uniqueName(filename, time.Now())
	path := filepath.Join(s.root, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", name, err)
	}

	return &StoredBlob{
		Name:        name,
		StoragePath: path,
		PublicURL:   publicURL(s.publicPrefix, name),
		Size:        int64(len(data)),
	}, nil
}

// Open returns a reader over the named file. The name is reduced to its
// base component first, so traversal sequences cannot escape the root.
func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, int64, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, 0, ErrNotFound
	}

	path := filepath.Join(s.root, base)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, 0, ErrNotFound
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", base, err)
	}
	return f, info.Size(), nil
}
