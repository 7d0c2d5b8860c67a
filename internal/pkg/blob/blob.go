package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"
)

// ErrNotFound is returned when a named blob does not exist
var ErrNotFound = errors.New("blob not found")

// StoredBlob describes one successfully written blob
type StoredBlob struct {
	// Name is the generated storage name, unique per call
	Name string
	// StoragePath is the internal location of the bytes; never exposed
	// to clients
	StoragePath string
	// PublicURL is the server-relative path the blob is served from
	PublicURL string
	// Size is the number of bytes written
	Size int64
}

// Store is the blob storage contract: durable byte storage under a
// generated name, and retrieval by that name.
type Store interface {
	// Store writes data under a collision-resistant name derived from
	// filename and returns where it landed
	Store(ctx context.Context, filename string, data []byte) (*StoredBlob, error)
	// Open returns a reader over the named blob and its size, or
	// ErrNotFound
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
}

// uniqueName prefixes the base component of filename with a UTC
// timestamp at microsecond precision. Two calls in the same microsecond
// colliding is accepted as probabilistically negligible.
func uniqueName(filename string, now time.Time) string {
	base := filepath.Base(filename)
	t := now.UTC()
	return fmt.Sprintf("%s%06d_%s", t.Format("20060102150405"), t.Nanosecond()/1000, base)
}

// publicURL joins the configured prefix with a generated name
func publicURL(prefix, name string) string {
	return path.Join("/", prefix, name)
}

// sanitizeName reduces a client-supplied name to its base component so
// retrieval cannot escape the storage root
func sanitizeName(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return ""
	}
	return base
}
