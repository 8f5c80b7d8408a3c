package shared

import (
	"context"
	"time"
)

// --- Storage Interfaces ---

// ObjectInfo describes one stored object under a prefix. Updated is the
// object's last-modified time, which callers use to pick the latest bundle.
type ObjectInfo struct {
	Name    string
	Updated time.Time
}

type BlobStore interface {
	Write(ctx context.Context, bucket, object string, data []byte) error
	Read(ctx context.Context, bucket, object string) ([]byte, error)
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}

// --- Secrets Interfaces ---

type SecretStore interface {
	GetSecret(ctx context.Context, projectID, name string) (string, error)
}
