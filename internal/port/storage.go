package port

import "context"

// ObjectStorage abstracts the bucket that holds anonymized case folders.
type ObjectStorage interface {
	// ListKeys returns all object keys under prefix.
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	// Download fetches a single object.
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}
