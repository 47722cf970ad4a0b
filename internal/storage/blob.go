// Package storage provides the blob stores used for user avatars.
package storage

import (
	"context"
	"io"
)

// BlobStore persists opaque binary objects under a key and returns a reference to them.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}
