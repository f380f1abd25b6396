// Package object stores binary blobs such as rendered resume PDFs.
package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open when no blob exists under the key.
var ErrNotFound = errors.New("object not found")

// Object describes a stored blob.
type Object struct {
	Key         string
	Size        int64
	ContentType string
}

// Store saves and retrieves blobs. Keys are namespaced by a hash of the owner.
type Store interface {
	Put(ctx context.Context, owner, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
