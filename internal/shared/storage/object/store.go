package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a storage key does not resolve to an object.
var ErrNotFound = errors.New("object not found")

// Stored describes an object after it has been written.
type Stored struct {
	// Name is the caller-supplied original file name.
	Name      string
	Key       string
	SizeBytes int64
	MimeType  string
}

// ObjectStore saves, opens, and removes uploaded documents.
type ObjectStore interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (Stored, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
