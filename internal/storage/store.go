package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when an artifact is missing from the backend.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored artifact.
type ObjectInfo struct {
	ObjectName string
	Size       int64
}

// Store abstracts where finished zip artifacts are kept.
type Store interface {
	// PutFile takes ownership of the local file at path and stores it as object.
	PutFile(ctx context.Context, object, path string) error
	GetObject(ctx context.Context, object string) (io.ReadCloser, ObjectInfo, error)
	RemoveObject(ctx context.Context, object string) error
}
