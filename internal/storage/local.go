package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps artifacts in a directory on disk.
type LocalStore struct {
	root string
}

// NewLocalStore creates root if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(object string) string {
	return filepath.Join(s.root, filepath.Base(object))
}

// PutFile moves path into the store. A file already in place is left alone.
func (s *LocalStore) PutFile(_ context.Context, object, path string) error {
	dst := s.path(object)
	if filepath.Clean(path) == filepath.Clean(dst) {
		return nil
	}
	return os.Rename(path, dst)
}

// GetObject opens an artifact for reading.
func (s *LocalStore) GetObject(_ context.Context, object string) (io.ReadCloser, ObjectInfo, error) {
	f, err := os.Open(s.path(object))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ObjectInfo{}, err
	}
	return f, ObjectInfo{ObjectName: object, Size: stat.Size()}, nil
}

// RemoveObject deletes an artifact; a missing one is not an error.
func (s *LocalStore) RemoveObject(_ context.Context, object string) error {
	err := os.Remove(s.path(object))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
