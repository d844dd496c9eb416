package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"Go_Share/internal/storage"
)

// MaxExtensionLength bounds the suffix kept from the uploaded filename, dot included.
const MaxExtensionLength = 32

// StoredFile is where an upload ended up.
type StoredFile struct {
	// Location is folder/displayName, the path before zipping.
	Location string
	Folder   string
	// Name is the identifier plus the original extension.
	Name string
}

// StagedFile is a zipped upload not yet visible under its artifact name.
type StagedFile struct {
	StoredFile
	zipPath string
}

// FileStore writes uploads into the downloads folder as single-entry zip archives.
type FileStore struct {
	folder string
	store  storage.Store
}

// NewFileStore creates folder if needed and hands finished zips to store.
func NewFileStore(folder string, store storage.Store) (*FileStore, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create downloads folder %s: %w", folder, err)
	}
	return &FileStore{folder: folder, store: store}, nil
}

// FileExtension returns the suffix of the base name from its last dot, dot included.
// Dotfiles without another dot and names ending in a dot have no extension.
func FileExtension(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	idx := strings.LastIndex(base, ".")
	if idx <= 0 || idx == len(base)-1 {
		return ""
	}
	return base[idx:]
}

// Stage writes r to a uniquely named raw file in the folder, zips it with the entry
// name id[.ext] and removes the raw copy. The artifact name stays untouched until
// Commit, so a losing upload for the same id never replaces the winner's zip.
func (s *FileStore) Stage(ctx context.Context, r io.Reader, originalFilename, id string) (*StagedFile, error) {
	name := id + FileExtension(originalFilename)

	raw, err := os.CreateTemp(s.folder, name+".*.part")
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	rawPath := raw.Name()
	zipPath := rawPath + ".zip"

	if err := writeFile(raw, &contextReader{ctx: ctx, r: r}); err != nil {
		_ = os.Remove(rawPath)
		return nil, err
	}
	if err := ZipFile(rawPath, zipPath, name); err != nil {
		_ = os.Remove(rawPath)
		return nil, fmt.Errorf("zip %s: %w", name, err)
	}
	if err := os.Remove(rawPath); err != nil {
		_ = os.Remove(zipPath)
		return nil, fmt.Errorf("remove raw upload: %w", err)
	}

	return &StagedFile{
		StoredFile: StoredFile{
			Location: filepath.ToSlash(filepath.Join(s.folder, name)),
			Folder:   filepath.ToSlash(s.folder),
			Name:     name,
		},
		zipPath: zipPath,
	}, nil
}

// Commit publishes a staged zip as the artifact name+".zip".
func (s *FileStore) Commit(ctx context.Context, staged *StagedFile) error {
	if err := s.store.PutFile(ctx, staged.Name+".zip", staged.zipPath); err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}
	return nil
}

// Discard removes a staged zip that will not be committed.
func (s *FileStore) Discard(staged *StagedFile) error {
	err := os.Remove(staged.zipPath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func writeFile(f *os.File, r io.Reader) (err error) {
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(f, r)
	return err
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
