package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"Go_Share/internal/apperr"
	"Go_Share/internal/repo"
	"Go_Share/internal/storage"
	"Go_Share/model"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testBaseURL = "http://share.test"

type testEnv struct {
	svc    *FileService
	files  *repo.FileRepo
	folder string
}

func newTestEnv(t *testing.T, maxSize int64) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := repo.OpenDatabase("sqlite://" + filepath.Join(dir, "files.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	folder := filepath.Join(dir, "files_dir")
	artifacts, err := storage.NewLocalStore(folder)
	require.NoError(t, err)
	fileStore, err := NewFileStore(folder, artifacts)
	require.NoError(t, err)
	ids, err := NewIDGenerator(0)
	require.NoError(t, err)

	files := repo.NewFileRepo(db)
	svc := NewFileService(Options{
		Files:       files,
		FileStore:   fileStore,
		Artifacts:   artifacts,
		IDs:         ids,
		MaxFileSize: maxSize,
	})
	return &testEnv{svc: svc, files: files, folder: folder}
}

func (e *testEnv) upload(t *testing.T, name, content string) string {
	t.Helper()
	resp, err := e.svc.Upload(context.Background(), UploadInput{
		Reader:       strings.NewReader(content),
		Filename:     name,
		DeclaredSize: int64(len(content)),
		BaseURL:      testBaseURL,
	})
	require.NoError(t, err)
	return resp.FileID
}

func TestUploadAndStats(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	ctx := context.Background()

	resp, err := env.svc.Upload(ctx, UploadInput{
		Reader:       strings.NewReader("hello"),
		Filename:     "greeting.txt",
		DeclaredSize: 5,
		BaseURL:      testBaseURL,
	})
	require.NoError(t, err)
	require.True(t, IsValidFileID(resp.FileID))
	assert.Equal(t, testBaseURL+"/download/"+resp.FileID, resp.DownloadURL)
	assert.Equal(t, testBaseURL+"/qr/"+resp.FileID, resp.QRCode)

	stats, err := env.svc.Stats(ctx, resp.FileID, testBaseURL)
	require.NoError(t, err)
	assert.Equal(t, resp.FileID, stats.FileID)
	assert.Equal(t, resp.DownloadURL, stats.Link)
	assert.Equal(t, resp.QRCode, stats.QRCode)
	assert.Equal(t, 0, stats.Views)
	assert.False(t, stats.CreatedAt.IsZero())

	record, err := env.files.Get(ctx, resp.FileID)
	require.NoError(t, err)
	assert.Equal(t, resp.FileID+".txt", record.Name)
}

func TestDownloadCountsViews(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	ctx := context.Background()
	id := env.upload(t, "data.csv", "a,b\n1,2\n")

	for i := 0; i < 2; i++ {
		dl, err := env.svc.Download(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id+".csv.zip", dl.FileName)

		raw, err := io.ReadAll(dl.Body)
		require.NoError(t, err)
		require.NoError(t, dl.Body.Close())
		assert.EqualValues(t, len(raw), dl.Size)

		zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
		require.NoError(t, err)
		require.Len(t, zr.File, 1)
		assert.Equal(t, id+".csv", zr.File[0].Name)

		rc, err := zr.File[0].Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "a,b\n1,2\n", string(content))
	}

	stats, err := env.svc.Stats(ctx, id, testBaseURL)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Views)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	ctx := context.Background()
	id := env.upload(t, "x.bin", "x")
	upper := strings.ToUpper(id)

	stats, err := env.svc.Stats(ctx, upper, testBaseURL)
	require.NoError(t, err)
	assert.Equal(t, id, stats.FileID)

	dl, err := env.svc.Download(ctx, " "+upper+" ")
	require.NoError(t, err)
	require.NoError(t, dl.Body.Close())

	_, err = env.svc.QRCode(ctx, upper, testBaseURL)
	assert.NoError(t, err)
}

func TestUnknownFileID(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	ctx := context.Background()

	for _, id := range []string{"zzzz", "no", "bad-id!"} {
		_, err := env.svc.Stats(ctx, id, testBaseURL)
		assert.True(t, apperr.Is(err, apperr.NotFound), id)
		assert.Equal(t, msgFileNotFound, apperr.MessageOf(err))

		_, err = env.svc.Download(ctx, id)
		assert.True(t, apperr.Is(err, apperr.NotFound), id)

		_, err = env.svc.QRCode(ctx, id, testBaseURL)
		assert.True(t, apperr.Is(err, apperr.NotFound), id)
	}
}

func TestUploadTooLarge(t *testing.T) {
	env := newTestEnv(t, 10)

	_, err := env.svc.Upload(context.Background(), UploadInput{
		Reader:       strings.NewReader("0123456789a"),
		Filename:     "big.bin",
		DeclaredSize: 11,
		BaseURL:      testBaseURL,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.SizeLimitExceeded))
	assert.Equal(t, msgFileTooBig, apperr.MessageOf(err))
	assert.NoError(t, env.svc.CheckFileSize(10))

	count, err := env.svc.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCount(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	for i := 0; i < 3; i++ {
		env.upload(t, "f.txt", "x")
	}
	count, err := env.svc.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestQRCodeIsPNG(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	id := env.upload(t, "f.txt", "x")

	png, err := env.svc.QRCode(context.Background(), id, testBaseURL)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")))
}

type rejectFirstReserver struct {
	rejected []string
	released int
}

func (r *rejectFirstReserver) Reserve(_ context.Context, id string) (func(), bool, error) {
	if len(r.rejected) == 0 {
		r.rejected = append(r.rejected, id)
		return nil, false, nil
	}
	return func() { r.released++ }, true, nil
}

func TestUploadSkipsReservedIDs(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	reserver := &rejectFirstReserver{}
	env.svc.reserver = reserver

	id := env.upload(t, "f.txt", "x")
	require.Len(t, reserver.rejected, 1)
	assert.NotEqual(t, reserver.rejected[0], id)
	assert.Equal(t, 1, reserver.released)
}

type duplicateRepo struct {
	*repo.FileRepo
}

func (duplicateRepo) Exists(context.Context, string) (bool, error) {
	return false, nil
}

func (duplicateRepo) Create(context.Context, *model.FileRecord) error {
	return gorm.ErrDuplicatedKey
}

func TestUploadConflictKeepsWinnerArtifact(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	ctx := context.Background()
	winner := env.upload(t, "f.txt", "winner")

	// the next allocation hands out the winner's id again
	env.svc.ids = &IDGenerator{next: func() string { return winner }}
	env.svc.files = duplicateRepo{env.files}

	_, err := env.svc.Upload(ctx, UploadInput{
		Reader:   strings.NewReader("loser"),
		Filename: "f.txt",
		BaseURL:  testBaseURL,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Conflict))

	env.svc.files = env.files
	dl, err := env.svc.Download(ctx, winner)
	require.NoError(t, err)
	raw, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	require.NoError(t, dl.Body.Close())

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "winner", string(content))

	entries, err := os.ReadDir(env.folder)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "the losing upload leaves no staged files")
}

func TestUploadRejectsLongExtension(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	_, err := env.svc.Upload(context.Background(), UploadInput{
		Reader:   strings.NewReader("x"),
		Filename: "f." + strings.Repeat("e", 300),
		BaseURL:  testBaseURL,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.InvalidParams))
	assert.Equal(t, msgExtensionTooLong, apperr.MessageOf(err))

	id := env.upload(t, "f."+strings.Repeat("e", MaxExtensionLength-1), "x")
	record, err := env.files.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, record.Name, len(id)+MaxExtensionLength)
}

// slowReader yields one byte per read, forever.
type slowReader struct{ delay time.Duration }

func (r slowReader) Read(p []byte) (int, error) {
	time.Sleep(r.delay)
	p[0] = 'x'
	return 1, nil
}

func TestUploadTimeout(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	env.svc.uploadTimeout = 50 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		_, err := env.svc.Upload(context.Background(), UploadInput{
			Reader:   slowReader{delay: 5 * time.Millisecond},
			Filename: "slow.bin",
			BaseURL:  testBaseURL,
		})
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Equal(t, msgUploadTimedOut, apperr.MessageOf(err))
	case <-time.After(5 * time.Second):
		t.Fatal("upload ignored its timeout")
	}

	count, err := env.svc.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	entries, err := os.ReadDir(env.folder)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNormalizeFileID(t *testing.T) {
	assert.Equal(t, "ab12", NormalizeFileID("  AB12 "))
	assert.Equal(t, "http://h/download/ab12", DownloadURL("http://h", "ab12"))
	assert.Equal(t, "http://h/qr/ab12", QRURL("http://h", "ab12"))
}
