package repo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"Go_Share/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRecord(id string) *model.FileRecord {
	return &model.FileRecord{
		ID:       id,
		Location: "files_dir/" + id + ".txt",
		Folder:   "files_dir",
		Name:     id + ".txt",
	}
}

func TestFileRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	files := NewFileRepo(openTestDB(t))

	exists, err := files.Exists(ctx, "abcd")
	require.NoError(t, err)
	assert.False(t, exists)

	rec := newRecord("abcd")
	rec.Views = 5
	require.NoError(t, files.Create(ctx, rec))

	exists, err = files.Exists(ctx, "abcd")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = files.Exists(ctx, "ABCD")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := files.Get(ctx, "abcd")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Views)
	assert.Equal(t, "abcd.txt", got.Name)
	assert.Equal(t, "abcd.txt.zip", got.ArtifactName())
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, files.IncrementViews(ctx, "abcd"))
	got, err = files.Get(ctx, "abcd")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)

	count, err := files.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	assert.NoError(t, files.Ping(ctx))
}

func TestFileRepoMissing(t *testing.T) {
	ctx := context.Background()
	files := NewFileRepo(openTestDB(t))

	_, err := files.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, files.IncrementViews(ctx, "nope"), ErrRecordNotFound)
}

func TestFileRepoDelete(t *testing.T) {
	ctx := context.Background()
	files := NewFileRepo(openTestDB(t))
	require.NoError(t, files.Create(ctx, newRecord("gone")))

	require.NoError(t, files.Delete(ctx, "gone"))
	require.NoError(t, files.Delete(ctx, "gone"))
	_, err := files.Get(ctx, "gone")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestFileRepoDuplicateKey(t *testing.T) {
	ctx := context.Background()
	files := NewFileRepo(openTestDB(t))

	require.NoError(t, files.Create(ctx, newRecord("dup1")))
	err := files.Create(ctx, newRecord("dup1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestFileRepoConcurrentViews(t *testing.T) {
	ctx := context.Background()
	files := NewFileRepo(openTestDB(t))
	require.NoError(t, files.Create(ctx, newRecord("hot1")))

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, files.IncrementViews(ctx, "hot1"))
		}()
	}
	wg.Wait()

	got, err := files.Get(ctx, "hot1")
	require.NoError(t, err)
	assert.Equal(t, n, got.Views)
}
