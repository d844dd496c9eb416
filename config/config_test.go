package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "DOWNLOADS_FOLDER", "MAX_FILE_SIZE", "BASE_URL",
		"QR_SIZE", "ID_MAX_SHORT_ATTEMPTS", "UPLOAD_TIMEOUT", "REDIS_HOST",
		"ARTIFACT_BACKEND", "CONFIG_FILE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, "sqlite://files.db", cfg.DatabaseURL)
	assert.Equal(t, DefaultDownloadsFolder, cfg.DownloadsFolder)
	assert.Equal(t, DefaultMaxFileSize, cfg.MaxFileSize)
	assert.Equal(t, 256, cfg.QRSize)
	assert.Equal(t, 64, cfg.IDMaxShortAttempts)
	assert.Equal(t, 10*time.Minute, cfg.UploadTimeout)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, BackendLocal, cfg.Storage.Backend)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/files")
	t.Setenv("BASE_URL", "https://share.example.com/")
	t.Setenv("MAX_FILE_SIZE", "1024")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("ARTIFACT_BACKEND", "MinIO")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://u:p@db:5432/files", cfg.DatabaseURL)
	assert.Equal(t, "https://share.example.com", cfg.BaseURL)
	assert.EqualValues(t, 1024, cfg.MaxFileSize)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
	assert.Equal(t, BackendMinio, cfg.Storage.Backend)
	assert.Equal(t, "localhost:9000", cfg.Storage.Minio.Endpoint())
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "share.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\ndownloads_folder: /srv/files\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "/srv/files", cfg.DownloadsFolder)
}

func TestLoadRejectsBadSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARTIFACT_BACKEND", "s3")
	_, err := Load(viper.New())
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("PORT", "70000")
	_, err = Load(viper.New())
	assert.Error(t, err)
}

func TestStorageValidate(t *testing.T) {
	assert.NoError(t, StorageConfig{Backend: BackendLocal}.Validate())
	assert.Error(t, StorageConfig{Backend: BackendMinio}.Validate())
	assert.NoError(t, StorageConfig{
		Backend: BackendMinio,
		Minio:   MinioConfig{Host: "minio", Port: "9000", Bucket: "files"},
	}.Validate())
}
