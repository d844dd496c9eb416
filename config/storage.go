package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	BackendLocal = "local"
	BackendMinio = "minio"
)

// StorageConfig selects where finished zip artifacts live.
type StorageConfig struct {
	Backend string      `json:"backend"` // local, minio
	Minio   MinioConfig `json:"minio"`
}

// MinioConfig describes the MinIO node used by the minio backend.
type MinioConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	UseSSL   bool   `json:"use_ssl"`
	Bucket   string `json:"bucket"`
}

// Endpoint returns host:port for the MinIO client.
func (m MinioConfig) Endpoint() string {
	return fmt.Sprintf("%s:%s", m.Host, m.Port)
}

func loadStorageConfig(v *viper.Viper) StorageConfig {
	return StorageConfig{
		Backend: strings.ToLower(strings.TrimSpace(v.GetString("artifact_backend"))),
		Minio: MinioConfig{
			Host:     v.GetString("minio_host"),
			Port:     v.GetString("minio_port"),
			Username: v.GetString("minio_username"),
			Password: v.GetString("minio_password"),
			UseSSL:   v.GetBool("minio_use_ssl"),
			Bucket:   v.GetString("bucket_name"),
		},
	}
}

// Validate checks the backend name and its required settings.
func (s StorageConfig) Validate() error {
	switch s.Backend {
	case BackendLocal:
		return nil
	case BackendMinio:
		if s.Minio.Host == "" || s.Minio.Bucket == "" {
			return fmt.Errorf("minio backend requires minio_host and bucket_name")
		}
		return nil
	default:
		return fmt.Errorf("unknown artifact_backend %q", s.Backend)
	}
}
