package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"Go_Share/config"
	"Go_Share/internal/handler"
	"Go_Share/internal/logger"
	"Go_Share/internal/repo"
	"Go_Share/internal/service"
	"Go_Share/internal/storage"
	"Go_Share/router"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

type app struct {
	cfg    *config.Config
	log    *zap.Logger
	db     *gorm.DB
	rdb    *redis.Client
	server *http.Server
}

// main initializes services and starts the HTTP server.
func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	a, err := newApp(context.Background(), cfg, zl)
	if err != nil {
		zl.Fatal("startup failed", zap.Error(err))
	}

	go func() {
		zl.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server stopped", zap.Error(err))
		}
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			zl.Info("graceful shutdown initiated")
			return a.server.Shutdown(ctx)
		},
		"database": func(ctx context.Context) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
		"redis": func(ctx context.Context) error {
			if a.rdb == nil {
				return nil
			}
			return a.rdb.Close()
		},
	})
	exitCode := <-wait
	zl.Info("application exited", zap.Int("code", exitCode))
	_ = zl.Sync()
	os.Exit(exitCode)
}

func newApp(ctx context.Context, cfg *config.Config, zl *zap.Logger) (*app, error) {
	gin.SetMode(cfg.GinMode)

	db, err := repo.OpenDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	files := repo.NewFileRepo(db)

	artifacts, err := newArtifactStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	fileStore, err := service.NewFileStore(cfg.DownloadsFolder, artifacts)
	if err != nil {
		return nil, err
	}
	ids, err := service.NewIDGenerator(cfg.IDMaxShortAttempts)
	if err != nil {
		return nil, err
	}

	var (
		rdb      *redis.Client
		reserver service.Reserver = service.NopReserver{}
	)
	if cfg.RedisEnabled() {
		rdb, err = repo.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		reserver = service.NewRedisReserver(rdb, cfg.UploadTimeout)
		zl.Info("file id reservation via redis", zap.String("addr", cfg.RedisAddr()))
	}

	svc := service.NewFileService(service.Options{
		Files:         files,
		FileStore:     fileStore,
		Artifacts:     artifacts,
		IDs:           ids,
		Reserver:      reserver,
		QR:            service.NewQREncoder(cfg.QRSize),
		MaxFileSize:   cfg.MaxFileSize,
		UploadTimeout: cfg.UploadTimeout,
		Logger:        zl,
	})

	engine, err := router.InitRouter(handler.New(svc, cfg.BaseURL, zl), files, zl)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg: cfg,
		log: zl,
		db:  db,
		rdb: rdb,
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func newArtifactStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMinio:
		return storage.NewMinioStore(ctx, cfg.Storage.Minio)
	case config.BackendLocal:
		return storage.NewLocalStore(cfg.DownloadsFolder)
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Storage.Backend)
	}
}
