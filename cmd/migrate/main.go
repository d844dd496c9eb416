package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"Go_Share/config"
	"Go_Share/internal/logger"
	"Go_Share/internal/repo"

	"go.uber.org/zap"
)

// migrate prepares the database schema and the downloads folder, then exits.
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}
	zl.Info("migration finished")
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	target, err := repo.ParseDatabaseURL(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if target.Driver == repo.DriverMySQL {
		if err := repo.EnsureMySQLDatabase(target); err != nil {
			return err
		}
	}
	db, err := repo.Open(target)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := repo.AutoMigrate(db.WithContext(ctx)); err != nil {
		return err
	}
	zl.Info("schema migrated", zap.String("driver", target.Driver))

	if err := os.MkdirAll(cfg.DownloadsFolder, 0o755); err != nil {
		return err
	}
	zl.Info("downloads folder ready", zap.String("path", cfg.DownloadsFolder))
	return nil
}
