package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/virtual-classroom/internal/handler"
	"github.com/noah-isme/virtual-classroom/internal/repository"
	"github.com/noah-isme/virtual-classroom/internal/service"
	"github.com/noah-isme/virtual-classroom/pkg/config"
	"github.com/noah-isme/virtual-classroom/pkg/logger"
	"github.com/noah-isme/virtual-classroom/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	registry := service.NewRegistryService(repository.NewClassroomRepository(), logger.NewNotifier(logr), metrics)

	var exports *service.ExportService
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Fatal("failed to initialise report storage", zap.Error(err))
		}
		exports = service.NewExportService(registry, store, logr, nil, nil)
	}

	logr.Info("virtual classroom started", zap.String("env", cfg.Env), zap.String("log_file", cfg.Log.File))
	menu := handler.NewMenuHandler(registry, exports, metrics, os.Stdin, os.Stdout)
	if err := menu.Run(context.Background()); err != nil {
		logr.Error("menu stopped", zap.Error(err))
	}
	logr.Info("virtual classroom stopped")
}
