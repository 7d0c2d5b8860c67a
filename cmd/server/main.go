package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/holoshare/holoshare-backend/internal/asset/biz"
	assetdata "github.com/holoshare/holoshare-backend/internal/asset/data"
	"github.com/holoshare/holoshare-backend/internal/asset/service"
	"github.com/holoshare/holoshare-backend/internal/conf"
	"github.com/holoshare/holoshare-backend/internal/data"
	"github.com/holoshare/holoshare-backend/internal/pkg/logger"
	"github.com/holoshare/holoshare-backend/internal/server"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var configFile = flag.String("config", "config.yaml", "config file path")

func main() {
	flag.Parse()

	// Optional .env for local development
	_ = godotenv.Load()

	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(&config.Log); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully",
		zap.Int("port", config.Server.Port),
		zap.String("storage_backend", config.Storage.Backend),
		zap.Bool("metadata_enabled", config.Database.Enabled()))

	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Metadata repo only exists when a database connection does; the
	// use case treats a nil repo as "metadata operations disabled"
	var assetRepo biz.AssetRepo
	if d.Mongo != nil {
		repo := assetdata.NewMongoAssetRepo(d.Mongo, log.Logger)

		// Explicit startup step: create the TTL index before accepting
		// connections. Failure is logged, not fatal.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := repo.EnsureTTLIndex(ctx, config.Storage.RetentionDays); err != nil {
			log.Warn("failed to create TTL index", zap.Error(err))
		}
		cancel()

		assetRepo = repo
	}

	assetUseCase := biz.NewAssetUseCase(assetRepo, d.Blobs, config.Server.MaxUploadBytes, log.Logger)
	assetService := service.NewAssetService(assetUseCase, d.Mongo, log.Logger)

	httpServer := server.NewHTTPServer(config, log, assetService)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
