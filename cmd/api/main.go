package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/config"
	"github.com/Raghvendrath3/conceptForge/internal/di"
	"github.com/Raghvendrath3/conceptForge/internal/server"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(os.Getenv("CONFIG_DIR"))
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg, di.Version(version))
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	if watcher, err := config.NewWatcher(loader, container.Logger); err != nil {
		container.Logger.Info("config hot reload disabled", zap.Error(err))
	} else {
		watcher.OnChange(container.ApplyConfig)
		watcher.Start()
		defer watcher.Stop()
	}

	srv := server.New(cfg.Server, container.Router)
	if err := server.ListenAndRun(ctx, srv, cfg.Server.ShutdownTimeout, container.Logger); err != nil {
		container.Logger.Error("server failed", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}
