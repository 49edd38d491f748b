// Package main serves model lookups, models and character textures from a
// local directory for viewer development.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/aowow-viewer/internal/assetserver"
	"github.com/Faultbox/aowow-viewer/internal/config"
	"github.com/Faultbox/aowow-viewer/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := assetserver.NewCatalog(cfg.Server.ModelRoot)
	if err != nil {
		logger.Error("failed to scan models", zap.String("root", cfg.Server.ModelRoot), zap.Error(err))
		os.Exit(1)
	}

	if cfg.Server.Watch {
		go func() {
			err := catalog.Watch(ctx, func() {
				logger.Info("models rescanned", zap.String("root", catalog.Root()))
			})
			if err != nil {
				logger.Warn("model watcher stopped", zap.Error(err))
			}
		}()
	}

	var opts []assetserver.Option
	if cfg.Server.CompositorURL != "" {
		opts = append(opts, assetserver.WithCompositor(cfg.Server.CompositorURL))
	}
	srv := assetserver.New(catalog, opts...)

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
