package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/edupath/content-store/pkg/contentstore"
	"github.com/edupath/content-store/pkg/contentstore/api"
	"github.com/edupath/content-store/pkg/contentstore/catalog"
	"github.com/edupath/content-store/pkg/contentstore/config"
)

func main() {
	// Optional .env for local development; real deployments configure the
	// process environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := cfg.BuildStore()
	if err != nil {
		logger.Error("failed to build store client", "error", err)
		os.Exit(1)
	}
	resolver, err := cfg.BuildResolver()
	if err != nil {
		logger.Error("failed to build public URL resolver", "error", err)
		os.Exit(1)
	}

	colleges := contentstore.NewService(store, cfg.Containers.Colleges, catalog.SummarizeCollege,
		contentstore.WithLogger[catalog.College](logger))
	studyPages := contentstore.NewService(store, cfg.Containers.StudyPages, catalog.SummarizeStudyPage,
		contentstore.WithLogger[catalog.StudyPage](logger))
	assets := contentstore.NewAssetUploader(store, cfg.Containers.Assets, resolver, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := colleges.Init(ctx); err != nil {
		logger.Error("failed to prepare college container", "error", err)
		os.Exit(1)
	}
	if err := studyPages.Init(ctx); err != nil {
		logger.Error("failed to prepare study page container", "error", err)
		os.Exit(1)
	}
	if err := assets.Init(ctx); err != nil {
		logger.Error("failed to prepare asset container", "error", err)
		os.Exit(1)
	}

	server := &api.Server{
		Colleges:    colleges,
		StudyPages:  studyPages,
		Assets:      assets,
		AdminToken:  cfg.AdminToken,
		Environment: cfg.Environment,
		Logger:      logger,
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: server.Routes(),
	}

	go func() {
		logger.Info("content store server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"endpoint", cfg.Store.Endpoint)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server exiting")
}
