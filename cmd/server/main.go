package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilkin0/metadata-api/internal/api/handlers"
	"github.com/ilkin0/metadata-api/internal/api/routes"
	"github.com/ilkin0/metadata-api/internal/config"
	"github.com/ilkin0/metadata-api/internal/logger"
	custommiddleware "github.com/ilkin0/metadata-api/internal/middleware"
	"github.com/ilkin0/metadata-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.SetDefault(logger.New(cfg.Env, cfg.LogLevel))

	slog.Info("starting metadata extraction service",
		slog.String("version", handlers.ServiceVersion),
		slog.String("env", cfg.Env),
		slog.Int("workers", cfg.Workers),
	)

	metadataService := service.NewMetadataService()

	r := chi.NewRouter()

	r.Use(custommiddleware.CORS(cfg.CORSAllowedOrigins))

	r.Use(middleware.RealIP)
	r.Use(logger.RequestID)
	r.Use(logger.AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.ThrottleBacklog(cfg.Workers, cfg.Backlog, cfg.RequestTimeout))

	r.Mount("/", routes.MetadataRoutes(metadataService, cfg.MaxUploadBytes))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout,
		IdleTimeout:       cfg.KeepAlive,
		MaxHeaderBytes:    1 << 20,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("address", fmt.Sprintf("http://localhost:%s", cfg.Port)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed",
				slog.String("error", err.Error()),
				slog.String("port", cfg.Port),
			)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("server stopped")
}
