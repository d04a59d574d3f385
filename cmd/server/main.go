package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.etcd.io/bbolt"

	"github.com/vortex/supercompare/internal/config"
	"github.com/vortex/supercompare/internal/handler"
	"github.com/vortex/supercompare/internal/service"
	"github.com/vortex/supercompare/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error("creating upload dir", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := bbolt.Open(cfg.DBFile, 0o644, nil)
	if err != nil {
		logger.Error("opening bolt db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	storage, err := newStorage(cfg, db)
	if err != nil {
		logger.Error("wiring storage backend", slog.String("error", err.Error()))
		os.Exit(1)
	}

	jobs, err := store.NewJobs(db)
	if err != nil {
		logger.Error("wiring jobs ledger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc := service.NewCompareService(storage, jobs)

	maxBody := cfg.MaxUploadSizeMB << 20 // convert MB to bytes
	router := handler.NewRouter(logger, svc, maxBody)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.Int("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newStorage picks the document storage backend: an S3-compatible bucket
// when S3_ENDPOINT is configured, the local bbolt file otherwise.
func newStorage(cfg *config.Config, db *bbolt.DB) (store.Storage, error) {
	if cfg.S3Endpoint == "" {
		return store.NewBoltStorage(db)
	}
	cl, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3AccessSecret, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio init: %w", err)
	}
	return store.NewMinioStorage(cl, cfg.S3Bucket), nil
}
