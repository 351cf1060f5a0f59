package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/campusware/rollcall/internal/api"
	"github.com/campusware/rollcall/internal/attendance"
	"github.com/campusware/rollcall/internal/bucket"
	"github.com/campusware/rollcall/internal/config"
	"github.com/campusware/rollcall/internal/face"
	"github.com/campusware/rollcall/internal/metrics"
	"github.com/campusware/rollcall/internal/session"
	"github.com/campusware/rollcall/internal/store"
	"github.com/campusware/rollcall/internal/token"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Rollcall API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("face_backend", cfg.FaceBackend),
	)

	// Record store: Postgres when configured, in-memory otherwise
	st, closeStore, err := newStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Signing codecs. QR and face tokens use separate secrets so leaking
	// one does not compromise the other.
	qrCodec := token.NewCodec(cfg.QRSigningSecret)
	faceCodec := token.NewCodec(cfg.FaceSigningSecret)

	// Face engine over the reference-image bucket
	b := bucket.New(cfg.FaceDataDir)
	matcher, err := face.NewMatcher(face.Config{
		Backend:             cfg.FaceBackend,
		CascadeFile:         cfg.FaceCascadeFile,
		HistogramThreshold:  cfg.HistogramThreshold,
		EncodingTolerance:   cfg.EncodingTolerance,
		SimilarityThreshold: cfg.SimilarityThreshold,
	}, b, logger)
	if err != nil {
		return fmt.Errorf("failed to create face matcher: %w", err)
	}

	// Metrics registry served at /metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Services
	sessions := session.NewService(st, qrCodec, cfg.PublicBaseURL, logger)
	pipeline := attendance.NewPipeline(sessions, st, faceCodec, m, logger, attendance.Policy{
		GeofenceMeters:  cfg.GeofenceMeters,
		FaceTokenTTL:    cfg.FaceTokenTTL,
		FaceTokenStrict: cfg.FaceTokenStrict,
	})
	verifier := attendance.NewFaceVerifier(matcher, faceCodec, b, m, logger, cfg.FaceSoftAccept)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Store:    st,
		Sessions: sessions,
		Pipeline: pipeline,
		Verifier: verifier,
		Matcher:  matcher,
		Bucket:   b,
		Metrics:  m,
		Registry: registry,
	})
	router.Setup()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")

	return nil
}

func newStore(cfg *config.Config, logger *slog.Logger) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, attendance data is held in memory only")
		return store.NewMemory(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to postgres")
	return store.NewPostgres(pool), pool.Close, nil
}
