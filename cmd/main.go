/*
Package main is the entry point of the warm transfer backend.

It loads configuration, initializes logging, opens the summary store and the
optional summarizer and transfer archive, starts the HTTP server with the
handoff hub, and shuts everything down on SIGINT/SIGTERM.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"warmtransfer/internal/app/handoff"
	"warmtransfer/internal/app/storage"
	"warmtransfer/internal/app/summarizer"
	"warmtransfer/internal/app/summary"
	"warmtransfer/internal/app/transfer"
	"warmtransfer/internal/configs"
	"warmtransfer/internal/handler"
	"warmtransfer/internal/pkg/auth/jwt"
	"warmtransfer/internal/pkg/limiter"
	"warmtransfer/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("summary_store", cfg.SummaryStore).
		Bool("summarizer", cfg.SummarizerEnabled()).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logx.Fatal(err, "Server exited with error")
	}
	logx.Info("Server gracefully stopped.")
}

func run(ctx context.Context, cfg *configs.AppConfig) error {
	issuer := jwt.NewIssuer(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)
	if !issuer.Configured() {
		logx.Warn("LIVEKIT_API_KEY/LIVEKIT_API_SECRET not set; token requests will fail")
	}

	store, err := summary.Open(ctx, summary.Config{
		Kind:        cfg.SummaryStore,
		TTL:         cfg.SummaryTTL,
		MaxEntries:  cfg.SummaryMaxEntries,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
	})
	if err != nil {
		return fmt.Errorf("open summary store: %w", err)
	}
	defer store.Close()

	var sum summarizer.Summarizer
	if cfg.SummarizerEnabled() {
		sum = summarizer.NewClient(summarizer.Config{
			APIKey:  cfg.SummarizerAPIKey,
			BaseURL: cfg.SummarizerBaseURL,
			Model:   cfg.SummarizerModel,
			Timeout: cfg.SummarizerTimeout,
		})
	} else {
		logx.Info("No summarizer API key configured; auto summaries are disabled")
	}

	archive, err := storage.NewObjectStore(ctx, storage.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
		S3Region:          cfg.S3Region,
	})
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		logx.Info("Transfer archive disabled")
		archive = nil
	case err != nil:
		return fmt.Errorf("init transfer archive: %w", err)
	default:
		logx.Info("Transfer archive enabled", "bucket", cfg.S3BucketName)
	}

	hub := handoff.NewManager(handoff.DefaultIdleTimeout)

	coordinator := transfer.NewCoordinator(transfer.Options{
		Issuer:       issuer,
		Summarizer:   sum,
		Store:        store,
		Notifier:     hub,
		Archive:      archive,
		AudioBaseURL: cfg.AudioBaseURL,
	})

	deps := &handler.AppDeps{
		Config:    cfg,
		Issuer:    issuer,
		Transfers: coordinator,
		Summaries: store,
		Hub:       hub,
		Limiters:  handler.NewLimiters(),
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler.Router(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Transfers wait for the summarizer.
		WriteTimeout: cfg.SummarizerTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logx.Info(fmt.Sprintf("Warm transfer backend starting on http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	for _, lim := range deps.Limiters.All() {
		g.Go(func() error {
			lim.Run(gctx, limiter.DefaultSweepInterval)
			return nil
		})
	}

	if pg, ok := store.(*summary.PostgresStore); ok {
		g.Go(func() error {
			pg.RunPurger(gctx, summary.DefaultPurgeInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logx.Info("Received shutdown signal. Starting graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Hijacked WebSocket connections are not closed by Shutdown.
		hub.Shutdown()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	coordinator.Wait()
	return err
}
