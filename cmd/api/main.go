package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/listing-pipeline/internal/api"
	"github.com/user/listing-pipeline/internal/cache"
	"github.com/user/listing-pipeline/internal/ratelimit"
	"github.com/user/listing-pipeline/internal/store/search"
	"github.com/user/listing-pipeline/pkg/config"
	"github.com/user/listing-pipeline/pkg/logger"
	"github.com/user/listing-pipeline/pkg/metrics"
)

func main() {
	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	logger.Init(os.Stdout, logLevel)
	slog.Info("logger initialized", "level", logLevel.String())

	metrics.Init()
	slog.Info("metrics initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The query API is independent of the relational store: both read
	// endpoints are served entirely from the search index and cache, so a
	// Postgres outage must not take this process down.
	searchIndex, err := search.NewListingIndex([]string{cfg.SearchAddr}, cfg.SearchIndexName)
	if err != nil {
		slog.Error("unable to build search client", "error", err)
		os.Exit(1)
	}
	if err := searchIndex.EnsureIndex(ctx); err != nil {
		slog.Error("unable to ensure search index", "error", err)
		os.Exit(1)
	}
	slog.Info("search index ready", "index", cfg.SearchIndexName)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.CacheAddr,
		Password: cfg.CachePassword,
		DB:       cfg.CacheDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("unable to connect to cache", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("cache connection established")

	responseCache := cache.New(rdb)
	limiter, err := ratelimit.New(rdb, cfg.RateLimitPoints, cfg.RateLimitDuration)
	if err != nil {
		slog.Error("unable to build rate limiter", "error", err)
		os.Exit(1)
	}

	apiHandler := api.NewHandler(searchIndex, responseCache, cfg.CachePropertiesTTL, cfg.CacheMetadataTTL)
	httpRouter := api.NewRouter(apiHandler, limiter)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting query API server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("query API server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received, draining query API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("query API server shutdown error", "error", err)
	}
}
