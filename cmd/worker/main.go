package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/user/listing-pipeline/internal/geocoder"
	"github.com/user/listing-pipeline/internal/ingest"
	"github.com/user/listing-pipeline/internal/queue"
	"github.com/user/listing-pipeline/internal/store/postgres"
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

	listingStore, err := postgres.NewListingStore(ctx, cfg.PostgresDSN())
	if err != nil {
		slog.Error("unable to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer listingStore.Close()
	slog.Info("postgres connection pool established")

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

	geo := geocoder.NewGoogleGeocoder(cfg.GeocoderRegion, cfg.GeocoderTimeout)

	pipeline := ingest.NewPipeline(listingStore, searchIndex, geo)
	pipeline.Dedup.LatThreshold = cfg.DedupLatThreshold
	pipeline.Dedup.LonThreshold = cfg.DedupLonThreshold
	pipeline.Dedup.SimThreshold = cfg.DedupSimThreshold

	consumer := queue.NewConsumer(cfg.QueueURL, cfg.QueueName, pipeline.Handler())

	slog.Info("starting intake worker", "queue", cfg.QueueName)
	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("intake worker exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("intake worker shut down cleanly")
}
