package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/hydrowatch/watermap/internal/adapter/http"
	kafkaadapter "github.com/hydrowatch/watermap/internal/adapter/kafka"
	"github.com/hydrowatch/watermap/internal/adapter/mapbox"
	mongoadapter "github.com/hydrowatch/watermap/internal/adapter/mongo"
	"github.com/hydrowatch/watermap/internal/config"
	"github.com/hydrowatch/watermap/internal/domain"
	"github.com/hydrowatch/watermap/internal/export"
	"github.com/hydrowatch/watermap/internal/graph"
	"github.com/hydrowatch/watermap/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := mongoadapter.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect document store", "error", err)
		os.Exit(1)
	}

	nodes := graph.NewNodeStore()
	edges := graph.NewEdgeStore()
	if err := graph.LoadSeed(nodes, edges); err != nil {
		logger.Error("failed to load seed fixture", "error", err)
		os.Exit(1)
	}
	logger.Info("seed fixture loaded", "markers", nodes.Len(), "polylines", edges.Len())

	// Mutation event feed (feature-flagged via KAFKA_ENABLED).
	var events graph.EventSink
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger, metrics)
		events = publisher
		logger.Info("mutation event feed enabled", "topic", cfg.KafkaEventsTopic)
	} else {
		logger.Info("mutation event feed disabled")
	}

	// Label suggestion (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("label suggestion enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("label suggestion disabled")
	}

	selection := graph.NewPendingSelection()
	graphSvc := graph.NewService(nodes, edges, selection, docs, events, logger, metrics)
	exportSvc := export.NewService(nodes, edges, docs, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Ready:              docs,
		Graph:              graphSvc,
		Nodes:              nodes,
		Edges:              edges,
		Export:             exportSvc,
		Geocoder:           geocoder,
		Metrics:            metrics,
		ElevationThreshold: cfg.ElevationThreshold,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// Drain in-flight fire-and-forget deliveries before closing the clients.
	graphSvc.Flush()
	exportSvc.Flush()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("event publisher close error", "error", err)
		}
	}
	if err := docs.Close(shutdownCtx); err != nil {
		logger.Error("document store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
