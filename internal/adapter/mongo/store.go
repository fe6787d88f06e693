// Package mongo implements the document-store persistence collaborator on
// MongoDB. Markers land in the "markers" collection, polylines in
// "polylines", both in the denormalized shapes the analysis services read.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/hydrowatch/watermap/internal/config"
	"github.com/hydrowatch/watermap/internal/domain"
)

const (
	markersCollection   = "markers"
	polylinesCollection = "polylines"
)

// Store is the MongoDB-backed document store.
type Store struct {
	client    *mongo.Client
	markers   *mongo.Collection
	polylines *mongo.Collection
	logger    *slog.Logger
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	return &Store{
		client:    client,
		markers:   db.Collection(markersCollection),
		polylines: db.Collection(polylinesCollection),
		logger:    logger,
	}, nil
}

// UploadDynamic inserts a single marker document, the incremental path used
// after each successful add.
func (s *Store) UploadDynamic(ctx context.Context, rec domain.NodeRecord) error {
	if _, err := s.markers.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert marker: %w", err)
	}
	return nil
}

// UploadBatch inserts all marker records in one call. An empty batch is a no-op.
func (s *Store) UploadBatch(ctx context.Context, recs []domain.NodeRecord) error {
	if len(recs) == 0 {
		return nil
	}
	docs := make([]any, len(recs))
	for i, r := range recs {
		docs[i] = r
	}
	if _, err := s.markers.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert markers batch: %w", err)
	}
	return nil
}

// UploadPolylines inserts all polyline records in one call. An empty batch is a no-op.
func (s *Store) UploadPolylines(ctx context.Context, recs []domain.EdgeRecord) error {
	if len(recs) == 0 {
		return nil
	}
	docs := make([]any, len(recs))
	for i, r := range recs {
		docs[i] = r
	}
	if _, err := s.polylines.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert polylines batch: %w", err)
	}
	return nil
}

// CheckReadiness pings the primary; the service is ready when its store is.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
