// Package export converts the in-memory stores into their document-store
// shapes and hands them to the persistence collaborator in batch calls.
package export

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hydrowatch/watermap/internal/domain"
	"github.com/hydrowatch/watermap/internal/graph"
	"github.com/hydrowatch/watermap/internal/observability"
)

// DocumentStore is the batch persistence surface of the remote document store.
type DocumentStore interface {
	UploadBatch(ctx context.Context, recs []domain.NodeRecord) error
	UploadPolylines(ctx context.Context, recs []domain.EdgeRecord) error
}

// batchTimeout bounds one batch upload.
const batchTimeout = 30 * time.Second

// Service snapshots the stores and ships them to the document store. Uploads
// are one-way: a second export triggered before the first completes may
// interleave arbitrarily at the store, failures are logged and counted but
// never retried or surfaced.
type Service struct {
	nodes    *graph.NodeStore
	edges    *graph.EdgeStore
	docs     DocumentStore
	logger   *slog.Logger
	metrics  *observability.Metrics
	inflight sync.WaitGroup
}

// NewService wires the export service.
func NewService(nodes *graph.NodeStore, edges *graph.EdgeStore, docs DocumentStore, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		nodes:   nodes,
		edges:   edges,
		docs:    docs,
		logger:  logger,
		metrics: metrics,
	}
}

// NodeRecords maps every stored node to its denormalized record, in insertion
// order, flags carrying the unset sentinel.
func (s *Service) NodeRecords() []domain.NodeRecord {
	nodes := s.nodes.All()
	recs := make([]domain.NodeRecord, len(nodes))
	for i, n := range nodes {
		recs[i] = domain.RecordFromNode(n)
	}
	return recs
}

// EdgeRecords maps every stored edge to its coordinate-list record, in
// insertion order.
func (s *Service) EdgeRecords() []domain.EdgeRecord {
	edges := s.edges.All()
	recs := make([]domain.EdgeRecord, len(edges))
	for i, e := range edges {
		recs[i] = domain.RecordFromEdge(e)
	}
	return recs
}

// ExportAll ships the node and polyline snapshots to the document store in
// one batch call each. Returns once both sends are accepted for delivery.
func (s *Service) ExportAll() {
	start := time.Now()
	nodeRecs := s.NodeRecords()
	edgeRecs := s.EdgeRecords()

	var batch sync.WaitGroup
	batch.Add(2)
	s.dispatch("markers", func(ctx context.Context) error {
		defer batch.Done()
		if err := s.docs.UploadBatch(ctx, nodeRecs); err != nil {
			return err
		}
		s.metrics.ExportBatches.WithLabelValues("markers").Inc()
		s.metrics.ExportRecords.WithLabelValues("markers").Add(float64(len(nodeRecs)))
		return nil
	})
	s.dispatch("polylines", func(ctx context.Context) error {
		defer batch.Done()
		if err := s.docs.UploadPolylines(ctx, edgeRecs); err != nil {
			return err
		}
		s.metrics.ExportBatches.WithLabelValues("polylines").Inc()
		s.metrics.ExportRecords.WithLabelValues("polylines").Add(float64(len(edgeRecs)))
		return nil
	})

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		batch.Wait()
		s.metrics.ExportDuration.Observe(time.Since(start).Seconds())
	}()
}

// Flush blocks until all in-flight uploads finish. Called on shutdown and by tests.
func (s *Service) Flush() {
	s.inflight.Wait()
}

func (s *Service) dispatch(kind string, fn func(ctx context.Context) error) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Warn("export upload failed", "kind", kind, "error", err)
			s.metrics.UploadFailures.WithLabelValues("export " + kind).Inc()
		}
	}()
}
