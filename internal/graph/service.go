package graph

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hydrowatch/watermap/internal/domain"
	"github.com/hydrowatch/watermap/internal/observability"
)

// DynamicUploader is the incremental persistence path: one marker document
// per successful add.
type DynamicUploader interface {
	UploadDynamic(ctx context.Context, rec domain.NodeRecord) error
}

// EventSink receives one mutation event per successful add operation.
type EventSink interface {
	Publish(ctx context.Context, ev domain.MutationEvent) error
}

// uploadTimeout bounds each fire-and-forget persistence or publish call.
const uploadTimeout = 10 * time.Second

// Service exposes the add-marker and add-polyline operations over the stores.
// Persistence and event publishing are one-way sends: the contract ends at
// "accepted for delivery", failures are logged and counted but never surfaced
// to the caller, and nothing is retried.
type Service struct {
	nodes     *NodeStore
	edges     *EdgeStore
	selection *PendingSelection
	docs      DynamicUploader // nil disables incremental upload
	events    EventSink       // nil disables the event feed
	logger    *slog.Logger
	metrics   *observability.Metrics
	inflight  sync.WaitGroup
}

// NewService wires the mutation service. docs and events may be nil.
func NewService(nodes *NodeStore, edges *EdgeStore, selection *PendingSelection, docs DynamicUploader, events EventSink, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		nodes:     nodes,
		edges:     edges,
		selection: selection,
		docs:      docs,
		events:    events,
		logger:    logger,
		metrics:   metrics,
	}
}

// AddNode validates and commits one marker from its raw form inputs. On any
// validation failure the stores are untouched. On success the node is
// appended, a denormalized record is sent to the document store, a mutation
// event is published, and the pending selection is cleared.
func (s *Service) AddNode(rawLat, rawLon, label string) (domain.Node, error) {
	lat, err := domain.ParseCoord("latitude", rawLat)
	if err != nil {
		s.metrics.ValidationRejections.WithLabelValues("marker").Inc()
		return domain.Node{}, err
	}
	lon, err := domain.ParseCoord("longitude", rawLon)
	if err != nil {
		s.metrics.ValidationRejections.WithLabelValues("marker").Inc()
		return domain.Node{}, err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		s.metrics.ValidationRejections.WithLabelValues("marker").Inc()
		return domain.Node{}, domain.ValidationError{Field: "popUp", Reason: "is required"}
	}

	node := domain.Node{Position: domain.GeoPoint{Lat: lat, Lon: lon}, Label: label}
	s.nodes.Add(node)
	s.metrics.MarkersAdded.Inc()

	if s.docs != nil {
		rec := domain.RecordFromNode(node)
		s.send("marker upload", func(ctx context.Context) error {
			return s.docs.UploadDynamic(ctx, rec)
		})
	}
	s.publish(domain.NewMarkerEvent(node))
	s.selection.Clear()

	return node, nil
}

// AddEdge validates and commits one two-point polyline from the pending
// endpoint coordinates. All four fields must be present and parseable.
func (s *Service) AddEdge(start, end Coords) (domain.Edge, error) {
	startLat, err := domain.ParseCoord("start latitude", start.Latitude)
	if err != nil {
		s.metrics.ValidationRejections.WithLabelValues("polyline").Inc()
		return domain.Edge{}, err
	}
	startLon, err := domain.ParseCoord("start longitude", start.Longitude)
	if err != nil {
		s.metrics.ValidationRejections.WithLabelValues("polyline").Inc()
		return domain.Edge{}, err
	}
	endLat, err := domain.ParseCoord("end latitude", end.Latitude)
	if err != nil {
		s.metrics.ValidationRejections.WithLabelValues("polyline").Inc()
		return domain.Edge{}, err
	}
	endLon, err := domain.ParseCoord("end longitude", end.Longitude)
	if err != nil {
		s.metrics.ValidationRejections.WithLabelValues("polyline").Inc()
		return domain.Edge{}, err
	}

	edge := domain.NewSegment(
		domain.GeoPoint{Lat: startLat, Lon: startLon},
		domain.GeoPoint{Lat: endLat, Lon: endLon},
	)
	s.edges.Add(edge)
	s.metrics.PolylinesAdded.Inc()

	s.publish(domain.NewPolylineEvent(edge))
	s.selection.Clear()

	return edge, nil
}

// SelectPoint routes a map click (start) or marker click (end) into the
// pending selection.
func (s *Service) SelectPoint(pt domain.GeoPoint, role SlotRole) {
	s.selection.SelectPoint(pt, role)
}

// SetLabel records the in-progress marker label typed into the entry form.
func (s *Service) SetLabel(label string) {
	s.selection.SetLabel(label)
}

// Selection returns the current pending entry-form state.
func (s *Service) Selection() SelectionState {
	return s.selection.Snapshot()
}

// Flush blocks until all in-flight persistence and publish sends finish.
// Called on shutdown and by tests.
func (s *Service) Flush() {
	s.inflight.Wait()
}

// send runs a one-way delivery in the background with a bounded context.
func (s *Service) send(op string, fn func(ctx context.Context) error) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Warn("delivery failed", "op", op, "error", err)
			s.metrics.UploadFailures.WithLabelValues(op).Inc()
		}
	}()
}

func (s *Service) publish(ev domain.MutationEvent) {
	if s.events == nil {
		return
	}
	s.send("event publish", func(ctx context.Context) error {
		return s.events.Publish(ctx, ev)
	})
}
