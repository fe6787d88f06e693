package domain

import "time"

// Mutation event kinds published to the event feed.
const (
	EventMarkerAdded   = "marker_added"
	EventPolylineAdded = "polyline_added"
)

// MutationEvent records one successful add operation for downstream consumers
// (audit, alerting). Exactly one of Marker or Polyline is set, per Kind.
type MutationEvent struct {
	Kind       string      `json:"kind"`
	Marker     *NodeRecord `json:"marker,omitempty"`
	Polyline   *EdgeRecord `json:"polyline,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewMarkerEvent builds a marker_added event stamped with the injectable clock.
func NewMarkerEvent(n Node) MutationEvent {
	rec := RecordFromNode(n)
	return MutationEvent{Kind: EventMarkerAdded, Marker: &rec, OccurredAt: Now()}
}

// NewPolylineEvent builds a polyline_added event stamped with the injectable clock.
func NewPolylineEvent(e Edge) MutationEvent {
	rec := RecordFromEdge(e)
	return MutationEvent{Kind: EventPolylineAdded, Polyline: &rec, OccurredAt: Now()}
}
