package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GeoPoint is a WGS-84 latitude/longitude coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Node is a labeled geographic point (a marker on the map).
type Node struct {
	Position GeoPoint `json:"position"`
	Label    string   `json:"label"`
}

// Edge is an ordered path of two or more geographic points (a polyline).
// Two points form a simple segment; degenerate edges with identical endpoints
// occur in the seed data and are valid.
type Edge struct {
	Points []GeoPoint `json:"points"`
}

// NewSegment builds a two-point edge from start to end.
func NewSegment(start, end GeoPoint) Edge {
	return Edge{Points: []GeoPoint{start, end}}
}

// FormatCoord renders a coordinate with fixed 6-decimal precision, the form
// used by the selection slots and the entry form.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// String renders the point as "lat, lon" with fixed precision.
func (p GeoPoint) String() string {
	return fmt.Sprintf("%s, %s", FormatCoord(p.Lat), FormatCoord(p.Lon))
}

// ParseCoord parses a coordinate from its text-form input. It fails on empty
// input and on anything that is not a finite float. Out-of-range values are
// accepted as-is; the map simply renders them where they land.
func ParseCoord(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ValidationError{Field: field, Reason: "is required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, ValidationError{Field: field, Reason: "is not a number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ValidationError{Field: field, Reason: "is not finite"}
	}
	return v, nil
}
