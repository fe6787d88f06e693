package graph

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/hydrowatch/watermap/internal/domain"
)

// seedJSON is the fixed Nagpur-region network transcribed from utility
// records. Opaque fixture data: it is loaded, never validated. Known
// transcription artifacts (a node whose longitude duplicates its latitude,
// zero-length polylines) are preserved as-is.
//
//go:embed seed.json
var seedJSON []byte

type seedMarker struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PopUp     string  `json:"popUp"`
}

type seedPolyline struct {
	Coordinates []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"coordinates"`
}

type seedFile struct {
	Markers   []seedMarker   `json:"markers"`
	Polylines []seedPolyline `json:"polylines"`
}

// LoadSeed appends the embedded fixture to the stores. Call once at startup,
// before the stores are shared.
func LoadSeed(nodes *NodeStore, edges *EdgeStore) error {
	var seed seedFile
	if err := json.Unmarshal(seedJSON, &seed); err != nil {
		return fmt.Errorf("decode seed fixture: %w", err)
	}

	for _, m := range seed.Markers {
		nodes.Add(domain.Node{
			Position: domain.GeoPoint{Lat: m.Latitude, Lon: m.Longitude},
			Label:    m.PopUp,
		})
	}
	for _, pl := range seed.Polylines {
		points := make([]domain.GeoPoint, len(pl.Coordinates))
		for i, c := range pl.Coordinates {
			points[i] = domain.GeoPoint{Lat: c.Latitude, Lon: c.Longitude}
		}
		edges.Add(domain.Edge{Points: points})
	}
	return nil
}
