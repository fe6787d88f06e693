package domain

// FlagUnset is the sentinel for the three contamination flags: the marker has
// not been analyzed yet. Downstream consumers set a flag to 1 in place.
const FlagUnset = 0

// NodeRecord is the denormalized marker document written to the store.
type NodeRecord struct {
	Latitude            float64 `json:"latitude" bson:"latitude"`
	Longitude           float64 `json:"longitude" bson:"longitude"`
	PopUp               string  `json:"popUp" bson:"popUp"`
	IsContaminated      int     `json:"IsContaminated" bson:"IsContaminated"`
	IsLeaking           int     `json:"IsLeaking" bson:"IsLeaking"`
	CaseOfProliferation int     `json:"CaseOfProliferation" bson:"CaseOfProliferation"`
}

// CoordinatePair is one vertex of a persisted polyline.
type CoordinatePair struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// EdgeRecord is the polyline document written to the store.
type EdgeRecord struct {
	Coordinates []CoordinatePair `json:"coordinates" bson:"coordinates"`
}

// RecordFromNode denormalizes a node into its document-store shape. The flags
// always carry the unset sentinel: no per-node contamination state exists in
// memory, even for seeded nodes.
func RecordFromNode(n Node) NodeRecord {
	return NodeRecord{
		Latitude:            n.Position.Lat,
		Longitude:           n.Position.Lon,
		PopUp:               n.Label,
		IsContaminated:      FlagUnset,
		IsLeaking:           FlagUnset,
		CaseOfProliferation: FlagUnset,
	}
}

// RecordFromEdge maps an edge to its coordinate-list document shape.
func RecordFromEdge(e Edge) EdgeRecord {
	coords := make([]CoordinatePair, len(e.Points))
	for i, p := range e.Points {
		coords[i] = CoordinatePair{Latitude: p.Lat, Longitude: p.Lon}
	}
	return EdgeRecord{Coordinates: coords}
}
