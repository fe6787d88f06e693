package domain

// ClusteringMode says whether markers are grouped into clusters at a zoom level.
type ClusteringMode string

const (
	Clustered   ClusteringMode = "clustered"
	Unclustered ClusteringMode = "unclustered"
)

// ClusterBucket is the visual size class of a cluster icon.
type ClusterBucket string

const (
	ClusterSmall  ClusterBucket = "small"
	ClusterMedium ClusterBucket = "medium"
	ClusterLarge  ClusterBucket = "large"
)

// unclusterZoom is the zoom level at which individual markers replace clusters.
const unclusterZoom = 18

// Cluster icon colors, matching the front end's marker-cluster theme.
const (
	colorSmall  = "#4caf50"
	colorMedium = "#ffc107"
	colorLarge  = "#f44336"
)

// ClusterVisual pairs a size bucket with its icon color.
type ClusterVisual struct {
	Bucket ClusterBucket `json:"bucket"`
	Color  string        `json:"color"`
}

// ModeForZoom returns the clustering mode for an integer zoom level.
// Zoom levels of 18 and above render individual markers.
func ModeForZoom(zoom int) ClusteringMode {
	if zoom >= unclusterZoom {
		return Unclustered
	}
	return Clustered
}

// VisualForCount buckets a cluster's marker count into an icon size and color.
// Total over all counts; negative counts land in the small bucket.
func VisualForCount(count int) ClusterVisual {
	switch {
	case count > 20:
		return ClusterVisual{Bucket: ClusterLarge, Color: colorLarge}
	case count > 10:
		return ClusterVisual{Bucket: ClusterMedium, Color: colorMedium}
	default:
		return ClusterVisual{Bucket: ClusterSmall, Color: colorSmall}
	}
}
