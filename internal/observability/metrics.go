package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	MarkersAdded         prometheus.Counter
	PolylinesAdded       prometheus.Counter
	ValidationRejections *prometheus.CounterVec // labels: entity={marker,polyline}
	UploadFailures       *prometheus.CounterVec // labels: op
	EventsPublished      prometheus.Counter

	// Export metrics.
	ExportBatches  *prometheus.CounterVec // labels: kind={markers,polylines}
	ExportRecords  *prometheus.CounterVec // labels: kind={markers,polylines}
	ExportDuration prometheus.Histogram

	// Sensor allocation metrics.
	AllocationRuns     prometheus.Counter
	AllocationDuration prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={reverse}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={reverse}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={reverse}
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MarkersAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "watermap",
			Name:      "markers_added_total",
			Help:      "Total markers appended to the node store.",
		}),
		PolylinesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "watermap",
			Name:      "polylines_added_total",
			Help:      "Total polylines appended to the edge store.",
		}),
		ValidationRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watermap",
			Name:      "validation_rejections_total",
			Help:      "Add operations rejected for missing or unparseable fields.",
		}, []string{"entity"}),
		UploadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watermap",
			Name:      "upload_failures_total",
			Help:      "Fire-and-forget deliveries that reported an error.",
		}, []string{"op"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "watermap",
			Name:      "events_published_total",
			Help:      "Mutation events written to the event feed.",
		}),
		ExportBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watermap",
			Name:      "export_batches_total",
			Help:      "Batch uploads handed to the document store.",
		}, []string{"kind"}),
		ExportRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watermap",
			Name:      "export_records_total",
			Help:      "Records contained in exported batches.",
		}, []string{"kind"}),
		ExportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "watermap",
			Name:      "export_duration_seconds",
			Help:      "Duration of a full nodes-plus-polylines export.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		AllocationRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "watermap",
			Name:      "allocation_runs_total",
			Help:      "Sensor allocation analyses executed.",
		}),
		AllocationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "watermap",
			Name:      "allocation_duration_seconds",
			Help:      "Duration of one sensor allocation run, parse included.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watermap",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watermap",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "watermap",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "watermap",
			Name:      "geocode_enabled",
			Help:      "1 when label suggestion via geocoding is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.MarkersAdded,
		m.PolylinesAdded,
		m.ValidationRejections,
		m.UploadFailures,
		m.EventsPublished,
		m.ExportBatches,
		m.ExportRecords,
		m.ExportDuration,
		m.AllocationRuns,
		m.AllocationDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MarkersAdded:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "watermap", Name: "markers_added_total"}),
		PolylinesAdded:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "watermap", Name: "polylines_added_total"}),
		ValidationRejections: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "watermap", Name: "validation_rejections_total"}, []string{"entity"}),
		UploadFailures:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "watermap", Name: "upload_failures_total"}, []string{"op"}),
		EventsPublished:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "watermap", Name: "events_published_total"}),
		ExportBatches:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "watermap", Name: "export_batches_total"}, []string{"kind"}),
		ExportRecords:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "watermap", Name: "export_records_total"}, []string{"kind"}),
		ExportDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "watermap", Name: "export_duration_seconds"}),
		AllocationRuns:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "watermap", Name: "allocation_runs_total"}),
		AllocationDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "watermap", Name: "allocation_duration_seconds"}),
		GeocodeRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "watermap", Name: "geocode_requests_total"}, []string{"method", "outcome"}),
		GeocodeCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "watermap", Name: "geocode_cache_total"}, []string{"method", "result"}),
		GeocodeAPIDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "watermap", Name: "geocode_api_duration_seconds"}, []string{"method"}),
		GeocodeEnabled:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "watermap", Name: "geocode_enabled"}),
	}
}
