package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flood_areas"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram

	// Flood area metrics.
	FloodAreaRequests      *prometheus.CounterVec // labels: outcome={success,error}
	PolygonFetches         *prometheus.CounterVec // labels: outcome={success,timeout,error}
	PolygonCache           *prometheus.CounterVec // labels: result={hit,miss}
	PolygonFetchDuration   prometheus.Histogram
	ClassificationDuration prometheus.Histogram
	PartialClassifications prometheus.Counter
	AreasClassified        *prometheus.CounterVec // labels: category={warning,alert}

	// Subscription metrics.
	SubscriptionUpdates *prometheus.CounterVec // labels: action={warning,alert,remove}
	EventsPublished     *prometheus.CounterVec // labels: outcome={success,error}
	EventsEnabled       prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Place search requests to the OS Names API by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Place search cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "OS Names API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		FloodAreaRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flood_area_requests_total",
			Help:      "Flood area queries to the flood-monitoring API by outcome.",
		}, []string{"outcome"}),
		PolygonFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polygon_fetches_total",
			Help:      "Flood area polygon fetches by outcome.",
		}, []string{"outcome"}),
		PolygonCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polygon_cache_total",
			Help:      "Polygon cache lookups by result.",
		}, []string{"result"}),
		PolygonFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "polygon_fetch_duration_seconds",
			Help:      "Duration of a single polygon download and decode.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ClassificationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_duration_seconds",
			Help:      "Duration of resolving and classifying the areas around a place.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PartialClassifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partial_classifications_total",
			Help:      "Classifications that dropped at least one area after a fetch failure.",
		}),
		AreasClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "areas_classified_total",
			Help:      "Areas returned to users by category.",
		}, []string{"category"}),
		SubscriptionUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_updates_total",
			Help:      "Subscription set changes by action.",
		}, []string{"action"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Subscription events written to Kafka by outcome.",
		}, []string{"outcome"}),
		EventsEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events_enabled",
			Help:      "1 when subscription events are published, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.FloodAreaRequests,
		m.PolygonFetches,
		m.PolygonCache,
		m.PolygonFetchDuration,
		m.ClassificationDuration,
		m.PartialClassifications,
		m.AreasClassified,
		m.SubscriptionUpdates,
		m.EventsPublished,
		m.EventsEnabled,
	}
}
