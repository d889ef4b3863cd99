package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	LoadHit         = "hit"
	LoadMiss        = "miss"
	LoadMalformed   = "malformed"
	LoadUnavailable = "unavailable"

	SaveOK      = "ok"
	SaveDropped = "dropped"
)

// CollectionMetrics records persistence traffic for the named collections.
type CollectionMetrics struct {
	loads        *prometheus.CounterVec
	saves        *prometheus.CounterVec
	saveDuration *prometheus.HistogramVec
	operations   *prometheus.CounterVec
}

// NewCollectionMetrics registers the collection metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCollectionMetrics(reg prometheus.Registerer) *CollectionMetrics {
	if reg == nil {
		return &CollectionMetrics{}
	}
	loads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "collection_loads_total",
		Help:      "Collection loads by outcome.",
	}, []string{"collection", "result"})
	saves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "collection_saves_total",
		Help:      "Collection saves by outcome; dropped writes are not surfaced to callers.",
	}, []string{"collection", "result"})
	saveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "collection_save_duration_seconds",
		Help:      "Duration of collection saves in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"collection"})
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "operations_total",
		Help:      "Manager operations by name and outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(loads, saves, saveDuration, operations)
	return &CollectionMetrics{
		loads:        loads,
		saves:        saves,
		saveDuration: saveDuration,
		operations:   operations,
	}
}

// ObserveLoad counts a load for the collection with the given result.
func (c *CollectionMetrics) ObserveLoad(collection, result string) {
	if c == nil || c.loads == nil {
		return
	}
	c.loads.WithLabelValues(normalizeLabel(collection), normalizeLabel(result)).Inc()
}

// ObserveSave counts a save and records its duration.
func (c *CollectionMetrics) ObserveSave(collection, result string, duration time.Duration) {
	if c == nil || c.saves == nil {
		return
	}
	c.saves.WithLabelValues(normalizeLabel(collection), normalizeLabel(result)).Inc()
	c.saveDuration.WithLabelValues(normalizeLabel(collection)).Observe(duration.Seconds())
}

// ObserveOperation counts a manager operation outcome ("ok" or an error code).
func (c *CollectionMetrics) ObserveOperation(operation, outcome string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
