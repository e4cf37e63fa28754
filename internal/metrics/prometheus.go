package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector observes ring engine operations and exposes them as Prometheus
// metrics. It implements ring.MetricsHook.
type Collector struct {
	appendLatency prometheus.Histogram
	fetchLatency  prometheus.Histogram
	erases        *prometheus.CounterVec
	evictions     prometheus.Counter
	evictedSlots  prometheus.Counter
	mediumErrors  *prometheus.CounterVec
}

// NewCollector registers ringlog metrics with reg and returns the hook.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		appendLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ringlog",
			Name:      "append_duration_seconds",
			Help:      "Latency of append operations including sector rotation.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		fetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ringlog",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of fetch operations.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		erases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ringlog",
			Name:      "sector_erases_total",
			Help:      "Erase operations per sector; flat across sectors when wear leveling works.",
		}, []string{"sector"}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ringlog",
			Name:      "evictions_total",
			Help:      "Sectors evicted because the ring wrapped onto unread data.",
		}),
		evictedSlots: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ringlog",
			Name:      "evicted_slots_total",
			Help:      "Record slots destroyed by evictions.",
		}),
		mediumErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ringlog",
			Name:      "medium_errors_total",
			Help:      "Failed erase/program/read calls by operation.",
		}, []string{"op"}),
	}
}

// ObserveAppend implements ring.MetricsHook.
func (c *Collector) ObserveAppend(elapsed time.Duration) {
	c.appendLatency.Observe(elapsed.Seconds())
}

// ObserveFetch implements ring.MetricsHook.
func (c *Collector) ObserveFetch(elapsed time.Duration) {
	c.fetchLatency.Observe(elapsed.Seconds())
}

// ObserveErase implements ring.MetricsHook.
func (c *Collector) ObserveErase(sector int) {
	c.erases.WithLabelValues(strconv.Itoa(sector)).Inc()
}

// ObserveEviction implements ring.MetricsHook.
func (c *Collector) ObserveEviction(slotsLost int) {
	c.evictions.Inc()
	c.evictedSlots.Add(float64(slotsLost))
}

// ObserveMediumError implements ring.MetricsHook.
func (c *Collector) ObserveMediumError(op string) {
	c.mediumErrors.WithLabelValues(op).Inc()
}
