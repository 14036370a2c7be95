package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	documentsActive prometheus.Gauge
	sessionsActive  prometheus.Gauge

	editsTotal         prometheus.Counter
	broadcastsTotal    *prometheus.CounterVec
	connectionsTotal   prometheus.Counter
	evictionsTotal     prometheus.Counter
	savesTotal         *prometheus.CounterVec
	saveDuration       prometheus.Histogram
	hydrationDuration  prometheus.Histogram
	cacheLookupsTotal  *prometheus.CounterVec
	documentsReapTotal prometheus.Counter
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
	registry    *prometheus.Registry
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			documentsActive: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "editor_documents_active",
				Help: "Number of live document actors.",
			}),
			sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "editor_sessions_active",
				Help: "Number of open editor sessions across all documents.",
			}),
			editsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "editor_edits_total",
				Help: "Total content-change messages accepted.",
			}),
			broadcastsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "editor_broadcast_sends_total",
					Help: "Per-session broadcast delivery attempts by status.",
				},
				[]string{"status"},
			),
			connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "editor_connections_total",
				Help: "Total accepted websocket connections.",
			}),
			evictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "editor_session_evictions_total",
				Help: "Sessions evicted after a failed send.",
			}),
			savesTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "editor_saves_total",
					Help: "Save attempts by outcome.",
				},
				[]string{"outcome"},
			),
			saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "editor_save_duration_seconds",
				Help:    "Durable write duration in seconds.",
				Buckets: prometheus.DefBuckets,
			}),
			hydrationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "editor_hydration_duration_seconds",
				Help:    "Time to load a document on first connection.",
				Buckets: prometheus.DefBuckets,
			}),
			cacheLookupsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "editor_cache_lookups_total",
					Help: "Cache lookups by result.",
				},
				[]string{"result"},
			),
			documentsReapTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "editor_documents_reaped_total",
				Help: "Idle document actors reclaimed by the janitor.",
			}),
		}

		registry = prometheus.NewRegistry()
		registry.MustRegister(
			m.documentsActive,
			m.sessionsActive,
			m.editsTotal,
			m.broadcastsTotal,
			m.connectionsTotal,
			m.evictionsTotal,
			m.savesTotal,
			m.saveDuration,
			m.hydrationDuration,
			m.cacheLookupsTotal,
			m.documentsReapTotal,
		)

		metricsInst = m
	})
	return metricsInst
}

// EnsureRegistered forces metric registration. Callers invoke it during
// construction so the /metrics endpoint is populated before any traffic.
func EnsureRegistered() {
	getMetrics()
}

// MetricsHandler returns the HTTP handler for the /metrics endpoint.
func MetricsHandler() http.Handler {
	getMetrics()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// SetActiveDocuments records the current number of live document actors.
func SetActiveDocuments(n int) {
	getMetrics().documentsActive.Set(float64(n))
}

// SessionOpened increments the session gauge and connection counter.
func SessionOpened() {
	m := getMetrics()
	m.sessionsActive.Inc()
	m.connectionsTotal.Inc()
}

// SessionClosed decrements the session gauge.
func SessionClosed() {
	getMetrics().sessionsActive.Dec()
}

// EditAccepted counts an accepted content-change message.
func EditAccepted() {
	getMetrics().editsTotal.Inc()
}

// BroadcastDelivered counts per-session broadcast outcomes.
func BroadcastDelivered(success, failed int) {
	m := getMetrics()
	if success > 0 {
		m.broadcastsTotal.WithLabelValues("success").Add(float64(success))
	}
	if failed > 0 {
		m.broadcastsTotal.WithLabelValues("failed").Add(float64(failed))
	}
}

// SessionEvicted counts a session removed after a failed send.
func SessionEvicted() {
	getMetrics().evictionsTotal.Inc()
}

// Save outcomes recorded by ObserveSave.
const (
	SaveOutcomeSaved           = "saved"
	SaveOutcomeSkippedBlank    = "skipped_blank"
	SaveOutcomeSkippedDebounce = "skipped_debounce"
	SaveOutcomeError           = "error"
)

// ObserveSave records a save attempt. Duration is only observed for
// attempts that reached the durable store.
func ObserveSave(outcome string, duration time.Duration) {
	m := getMetrics()
	m.savesTotal.WithLabelValues(outcome).Inc()
	if outcome == SaveOutcomeSaved || outcome == SaveOutcomeError {
		m.saveDuration.Observe(duration.Seconds())
	}
}

// ObserveHydration records the time taken to load a document on first use.
func ObserveHydration(duration time.Duration) {
	getMetrics().hydrationDuration.Observe(duration.Seconds())
}

// CacheLookup counts a cache lookup by result ("hit", "miss" or "error").
func CacheLookup(result string) {
	getMetrics().cacheLookupsTotal.WithLabelValues(result).Inc()
}

// DocumentsReaped counts idle actors reclaimed by the janitor.
func DocumentsReaped(n int) {
	if n > 0 {
		getMetrics().documentsReapTotal.Add(float64(n))
	}
}
