package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics methods are safe on a nil receiver so the engine can run without
// instrumentation in tests.
type Metrics struct {
	registry *prometheus.Registry

	OnlinePlayers      prometheus.Gauge
	ActiveRooms        prometheus.Gauge
	RoundsStarted      prometheus.Counter
	Guesses            *prometheus.CounterVec
	WordLookupFailures prometheus.Counter
	MessagesReceived   prometheus.Counter
	MessageLatency     prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of players attached to a room",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of rooms in the registry",
		}),
		RoundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_started_total",
			Help:      "Total number of rounds started",
		}),
		Guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_total",
			Help:      "Chat messages evaluated against the active word, by verdict",
		}, []string{"verdict"}),
		WordLookupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "word_lookup_failures_total",
			Help:      "Word store lookups that failed",
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of websocket messages received",
		}),
		MessageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Inbound message processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.OnlinePlayers,
		m.ActiveRooms,
		m.RoundsStarted,
		m.Guesses,
		m.WordLookupFailures,
		m.MessagesReceived,
		m.MessageLatency,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) IncOnlinePlayers() {
	if m == nil {
		return
	}
	m.OnlinePlayers.Inc()
}

func (m *Metrics) DecOnlinePlayers() {
	if m == nil {
		return
	}
	m.OnlinePlayers.Dec()
}

func (m *Metrics) SetActiveRooms(count int) {
	if m == nil {
		return
	}
	m.ActiveRooms.Set(float64(count))
}

func (m *Metrics) IncRoundsStarted() {
	if m == nil {
		return
	}
	m.RoundsStarted.Inc()
}

func (m *Metrics) IncGuess(verdict string) {
	if m == nil {
		return
	}
	m.Guesses.WithLabelValues(verdict).Inc()
}

func (m *Metrics) IncWordLookupFailures() {
	if m == nil {
		return
	}
	m.WordLookupFailures.Inc()
}

func (m *Metrics) IncMessagesReceived() {
	if m == nil {
		return
	}
	m.MessagesReceived.Inc()
}

func (m *Metrics) ObserveMessageLatency(duration time.Duration) {
	if m == nil {
		return
	}
	m.MessageLatency.Observe(duration.Seconds())
}
