package metrics

import (
	"net/http"

	"github.com/dvdash/dashboard/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports feed and display health as Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	connectAttempts prometheus.Counter
	connectFailures prometheus.Counter
	connected       prometheus.Gauge

	messages       *prometheus.CounterVec
	tableUpdates   *prometheus.CounterVec
	tableRows      *prometheus.GaugeVec
	talkingClients prometheus.Gauge
	feedUptime     prometheus.Gauge
}

// New creates the metric set on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		connectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dvdash_feed_connect_attempts_total",
			Help: "Number of feed connection attempts",
		}),
		connectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dvdash_feed_connect_failures_total",
			Help: "Number of failed feed connection attempts",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dvdash_feed_connected",
			Help: "1 while a feed connection is live",
		}),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dvdash_feed_messages_total",
				Help: "Feed messages by processing result",
			},
			[]string{"result"}, // "applied", "malformed" or "failed"
		),
		tableUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dvdash_table_updates_total",
				Help: "Row set replacements per table",
			},
			[]string{"table"},
		),
		tableRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dvdash_table_records",
				Help: "Records rendered in the latest update of each list table",
			},
			[]string{"table"},
		),
		talkingClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dvdash_clients_talking",
			Help: "Clients currently classified as talking",
		}),
		feedUptime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dvdash_feed_uptime_seconds",
			Help: "Extrapolated uptime reported by the feed",
		}),
	}

	m.registry.MustRegister(
		m.connectAttempts,
		m.connectFailures,
		m.connected,
		m.messages,
		m.tableUpdates,
		m.tableRows,
		m.talkingClients,
		m.feedUptime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ConnectAttempt() {
	m.connectAttempts.Inc()
}

func (m *Metrics) ConnectFailed() {
	m.connectFailures.Inc()
}

func (m *Metrics) Connected(live bool) {
	if live {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}

func (m *Metrics) MessageApplied() {
	m.messages.WithLabelValues("applied").Inc()
}

func (m *Metrics) MessageMalformed() {
	m.messages.WithLabelValues("malformed").Inc()
}

func (m *Metrics) MessageFailed() {
	m.messages.WithLabelValues("failed").Inc()
}

func (m *Metrics) TablesReplaced(names []model.TableName) {
	for _, name := range names {
		m.tableUpdates.WithLabelValues(string(name)).Inc()
	}
}

func (m *Metrics) TableRecords(name model.TableName, n int) {
	m.tableRows.WithLabelValues(string(name)).Set(float64(n))
}

func (m *Metrics) TalkingClients(n int) {
	m.talkingClients.Set(float64(n))
}

func (m *Metrics) FeedUptime(seconds int64) {
	m.feedUptime.Set(float64(seconds))
}
