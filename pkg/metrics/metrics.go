package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voicebooking"

// Metrics owns a private registry so tests can build as many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec

	Summaries       *prometheus.CounterVec
	SummaryDuration prometheus.Histogram
	ActiveSessions  prometheus.Gauge

	KafkaMessages *prometheus.CounterVec
	KafkaDuration *prometheus.HistogramVec
}

func New(service string) *Metrics {
	labels := prometheus.Labels{"service": service}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "HTTP requests by method, route and status code.",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "tool_calls_total",
			Help:        "Agent tool invocations by tool and outcome.",
			ConstLabels: labels,
		}, []string{"tool", "outcome"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "tool_call_duration_seconds",
			Help:        "Agent tool latency.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"tool"}),
		Summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "summaries_total",
			Help:        "Conversation summaries by trigger and result.",
			ConstLabels: labels,
		}, []string{"trigger", "result"}),
		SummaryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "summary_duration_seconds",
			Help:        "Time spent producing and persisting a summary.",
			ConstLabels: labels,
			Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "active_sessions",
			Help:        "Conversations currently tracked by the agent.",
			ConstLabels: labels,
		}),
		KafkaMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "kafka_messages_total",
			Help:        "Kafka messages handled by topic and result.",
			ConstLabels: labels,
		}, []string{"topic", "result"}),
		KafkaDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "kafka_message_duration_seconds",
			Help:        "Kafka message handling latency.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"topic"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.ToolCalls,
		m.ToolDuration,
		m.Summaries,
		m.SummaryDuration,
		m.ActiveSessions,
		m.KafkaMessages,
		m.KafkaDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveTool(tool, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

func (m *Metrics) ObserveSummary(trigger, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.Summaries.WithLabelValues(trigger, result).Inc()
	m.SummaryDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveKafka(topic, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.KafkaMessages.WithLabelValues(topic, result).Inc()
	m.KafkaDuration.WithLabelValues(topic).Observe(d.Seconds())
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}
