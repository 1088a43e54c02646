// Package metrics exposes Prometheus metrics for the assessment service
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "contractpilot"

// Collector owns a private registry so tests can create as many as they like
type Collector struct {
	logger   zerolog.Logger
	registry *prometheus.Registry

	assessmentsStarted     *prometheus.CounterVec
	assessmentsCompleted   *prometheus.CounterVec
	customerLeverage       prometheus.Histogram
	requirementsFetch      *prometheus.CounterVec
	artifactPersist        *prometheus.CounterVec
	normalizationFallbacks *prometheus.CounterVec
}

// NewCollector creates a collector with every metric registered
func NewCollector(logger zerolog.Logger) *Collector {
	c := &Collector{
		logger:   logger.With().Str("component", "metrics_collector").Logger(),
		registry: prometheus.NewRegistry(),
	}

	c.assessmentsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_started_total",
			Help:      "Assessments started, by interview mode",
		},
		[]string{"mode"},
	)
	c.assessmentsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_completed_total",
			Help:      "Assessments completed, by interview mode",
		},
		[]string{"mode"},
	)
	c.customerLeverage = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "customer_leverage",
			Help:      "Customer leverage of completed assessments",
			Buckets:   prometheus.LinearBuckets(25, 5, 11),
		},
	)
	c.requirementsFetch = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requirements_fetch_total",
			Help:      "Upstream requirements fetches, by outcome",
		},
		[]string{"outcome"},
	)
	c.artifactPersist = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_persist_total",
			Help:      "Completion artifact submissions, by sink and outcome",
		},
		[]string{"sink", "outcome"},
	)
	c.normalizationFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalization_fallbacks_total",
			Help:      "Requirement sub-records that could not be decoded and fell back to defaults",
		},
		[]string{"field"},
	)

	c.registry.MustRegister(
		c.assessmentsStarted,
		c.assessmentsCompleted,
		c.customerLeverage,
		c.requirementsFetch,
		c.artifactPersist,
		c.normalizationFallbacks,
		collectors.NewGoCollector(),
	)

	c.logger.Debug().Str("namespace", namespace).Msg("Metrics collector initialized")
	return c
}

// Handler returns the /metrics endpoint
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorLog: &promLogger{logger: c.logger},
	})
}

// Registry is exposed for tests
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) AssessmentStarted(mode string) {
	c.assessmentsStarted.WithLabelValues(mode).Inc()
}

func (c *Collector) AssessmentCompleted(mode string, customerLeverage int) {
	c.assessmentsCompleted.WithLabelValues(mode).Inc()
	c.customerLeverage.Observe(float64(customerLeverage))
}

func (c *Collector) RequirementsFetch(outcome string) {
	c.requirementsFetch.WithLabelValues(outcome).Inc()
}

func (c *Collector) ArtifactPersist(sink, outcome string) {
	c.artifactPersist.WithLabelValues(sink, outcome).Inc()
}

func (c *Collector) NormalizationFallback(field string) {
	c.normalizationFallbacks.WithLabelValues(field).Inc()
}

// promLogger adapts zerolog to promhttp's Println logger
type promLogger struct {
	logger zerolog.Logger
}

func (l *promLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
