package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics collects the service's operational metrics on its own
// registry, so the default registry's state never leaks into the scrape.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	noiseReleasesTotal  *prometheus.CounterVec
	noiseReleaseSeconds *prometheus.HistogramVec
	budgetSpent         prometheus.Gauge

	kanonChecksTotal    *prometheus.CounterVec
	vulnerablePercent   prometheus.Histogram
	advisorLookupsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates and registers the service metrics
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	if namespace == "" {
		namespace = "missinglink"
	}

	pm := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status code",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		noiseReleasesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "noise_releases_total",
			Help:      "Noise releases by mechanism and outcome",
		}, []string{"mechanism", "status"}),
		noiseReleaseSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "noise_release_duration_seconds",
			Help:      "Time spent applying noise to a dataset",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"mechanism"}),
		budgetSpent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "privacy_budget_spent",
			Help:      "Cumulative epsilon spent by the engine's budget account",
		}),
		kanonChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "k_anonymity_checks_total",
			Help:      "K-anonymity analyses by outcome",
		}, []string{"status"}),
		vulnerablePercent: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "k_anonymity_vulnerable_percent",
			Help:      "Share of records below the k threshold per analysis",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}),
		advisorLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "epsilon_recommendations_total",
			Help:      "Epsilon advisor lookups by use case",
		}, []string{"use_case"}),
	}

	pm.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		pm.httpRequestsTotal,
		pm.httpRequestDuration,
		pm.noiseReleasesTotal,
		pm.noiseReleaseSeconds,
		pm.budgetSpent,
		pm.kanonChecksTotal,
		pm.vulnerablePercent,
		pm.advisorLookupsTotal,
	)

	return pm
}

// Handler returns the scrape endpoint for this registry
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// RecordHTTPRequest records one served request
func (pm *PrometheusMetrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	pm.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	pm.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordNoiseRelease records one noise release attempt and the account's
// budget level after it.
func (pm *PrometheusMetrics) RecordNoiseRelease(mechanism, status string, duration time.Duration, budgetSpent float64) {
	pm.noiseReleasesTotal.WithLabelValues(mechanism, status).Inc()
	pm.noiseReleaseSeconds.WithLabelValues(mechanism).Observe(duration.Seconds())
	pm.budgetSpent.Set(budgetSpent)
}

// RecordKAnonymityCheck records one analysis
func (pm *PrometheusMetrics) RecordKAnonymityCheck(status string, vulnerablePct float64) {
	pm.kanonChecksTotal.WithLabelValues(status).Inc()
	if status == "success" {
		pm.vulnerablePercent.Observe(vulnerablePct)
	}
}

// RecordAdvisorLookup records one epsilon recommendation
func (pm *PrometheusMetrics) RecordAdvisorLookup(useCase string) {
	pm.advisorLookupsTotal.WithLabelValues(useCase).Inc()
}

// SetBudgetSpent updates the budget gauge outside a release, e.g. on reset
func (pm *PrometheusMetrics) SetBudgetSpent(spent float64) {
	pm.budgetSpent.Set(spent)
}
