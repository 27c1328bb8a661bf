package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors. All Record* methods are safe on a nil receiver
// so components can run without instrumentation in tests.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	AIScore          prometheus.Histogram

	MarketLookupsTotal  *prometheus.CounterVec
	FallbackPricesTotal prometheus.Counter

	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	RateLimitHitsTotal *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investerra_requests_total",
				Help: "Total number of requests processed",
			},
			[]string{"surface", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "investerra_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"surface", "route"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "investerra_requests_in_flight",
				Help: "Number of requests currently being processed",
			},
		),

		AnalysesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investerra_analyses_total",
				Help: "Total number of terrain analyses",
			},
			[]string{"trigger", "status"},
		),
		AnalysisDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "investerra_analysis_duration_seconds",
				Help:    "Analysis duration in seconds, market lookup included",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 20},
			},
		),
		AIScore: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "investerra_ai_score",
				Help:    "Distribution of computed terrain scores",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),

		MarketLookupsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investerra_market_lookups_total",
				Help: "Market price lookups by outcome",
			},
			[]string{"outcome"},
		),
		FallbackPricesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "investerra_market_fallback_total",
				Help: "Analyses that used the fallback price table",
			},
		),

		ProviderRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investerra_provider_requests_total",
				Help: "Total number of external provider requests",
			},
			[]string{"provider", "endpoint", "status"},
		),
		ProviderRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "investerra_provider_request_duration_seconds",
				Help:    "External provider request duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"provider", "endpoint"},
		),

		CacheHitsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "investerra_cache_hits_total",
				Help: "Total number of market price cache hits",
			},
		),
		CacheMissesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "investerra_cache_misses_total",
				Help: "Total number of market price cache misses",
			},
		),

		RateLimitHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investerra_rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"surface"},
		),
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordRequest(surface, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(surface, route, status).Inc()
	m.RequestDuration.WithLabelValues(surface, route).Observe(duration.Seconds())
}

func (m *Metrics) RecordAnalysis(trigger, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(trigger, status).Inc()
	m.AnalysisDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveScore(score float64) {
	if m == nil {
		return
	}
	m.AIScore.Observe(score)
}

// RecordMarketLookup - outcome is one of market, unknown, error.
func (m *Metrics) RecordMarketLookup(outcome string) {
	if m == nil {
		return
	}
	m.MarketLookupsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordFallback() {
	if m == nil {
		return
	}
	m.FallbackPricesTotal.Inc()
}

func (m *Metrics) RecordProviderRequest(provider, endpoint, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ProviderRequestsTotal.WithLabelValues(provider, endpoint, status).Inc()
	m.ProviderRequestDuration.WithLabelValues(provider, endpoint).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordRateLimitHit(surface string) {
	if m == nil {
		return
	}
	m.RateLimitHitsTotal.WithLabelValues(surface).Inc()
}

func (m *Metrics) IncRequestsInFlight() {
	if m == nil {
		return
	}
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	if m == nil {
		return
	}
	m.RequestsInFlight.Dec()
}
