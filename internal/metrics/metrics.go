package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	cacheLookups     *prometheus.CounterVec
	upstreamCalls    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	reloadsTotal     *prometheus.CounterVec
	snapshotsLoaded  prometheus.Gauge
	analysisDuration prometheus.Histogram
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendpulse_cache_lookups_total",
			Help: "Cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)
	r.upstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendpulse_upstream_calls_total",
			Help: "Outbound calls to YouTube, news and LLM providers",
		},
		[]string{"service", "status"},
	)
	r.upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trendpulse_upstream_duration_seconds",
			Help:    "Outbound call duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"service"},
	)
	r.reloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendpulse_snapshot_reloads_total",
			Help: "Snapshot reloads by outcome",
		},
		[]string{"status"},
	)
	r.snapshotsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trendpulse_snapshots_loaded",
			Help: "Number of dated snapshots currently loaded",
		},
	)
	r.analysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trendpulse_analysis_duration_seconds",
			Help:    "Keyword analysis compute duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	reg.MustRegister(r.cacheLookups)
	reg.MustRegister(r.upstreamCalls)
	reg.MustRegister(r.upstreamDuration)
	reg.MustRegister(r.reloadsTotal)
	reg.MustRegister(r.snapshotsLoaded)
	reg.MustRegister(r.analysisDuration)

	return r
}

// RecordRequest records metrics for an HTTP request. route should be a
// registered pattern, not the raw path.
func (r *Registry) RecordRequest(method, route string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, route, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordCacheHit records a cache hit.
func (r *Registry) RecordCacheHit(cache string) {
	r.cacheLookups.WithLabelValues(cache, "hit").Inc()
}

// RecordCacheMiss records a cache miss.
func (r *Registry) RecordCacheMiss(cache string) {
	r.cacheLookups.WithLabelValues(cache, "miss").Inc()
}

// RecordUpstream records an outbound call. A nil err counts as "ok".
func (r *Registry) RecordUpstream(service string, err error, duration float64) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.upstreamCalls.WithLabelValues(service, status).Inc()
	r.upstreamDuration.WithLabelValues(service).Observe(duration)
}

// RecordReload records a snapshot reload and the resulting snapshot count.
func (r *Registry) RecordReload(status string, snapshots int) {
	r.reloadsTotal.WithLabelValues(status).Inc()
	r.snapshotsLoaded.Set(float64(snapshots))
}

// RecordAnalysis records one keyword analysis compute.
func (r *Registry) RecordAnalysis(duration float64) {
	r.analysisDuration.Observe(duration)
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
