package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the metrics surface the rest of the application records
// against. Init returns either the Prometheus implementation or a noop.
type Recorder interface {
	// RecordBind counts a bind decision by the kind of DN presented
	// (service, user, invalid).
	RecordBind(kind string, allowed bool)
	// RecordSearch counts a search decision by the kind of base searched
	// (root, users, groups, user, group, invalid).
	RecordSearch(kind string, allowed bool)
	// RecordAccountLocked counts accounts crossing the lockout threshold.
	RecordAccountLocked()
	// RecordDatabaseQueryError counts store-layer failures by operation.
	RecordDatabaseQueryError(operation string)
	// SetDirectoryCounts updates the directory size gauges.
	SetDirectoryCounts(users, services, groups int64)
}

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Bind/Search Decision Metrics
	BindsTotal      *prometheus.CounterVec
	SearchesTotal   *prometheus.CounterVec
	AccountLockouts prometheus.Counter

	// Directory Size Gauges
	DirectoryUsers    prometheus.Gauge
	DirectoryServices prometheus.Gauge
	DirectoryGroups   prometheus.Gauge

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	return &Metrics{
		BindsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_binds_total",
				Help: "Total number of bind decisions",
			},
			[]string{"kind", "outcome"}, // kind: service, user, invalid; outcome: allowed, denied
		),
		SearchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_searches_total",
				Help: "Total number of search decisions",
			},
			[]string{"kind", "outcome"}, // kind: root, users, groups, user, group, invalid
		),
		AccountLockouts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "directory_account_lockouts_total",
				Help: "Total number of accounts locked by failed login attempts",
			},
		),

		DirectoryUsers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "directory_users",
				Help: "Current number of users in the directory",
			},
		),
		DirectoryServices: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "directory_services",
				Help: "Current number of services in the directory",
			},
		),
		DirectoryGroups: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "directory_groups",
				Help: "Current number of groups in the directory",
			},
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors",
			},
			[]string{"operation"},
		),
	}
}

// GetMetrics returns the initialized default metrics instance.
func GetMetrics() *Metrics {
	return defaultMetrics
}

func outcome(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}

func (m *Metrics) RecordBind(kind string, allowed bool) {
	m.BindsTotal.WithLabelValues(kind, outcome(allowed)).Inc()
}

func (m *Metrics) RecordSearch(kind string, allowed bool) {
	m.SearchesTotal.WithLabelValues(kind, outcome(allowed)).Inc()
}

func (m *Metrics) RecordAccountLocked() {
	m.AccountLockouts.Inc()
}

func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) SetDirectoryCounts(users, services, groups int64) {
	m.DirectoryUsers.Set(float64(users))
	m.DirectoryServices.Set(float64(services))
	m.DirectoryGroups.Set(float64(groups))
}
