// Package metrics provides Prometheus metrics for the bikedash application.
package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Dataset metrics
	DatasetRowsLoaded  prometheus.Gauge
	DatasetRowsDropped prometheus.Gauge
	DatasetLoadsTotal  prometheus.Counter

	// Database metrics
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBWaitSecondsTotal prometheus.Counter

	// logger for error reporting
	logger *slog.Logger

	// collectorStarted prevents spawning multiple collector goroutines
	collectorStarted atomic.Bool

	// cancel stops the DB stats collector goroutine
	cancel context.CancelFunc

	// wg tracks the DB stats collector goroutine for graceful shutdown
	wg sync.WaitGroup
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bikedash_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bikedash_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	datasetRowsLoaded := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bikedash_dataset_rows_loaded",
		Help: "Number of trip records currently loaded",
	})

	datasetRowsDropped := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bikedash_dataset_rows_dropped",
		Help: "Number of source rows excluded during the last import for failing to parse",
	})

	datasetLoadsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bikedash_dataset_loads_total",
		Help: "Total number of dataset imports performed",
	})

	dbConnectionsOpen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bikedash_db_connections_open",
		Help: "Number of open database connections",
	})

	dbConnectionsInUse := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bikedash_db_connections_in_use",
		Help: "Number of database connections currently in use",
	})

	dbConnectionsIdle := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bikedash_db_connections_idle",
		Help: "Number of idle database connections",
	})

	dbWaitSecondsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bikedash_db_wait_seconds_total",
		Help: "Total time blocked waiting for a database connection",
	})

	// Register all metrics with the custom registry
	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		datasetRowsLoaded,
		datasetRowsDropped,
		datasetLoadsTotal,
		dbConnectionsOpen,
		dbConnectionsInUse,
		dbConnectionsIdle,
		dbWaitSecondsTotal,
	)

	return &Metrics{
		Registry:            registry,
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		DatasetRowsLoaded:   datasetRowsLoaded,
		DatasetRowsDropped:  datasetRowsDropped,
		DatasetLoadsTotal:   datasetLoadsTotal,
		DBConnectionsOpen:   dbConnectionsOpen,
		DBConnectionsInUse:  dbConnectionsInUse,
		DBConnectionsIdle:   dbConnectionsIdle,
		DBWaitSecondsTotal:  dbWaitSecondsTotal,
		logger:              logger,
	}
}

// StartDBStatsCollector samples the SQLite connection pool every interval
// and feeds the DB gauges. Only the first call starts a collector; Shutdown
// stops it.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if db == nil {
		return
	}

	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Register with the WaitGroup before exposing cancel so Shutdown cannot
	// miss the goroutine.
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil && m.logger != nil {
				m.logger.Error("panic in DB stats collector", "error", r)
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var lastWaitDuration time.Duration
		for {
			select {
			case <-ticker.C:
				lastWaitDuration = m.recordDBStats(db.Stats(), lastWaitDuration)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// recordDBStats publishes one pool sample. WaitDuration is cumulative in
// sql.DBStats, so only the delta since the previous sample is added.
func (m *Metrics) recordDBStats(stats sql.DBStats, lastWaitDuration time.Duration) time.Duration {
	m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
	m.DBConnectionsInUse.Set(float64(stats.InUse))
	m.DBConnectionsIdle.Set(float64(stats.Idle))

	if delta := stats.WaitDuration - lastWaitDuration; delta > 0 {
		m.DBWaitSecondsTotal.Add(delta.Seconds())
	}
	return stats.WaitDuration
}

// Shutdown stops the DB stats collector and waits for it to exit. Safe to
// call more than once.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
