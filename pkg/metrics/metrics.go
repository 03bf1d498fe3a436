package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus метрик сервиса
type Metrics struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	dbQueries     *prometheus.HistogramVec
	dbErrors      *prometheus.CounterVec
	dbOpenConns   *prometheus.GaugeVec
	dbInUseConns  *prometheus.GaugeVec
	dbIdleConns   *prometheus.GaugeVec
	dbWaitCount   *prometheus.GaugeVec
	reminders     *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// New регистрирует метрики в стандартном registry
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует метрики в переданном registry
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		dbQueries: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		dbErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Database query errors",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		dbOpenConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_open_connections",
			Help:        "Open connections in pool",
			ConstLabels: constLabels,
		}, []string{"db"}),
		dbInUseConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_in_use_connections",
			Help:        "Connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),
		dbIdleConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Idle connections in pool",
			ConstLabels: constLabels,
		}, []string{"db"}),
		dbWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reminders_processed_total",
			Help:        "Processed reminder instances by final status",
			ConstLabels: constLabels,
		}, []string{"status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "notifications_total",
			Help:        "Notifications by channel and status",
			ConstLabels: constLabels,
		}, []string{"channel", "status"}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.dbQueries,
		m.dbErrors,
		m.dbOpenConns,
		m.dbInUseConns,
		m.dbIdleConns,
		m.dbWaitCount,
		m.reminders,
		m.notifications,
	)

	return m
}

// ObserveHTTP фиксирует HTTP запрос
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveQuery фиксирует запрос к БД (реализует dbmetrics.Collector)
func (m *Metrics) ObserveQuery(_ string, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.dbQueries.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil && err != sql.ErrNoRows {
		m.dbErrors.WithLabelValues(operation).Inc()
	}
}

// SetPoolStats обновляет метрики connection pool (реализует dbmetrics.Collector)
func (m *Metrics) SetPoolStats(service string, stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbOpenConns.WithLabelValues(service).Set(float64(stats.OpenConnections))
	m.dbInUseConns.WithLabelValues(service).Set(float64(stats.InUse))
	m.dbIdleConns.WithLabelValues(service).Set(float64(stats.Idle))
	m.dbWaitCount.WithLabelValues(service).Set(float64(stats.WaitCount))
}

// ReminderProcessed учитывает обработанное напоминание
func (m *Metrics) ReminderProcessed(status string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(status).Inc()
}

// NotificationProcessed учитывает отправленное уведомление
func (m *Metrics) NotificationProcessed(channel, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, status).Inc()
}
