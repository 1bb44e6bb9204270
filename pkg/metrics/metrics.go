package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration   *prometheus.HistogramVec
	DBQueryErrors     *prometheus.CounterVec
	DBOpenConnections prometheus.Gauge
	DBInUse           prometheus.Gauge
	DBIdle            prometheus.Gauge
	DBWaitCount       prometheus.Gauge

	// Бизнес-метрики
	AppointmentsCreated *prometheus.CounterVec
	OverlapHalts        *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
}

// New создает метрики и регистрирует их в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegisterer создает метрики и регистрирует их в переданном registerer
func NewWithRegisterer(reg prometheus.Registerer, serviceName string) *Metrics {
	ns := namespace(serviceName)

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "db_query_duration_seconds",
			Help:      "Database query latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		DBQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "db_query_errors_total",
			Help:      "Total number of failed database queries",
		}, []string{"operation"}),
		DBOpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "db_open_connections",
			Help:      "Number of established connections",
		}),
		DBInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "db_in_use_connections",
			Help:      "Number of connections currently in use",
		}),
		DBIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "db_idle_connections",
			Help:      "Number of idle connections",
		}),
		DBWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "db_wait_count",
			Help:      "Total number of connections waited for",
		}),

		AppointmentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "appointments_created_total",
			Help:      "Total number of created appointments",
		}, []string{"track", "overlap_confirmed"}),
		OverlapHalts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "overlap_halts_total",
			Help:      "Create/edit requests halted because of overlapping appointments",
		}, []string{"flow"}),
		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "notifications_failed_total",
			Help:      "Notifications that could not be dispatched",
		}, []string{"event"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBQueryErrors,
		m.DBOpenConnections,
		m.DBInUse,
		m.DBIdle,
		m.DBWaitCount,
		m.AppointmentsCreated,
		m.OverlapHalts,
		m.NotificationsFailed,
	)

	return m
}

// ObserveHTTP записывает метрики одного HTTP запроса
func (m *Metrics) ObserveHTTP(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveQuery записывает длительность запроса к БД
func (m *Metrics) ObserveQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// IncAppointmentCreated учитывает созданную запись
func (m *Metrics) IncAppointmentCreated(track string, overlapConfirmed bool) {
	if m == nil {
		return
	}
	confirmed := "false"
	if overlapConfirmed {
		confirmed = "true"
	}
	m.AppointmentsCreated.WithLabelValues(track, confirmed).Inc()
}

// IncOverlapHalt учитывает остановку создания/редактирования из-за пересечения
func (m *Metrics) IncOverlapHalt(flow string) {
	if m == nil {
		return
	}
	m.OverlapHalts.WithLabelValues(flow).Inc()
}

// IncNotificationFailed учитывает неотправленное уведомление
func (m *Metrics) IncNotificationFailed(event string) {
	if m == nil {
		return
	}
	m.NotificationsFailed.WithLabelValues(event).Inc()
}

func namespace(serviceName string) string {
	ns := strings.ToLower(strings.TrimSpace(serviceName))
	ns = strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(ns)
	return ns
}
