// Package metrics expone las métricas Prometheus del servicio en un
// registry propio. Todos los métodos de *Metrics aceptan receptor nil.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	authEvents   *prometheus.CounterVec
	tasksTotal   *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
	chatRequests *prometheus.CounterVec
	rateRejects  *prometheus.CounterVec
}

// Config agrupa dependencias opcionales. Pool nil omite las métricas de pgxpool.
type Config struct {
	Namespace string
	Pool      func() *pgxpool.Pool
}

func New(cfg Config) (*Metrics, error) {
	ns := cfg.Namespace
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "Número total de requests procesadas",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de los requests HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		httpInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "http_inflight_requests",
			Help:      "Requests en vuelo por método y ruta",
		}, []string{"method", "path"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "auth_events_total",
			Help:      "Eventos de autenticación por tipo y resultado",
		}, []string{"event", "outcome"}), // event: login|refresh|logout|logout_all
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "program_tasks_total",
			Help:      "Tareas de programas terminadas por acción y estado",
		}, []string{"action", "status"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "program_task_duration_seconds",
			Help:      "Duración de ingestas y borrados",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"action"}),
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "chat_requests_total",
			Help:      "Requests de chat por resultado",
		}, []string{"outcome"}),
		rateRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "rate_limit_rejects_total",
			Help:      "Requests rechazadas por rate limit",
		}, []string{"scope"}),
	}

	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal, m.httpRequestDuration, m.httpInflight,
		m.authEvents, m.tasksTotal, m.taskDuration, m.chatRequests, m.rateRejects,
	}
	if cfg.Pool != nil {
		cs = append(cs, newDBPoolCollector(ns, cfg.Pool))
	}
	for _, c := range cs {
		if err := registerCollector(m.reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler sirve /metrics desde el registry propio.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry expone el registry (tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) RecordAuth(event, outcome string) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) RecordTask(action, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.tasksTotal.WithLabelValues(action, status).Inc()
	m.taskDuration.WithLabelValues(action).Observe(d.Seconds())
}

func (m *Metrics) RecordChat(outcome string) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRateReject(scope string) {
	if m == nil {
		return
	}
	m.rateRejects.WithLabelValues(scope).Inc()
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}
