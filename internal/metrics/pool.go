package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// dbPoolCollector expone gauges del pool pgx.
type dbPoolCollector struct {
	pool func() *pgxpool.Pool

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
	maxDesc      *prometheus.Desc
}

func newDBPoolCollector(ns string, pool func() *pgxpool.Pool) *dbPoolCollector {
	name := func(s string) string { return prometheus.BuildFQName(ns, "pgxpool", s) }
	return &dbPoolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc(name("acquired"), "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc(name("idle"), "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc(name("total"), "Conexiones totales", nil, nil),
		maxDesc:      prometheus.NewDesc(name("max"), "Máximo de conexiones configurado", nil, nil),
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
	ch <- c.maxDesc
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	p := c.pool()
	if p == nil {
		return
	}
	stat := p.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.maxDesc, prometheus.GaugeValue, float64(stat.MaxConns()))
}
