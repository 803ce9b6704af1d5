package contentdesk

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "contentdesk"

// metrics holds the domain counters. Each App owns its registry so several
// apps can live in one process.
type metrics struct {
	registry         *prometheus.Registry
	documentsWritten *prometheus.CounterVec
	uploads          *prometheus.CounterVec
	signIns          *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &metrics{
		registry: reg,
		documentsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "documents_written_total",
			Help:      "Document store writes by collection and operation (insert, update, delete).",
		}, []string{"collection", "op"}),
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "uploads_total",
			Help:      "Media uploads by kind and result (ok, error).",
		}, []string{"kind", "result"}),
		signIns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sign_ins_total",
			Help:      "Sign-in attempts by result (ok, invalid, limited, error).",
		}, []string{"result"}),
	}
}

func (m *metrics) middleware() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metricsNamespace,
		Registerer: m.registry,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || p == "/healthz"
		},
	})
}

func (m *metrics) handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
