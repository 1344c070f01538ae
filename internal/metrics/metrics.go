// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPDuration   *prometheus.HistogramVec
	Checkouts      *prometheus.CounterVec
	CheckoutAmount *prometheus.CounterVec
	Voids          prometheus.Counter
	SalaryPayments prometheus.Counter
	DailyClosings  *prometheus.CounterVec
	Logins         *prometheus.CounterVec
}

// New registers every collector on a fresh registry, so tests can build
// as many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "barberpos",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberpos",
			Name:      "checkouts_total",
			Help:      "Completed checkouts. duplicate=true for idempotent replays.",
		}, []string{"duplicate"}),
		CheckoutAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberpos",
			Name:      "checkout_amount_rupiah_total",
			Help:      "Money taken at checkout per payment channel.",
		}, []string{"channel"}),
		Voids: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "barberpos",
			Name:      "transaction_voids_total",
			Help:      "Voided transactions.",
		}),
		SalaryPayments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "barberpos",
			Name:      "salary_payments_total",
			Help:      "Paid salary periods.",
		}),
		DailyClosings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberpos",
			Name:      "daily_closings_total",
			Help:      "Daily closings by trigger (manual or scheduled).",
		}, []string{"trigger"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberpos",
			Name:      "logins_total",
			Help:      "Login attempts by method (password, pin, refresh) and result.",
		}, []string{"method", "result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPDuration,
		m.Checkouts,
		m.CheckoutAmount,
		m.Voids,
		m.SalaryPayments,
		m.DailyClosings,
		m.Logins,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
