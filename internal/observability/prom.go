package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "campushub"

var (
	httpBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
	dbBuckets   = []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5}
	jobBuckets  = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}
)

// Prom holds every collector the api and worker export. Both binaries build
// the full set; each only moves the series it owns.
type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	JobDuration  *prometheus.HistogramVec // result=done|retry|failed
	JobResults   *prometheus.CounterVec
	JobsInFlight prometheus.Gauge

	BookingOps        *prometheus.CounterVec // outcome=ok|conflict|forbidden|...
	BookingsCompleted prometheus.Counter
}

func counterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

func histogramVec(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: counterVec("http", "requests_total",
			"HTTP requests by method, route template and status.", "method", "route", "status"),
		RequestsDuration: histogramVec("http", "request_duration_seconds",
			"HTTP request latency.", httpBuckets, "method", "route", "status"),
		InFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "in_flight_requests",
			Help: "HTTP requests currently being served.",
		}, []string{"method", "route"}),

		DbQueryDuration: histogramVec("db", "query_duration_seconds",
			"Repository operation latency by logical op.", dbBuckets, "op", "status"),
		DbErrorsTotal: counterVec("db", "errors_total",
			"Repository errors by logical op and class.", "op", "class"),

		JobDuration: histogramVec("jobs", "duration_seconds",
			"Notification job run time by type and result.", jobBuckets, "job_type", "result"),
		JobResults: counterVec("jobs", "results_total",
			"Notification job outcomes by type and result.", "job_type", "result"),
		JobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "jobs", Name: "in_flight",
			Help: "Jobs executing in this worker process.",
		}),

		BookingOps: counterVec("bookings", "operations_total",
			"Booking lifecycle operations by op and outcome.", "op", "outcome"),
		BookingsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "bookings", Name: "completed_total",
			Help: "Confirmed bookings moved to completed by the worker sweep.",
		}),
	}

	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.JobDuration, p.JobResults, p.JobsInFlight,
		p.BookingOps, p.BookingsCompleted,
	)
	return p
}

func (p *Prom) ObserveBookingOp(op, outcome string) {
	p.BookingOps.WithLabelValues(op, outcome).Inc()
}

// GinHandleMiddleware labels by route template so path ids do not explode
// cardinality. Unrouted requests share one "unmatched" series.
func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method

		inFlight := p.InFlight.WithLabelValues(method, route)
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
	}
}
