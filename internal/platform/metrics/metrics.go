package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Collector holds the Prometheus series exported by the service.
type Collector struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter
	DBQueryDuration *prometheus.HistogramVec
	Mutations       *prometheus.CounterVec
}

// New registers the collector's series on reg. Passing a fresh
// prometheus.NewRegistry keeps tests isolated from the default registry.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "employeedir_http_requests_total",
			Help: "Total HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "employeedir_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimited: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "employeedir_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "employeedir_db_query_duration_seconds",
			Help:    "Duration of employee store queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		Mutations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "employeedir_employee_mutations_total",
			Help: "Employee create/update/delete attempts by outcome.",
		}, []string{"action", "outcome"}),
	}

	for _, action := range []string{"create", "update", "delete"} {
		for _, outcome := range []string{OutcomeSuccess, OutcomeInvalid, OutcomeNotFound, OutcomeError} {
			c.Mutations.WithLabelValues(action, outcome)
		}
	}

	return c
}

func (c *Collector) Record(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	if status == 429 {
		c.RateLimited.Inc()
	}
}

// ObserveQuery is meant to be deferred at the top of a store method:
//
//	defer c.ObserveQuery("list_employees", time.Now())
func (c *Collector) ObserveQuery(query string, start time.Time) {
	if c == nil {
		return
	}
	c.DBQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

func (c *Collector) Mutation(action, outcome string) {
	if c == nil {
		return
	}
	c.Mutations.WithLabelValues(action, outcome).Inc()
}
