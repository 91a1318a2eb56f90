// Package metrics registers the prometheus collectors of the service and the
// fiber middleware that feeds them.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)
	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed.",
		},
	)

	productMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_product_mutations_total",
			Help: "Product writes by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_lookups_total",
			Help: "Product cache lookups by result.",
		},
		[]string{"result"},
	)
	ordersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders placed successfully.",
		},
	)
)

// Middleware records request counts and latency labelled by route pattern, so
// /products/1 and /products/2 share one series. It must run outside the
// middleware that renders handler errors, otherwise the status is not final.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		err := c.Next()

		path := c.Route().Path
		method := c.Method()
		httpRequestsTotal.WithLabelValues(strconv.Itoa(c.Response().StatusCode()), method, path).Inc()
		httpRequestsDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

func RecordProductMutation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	productMutations.WithLabelValues(operation, outcome).Inc()
}

func RecordCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func RecordOrderPlaced() {
	ordersPlaced.Inc()
}
