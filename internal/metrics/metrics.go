package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the store's collectors. Each instance has its own
// prometheus.Registry, so tests never collide on registration.
type Registry struct {
	reg                *prometheus.Registry
	OrdersPlaced       prometheus.Counter
	OrderRevenue       prometheus.Counter
	OrderStatusChanges *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	CartMutations      *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
	PublishFailures    *prometheus.CounterVec
	EventsConsumed     *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPLatencySec     prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{Name: "athletix_orders_placed_total"})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{Name: "athletix_order_revenue_total", Help: "Sum of order totals in store currency."})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "athletix_order_status_changes_total"}, []string{"status"})
	validation := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "athletix_validation_failures_total"}, []string{"operation"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "athletix_cart_mutations_total"}, []string{"op"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "athletix_events_published_total"}, []string{"topic"})
	publishFailures := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "athletix_event_publish_failures_total"}, []string{"topic"})
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "athletix_events_consumed_total"}, []string{"topic"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "athletix_http_requests_total"}, []string{"method", "code"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "athletix_http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(ordersPlaced, revenue, statusChanges, validation, cartMutations, published, publishFailures, consumed, requests, latency)
	return &Registry{
		reg:                r,
		OrdersPlaced:       ordersPlaced,
		OrderRevenue:       revenue,
		OrderStatusChanges: statusChanges,
		ValidationFailures: validation,
		CartMutations:      cartMutations,
		EventsPublished:    published,
		PublishFailures:    publishFailures,
		EventsConsumed:     consumed,
		HTTPRequests:       requests,
		HTTPLatencySec:     latency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
