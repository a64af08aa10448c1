package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checkout outcomes recorded by the order service.
const (
	ResultCreated         = "created"
	ResultRejected        = "rejected"
	ResultPaymentDeclined = "payment_declined"
	ResultPersistFailed   = "persist_failed"
)

// Registry holds the service's collectors. A nil *Registry is valid and
// records nothing, which keeps unit tests free of metric wiring.
type Registry struct {
	reg             *prometheus.Registry
	Checkouts       *prometheus.CounterVec
	PaymentCaptures *prometheus.CounterVec
	StatusUpdates   *prometheus.CounterVec
	OrderTotal      prometheus.Histogram
	CaptureLatency  prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordering_checkouts_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	captures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordering_payment_captures_total",
		Help: "Payment capture calls by outcome.",
	}, []string{"outcome"})
	statusUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ordering_status_updates_total",
		Help: "Applied order status updates by target status.",
	}, []string{"status"})
	orderTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ordering_order_total_eur",
		Help:    "Priced total of persisted orders.",
		Buckets: []float64{5, 10, 15, 20, 30, 50, 75, 100, 150},
	})
	captureLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ordering_payment_capture_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(checkouts, captures, statusUpdates, orderTotal, captureLatency)
	r.MustRegister(collectors.NewGoCollector())
	return &Registry{
		reg:             r,
		Checkouts:       checkouts,
		PaymentCaptures: captures,
		StatusUpdates:   statusUpdates,
		OrderTotal:      orderTotal,
		CaptureLatency:  captureLatency,
	}
}

func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) Checkout(result string) {
	if r == nil {
		return
	}
	r.Checkouts.WithLabelValues(result).Inc()
}

func (r *Registry) Capture(outcome string, seconds float64) {
	if r == nil {
		return
	}
	r.PaymentCaptures.WithLabelValues(outcome).Inc()
	r.CaptureLatency.Observe(seconds)
}

func (r *Registry) StatusUpdate(status string) {
	if r == nil {
		return
	}
	r.StatusUpdates.WithLabelValues(status).Inc()
}

func (r *Registry) ObserveOrderTotal(total float64) {
	if r == nil {
		return
	}
	r.OrderTotal.Observe(total)
}
