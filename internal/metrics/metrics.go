package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carinderia/internal/inventory"
)

// Registry owns the application's collectors. It satisfies inventory.Recorder.
type Registry struct {
	reg                 *prometheus.Registry
	ConsumptionsApplied prometheus.Counter
	QuantityConsumed    prometheus.Counter
	ConsumptionsFailed  *prometheus.CounterVec
	StockLots           *prometheus.GaugeVec
	Requests            *prometheus.CounterVec
	RequestLatencySec   *prometheus.HistogramVec
}

// NewRegistry builds a private registry with every collector registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	applied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carinderia_consumptions_applied_total",
		Help: "Consumptions that decremented a stock lot.",
	})
	quantity := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carinderia_quantity_consumed_total",
		Help: "Sum of quantities drawn from stock lots, in each lot's own unit.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carinderia_consumptions_rejected_total",
		Help: "Consumptions refused, by reason.",
	}, []string{"reason"})
	lots := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "carinderia_stock_lots",
		Help: "Active stock lots by expiry status as of the last listing.",
	}, []string{"status"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carinderia_http_requests_total",
		Help: "HTTP requests served, by method and status code.",
	}, []string{"method", "code"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carinderia_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, by method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	r.MustRegister(applied, quantity, rejected, lots, requests, latency)
	return &Registry{
		reg:                 r,
		ConsumptionsApplied: applied,
		QuantityConsumed:    quantity,
		ConsumptionsFailed:  rejected,
		StockLots:           lots,
		Requests:            requests,
		RequestLatencySec:   latency,
	}
}

// Handler serves the registry in the Prometheus text exposition format.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// ConsumptionApplied counts a successful consumption.
func (r *Registry) ConsumptionApplied(quantity float64) {
	r.ConsumptionsApplied.Inc()
	if quantity > 0 {
		r.QuantityConsumed.Add(quantity)
	}
}

// ConsumptionRejected counts a refused consumption.
func (r *Registry) ConsumptionRejected(reason string) {
	r.ConsumptionsFailed.WithLabelValues(reason).Inc()
}

// ObserveLots replaces the per-status lot gauges with the counts in views.
func (r *Registry) ObserveLots(views []inventory.LotView) {
	counts := make(map[inventory.Status]int)
	for _, view := range views {
		if view.Active() {
			counts[view.Expiry.Status]++
		}
	}
	for _, status := range inventory.Statuses() {
		r.StockLots.WithLabelValues(status.String()).Set(float64(counts[status]))
	}
}

// Instrument counts requests and observes their latency.
func (r *Registry) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		r.Requests.WithLabelValues(req.Method, strconv.Itoa(rec.status)).Inc()
		r.RequestLatencySec.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

var _ inventory.Recorder = (*Registry)(nil)
