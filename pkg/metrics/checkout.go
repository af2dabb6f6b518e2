package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// CheckoutMetrics records checkout outcomes and latency.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	outcomes  *prometheus.CounterVec
	itemsSold prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	itemsSold := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_items_sold_total",
		Help: "Units sold through committed checkouts.",
	})
	reg.MustRegister(duration, outcomes, itemsSold)
	return &CheckoutMetrics{
		duration:  duration,
		outcomes:  outcomes,
		itemsSold: itemsSold,
	}
}

// Observe records one checkout attempt.
func (c *CheckoutMetrics) Observe(outcome string, elapsed time.Duration) {
	if c == nil || c.outcomes == nil {
		return
	}
	label := normalizeLabel(outcome)
	c.outcomes.WithLabelValues(label).Inc()
	c.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// AddItemsSold bumps the sold units counter.
func (c *CheckoutMetrics) AddItemsSold(units int) {
	if c == nil || c.itemsSold == nil || units <= 0 {
		return
	}
	c.itemsSold.Add(float64(units))
}

func normalizeLabel(outcome string) string {
	if outcome == "" {
		return "unknown"
	}
	return outcome
}
