package trustly

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sebamiro/trustly/fault"
	"github.com/sebamiro/trustly/message"
)

// Metrics holds the Prometheus collectors of a Client. A nil *Metrics
// records nothing.
type Metrics struct {
	calls         *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	notifications *prometheus.CounterVec
}

// NewMetrics registers the client collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustly_calls_total",
				Help: "Total number of API calls by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		callDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trustly_call_duration_seconds",
				Help:    "Duration of API calls in seconds, signing and validation included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustly_notifications_total",
				Help: "Total number of notifications acknowledged by method and status",
			},
			[]string{"method", "status"},
		),
	}
}

// Call outcomes besides the fault kinds.
const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected" // validated error reply
)

func (m *Metrics) observeCall(method string, resp *message.Response, err error) {
	if m == nil {
		return
	}
	outcome := outcomeOK
	switch {
	case err != nil:
		outcome = fault.KindOf(err).String()
	case resp != nil && resp.IsError():
		outcome = outcomeRejected
	}
	m.calls.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) observeDuration(method string, d time.Duration) {
	if m == nil {
		return
	}
	m.callDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) observeNotification(method, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(method, status).Inc()
}
