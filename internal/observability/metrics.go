package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus registry and the standard walrusctl meters.
type Metrics struct {
	Registry          *prometheus.Registry
	OperationDuration *prometheus.HistogramVec
	OperationTotal    *prometheus.CounterVec
	BytesTransferred  *prometheus.CounterVec
	EventsObserved    *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
}

// NewMetrics creates a custom Prometheus registry with the walrusctl metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	opDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "walrus_operation_duration_seconds",
		Help:    "Duration of Walrus client operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	opTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "walrus_operation_total",
		Help: "Total number of Walrus client operations.",
	}, []string{"operation", "status"})

	bytesTransferred := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "walrus_bytes_transferred_total",
		Help: "Total blob bytes uploaded and downloaded.",
	}, []string{"direction"})

	eventsObserved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "walrus_events_observed_total",
		Help: "Total blob events observed on chain, by event type.",
	}, []string{"event_type"})

	errorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "walrus_errors_total",
		Help: "Total number of errors.",
	}, []string{"operation", "type"})

	reg.MustRegister(opDuration, opTotal, bytesTransferred, eventsObserved, errorsTotal)

	return &Metrics{
		Registry:          reg,
		OperationDuration: opDuration,
		OperationTotal:    opTotal,
		BytesTransferred:  bytesTransferred,
		EventsObserved:    eventsObserved,
		ErrorsTotal:       errorsTotal,
	}
}

// AddBytes records transferred blob bytes. Direction is "upload" or
// "download". Safe on a nil receiver so one-shot commands can skip metrics.
func (m *Metrics) AddBytes(direction string, n int) {
	if m == nil {
		return
	}
	m.BytesTransferred.WithLabelValues(direction).Add(float64(n))
}

// ObserveEvent counts an on-chain blob event by type.
func (m *Metrics) ObserveEvent(eventType string) {
	if m == nil {
		return
	}
	m.EventsObserved.WithLabelValues(eventType).Inc()
}
