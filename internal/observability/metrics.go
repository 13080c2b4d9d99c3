package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scribe_gateway_active_sessions",
		Help: "Number of live dictation sessions",
	})

	totalSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_gateway_sessions_total",
		Help: "Total number of dictation sessions created",
	})

	// Collaborator metrics
	backendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_gateway_backend_requests_total",
		Help: "Total number of note-generation backend requests",
	}, []string{"operation", "status"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scribe_gateway_backend_latency_seconds",
		Help:    "Note-generation backend latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
	}, []string{"operation"})

	// Audio metrics
	audioBytesUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_gateway_audio_upload_bytes_total",
		Help: "Total audio bytes accepted for transcription",
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_gateway_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scribe_gateway_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_gateway_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})
)

// RecordSessionStart records a new dictation session.
func RecordSessionStart() {
	activeSessions.Inc()
	totalSessions.Inc()
}

// RecordSessionEnd records a dictation session being discarded.
func RecordSessionEnd() {
	activeSessions.Dec()
}

// ObserveBackendCall records one collaborator round trip.
func ObserveBackendCall(operation string, start time.Time, err error) {
	backendLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	backendRequests.WithLabelValues(operation, status).Inc()
}

// RecordAudioBytes records the size of an accepted audio upload.
func RecordAudioBytes(n int64) {
	audioBytesUploaded.Add(float64(n))
}

// RecordError records an error by type and component.
func RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// UpdateCircuitBreakerState updates the circuit breaker state metric.
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments the breaker failure counter.
// Counted once per rejected call, not per failed backend response.
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}

// CircuitBreakerFailureCounter returns the failure counter for a service.
func CircuitBreakerFailureCounter(service string) prometheus.Counter {
	return circuitBreakerFailures.WithLabelValues(service)
}
