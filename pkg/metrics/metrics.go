package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	MethodCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smskit_method_calls_total",
			Help: "Total number of plugin method invocations (count)",
		},
		[]string{"method", "status"},
	)

	MethodDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smskit_method_duration_ms",
			Help:    "Duration of plugin method invocations in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"method"},
	)

	MessagesReturnedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smskit_messages_returned_total",
			Help: "Total number of message records returned to callers (count)",
		},
		[]string{"mode"},
	)

	ClassifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smskit_classified_total",
			Help: "Total number of message bodies classified (count)",
		},
		[]string{"result"},
	)

	SourceQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smskit_source_query_duration_ms",
			Help:    "Duration of message source queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"source", "status"},
	)

	PermissionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_requests_total",
			Help: "Total number of permission requests by outcome (count)",
		},
		[]string{"outcome"},
	)

	PermissionChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_checks_total",
			Help: "Total number of permission checks by observed state (count)",
		},
		[]string{"state"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of times fallback strategies were used (count)",
		},
		[]string{"service", "strategy", "reason"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	ExportFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smskit_export_failures_total",
			Help: "Total number of failed transaction exports (count)",
		},
		[]string{"topic"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			MethodCallsTotal,
			MethodDuration,
			MessagesReturnedTotal,
			ClassifiedTotal,
			SourceQueryDuration,
			PermissionRequestsTotal,
			PermissionChecksTotal,
			CircuitBreakerState,
			CircuitBreakerRequests,
			CircuitBreakerFailures,
			RateLimitRequestsTotal,
			FallbackUsageTotal,
			KafkaMessagesWrittenTotal,
			KafkaWriteDuration,
			ExportFailuresTotal,
		)
	})
}

func ObserveMethodCall(method, status string, duration time.Duration) {
	MethodCallsTotal.WithLabelValues(method, status).Inc()
	MethodDuration.WithLabelValues(method).Observe(float64(duration.Milliseconds()))
}

func AddMessagesReturned(mode string, count int) {
	MessagesReturnedTotal.WithLabelValues(mode).Add(float64(count))
}

func IncClassified(isTransaction bool) {
	result := "other"
	if isTransaction {
		result = "transaction"
	}
	ClassifiedTotal.WithLabelValues(result).Inc()
}

func ObserveSourceQuery(source, status string, duration time.Duration) {
	SourceQueryDuration.WithLabelValues(source, status).Observe(float64(duration.Milliseconds()))
}

func IncPermissionRequest(outcome string) {
	PermissionRequestsTotal.WithLabelValues(outcome).Inc()
}

func IncPermissionCheck(state string) {
	PermissionChecksTotal.WithLabelValues(state).Inc()
}

func IncKafkaMessagesWritten(service, topic string, count int) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Add(float64(count))
}

func ObserveKafkaWriteDuration(service, topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}
