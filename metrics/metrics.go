package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	intentDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_intent_decisions_total",
		Help: "Intent classification decisions by label",
	}, []string{"label"})

	intentAnomalies = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_intent_anomalies_total",
		Help: "Classifier outputs that fell back to the refusing label",
	}, []string{"cause"})

	retrieverLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orchestrator_retriever_latency_ms",
		Help:    "Latency of retriever calls in milliseconds",
		Buckets: []float64{10, 25, 50, 75, 100, 150, 200, 300, 500, 800, 1200},
	}, []string{"type"})

	retrieverResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orchestrator_retriever_results",
		Help:    "Number of results returned by a retriever",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"type"})

	contextPassages = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orchestrator_context_passages",
		Help:    "Distinct passages assembled into the generation context",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 8, 12, 16},
	})

	downstreamCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_downstream_calls_total",
		Help: "Downstream assistant calls by intent and outcome",
	}, []string{"intent", "outcome"})

	requestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orchestrator_request_latency_ms",
		Help:    "End-to-end orchestration latency in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000},
	}, []string{"intent"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(intentDecisions, intentAnomalies, retrieverLatency, retrieverResults, contextPassages, downstreamCalls, requestLatency)
	})
}

// IncIntent records a classification decision.
func IncIntent(label string) {
	ensureRegistered()
	intentDecisions.WithLabelValues(label).Inc()
}

// IncIntentAnomaly records a fallback to the refusing label. cause is
// either "anomaly" (unrecognized output) or "failure" (call error).
func IncIntentAnomaly(cause string) {
	ensureRegistered()
	intentAnomalies.WithLabelValues(cause).Inc()
}

// ObserveRetriever records latency and result size for a retriever type.
func ObserveRetriever(typ string, start time.Time, results int) {
	ensureRegistered()
	dur := time.Since(start).Milliseconds()
	retrieverLatency.WithLabelValues(typ).Observe(float64(dur))
	retrieverResults.WithLabelValues(typ).Observe(float64(results))
}

// ObserveContext records how many distinct passages survived the merge.
func ObserveContext(n int) {
	ensureRegistered()
	contextPassages.Observe(float64(n))
}

// IncDownstream records a downstream assistant call outcome
// (ok/http_error/transport_error).
func IncDownstream(intent, outcome string) {
	ensureRegistered()
	downstreamCalls.WithLabelValues(intent, outcome).Inc()
}

// ObserveRequest records end-to-end latency for one orchestration.
func ObserveRequest(intent string, start time.Time) {
	ensureRegistered()
	requestLatency.WithLabelValues(intent).Observe(float64(time.Since(start).Milliseconds()))
}
