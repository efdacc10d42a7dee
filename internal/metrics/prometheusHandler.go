package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var ingestChunksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingest_chunks_total",
	Help: "Chunks processed by the ingestion pipeline labelled by outcome",
}, []string{"outcome"})

var chatTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chat_turns_total",
	Help: "Chat turns labelled by the dialogue state they ended in",
}, []string{"state"})

var upstreamRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "upstream_retries_total",
	Help: "Retries issued against rate limited upstreams",
}, []string{"operation"})

var configMismatchTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "config_mismatch_total",
	Help: "Vector dimension or partition name mismatches. Any non zero value needs an operator",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func CountChunk(outcome string) {
	ingestChunksTotal.WithLabelValues(outcome).Inc()
}

func CountChatTurn(state string) {
	chatTurnsTotal.WithLabelValues(state).Inc()
}

func CountRetry(operation string) {
	upstreamRetriesTotal.WithLabelValues(operation).Inc()
}

func CountConfigMismatch() {
	configMismatchTotal.Inc()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_job_duration_seconds",
	Help:    "Total time spent executing an ingestion job.",
	Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 900},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
