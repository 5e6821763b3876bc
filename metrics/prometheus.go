package metrics

import (
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	stageTotal   *prom.CounterVec
	stageSeconds *prom.HistogramVec
	indexTotal   *prom.CounterVec
	indexSeconds *prom.HistogramVec
}

func (p *promRecorder) IncStageTotal(stage string, success bool) {
	p.stageTotal.WithLabelValues(stage, fmt.Sprintf("%t", success)).Inc()
}

func (p *promRecorder) ObserveStageSeconds(stage string, success bool, seconds float64) {
	p.stageSeconds.WithLabelValues(stage, fmt.Sprintf("%t", success)).Observe(seconds)
}

func (p *promRecorder) IncIndexOpTotal(op string, success bool) {
	p.indexTotal.WithLabelValues(op, fmt.Sprintf("%t", success)).Inc()
}

func (p *promRecorder) ObserveIndexOpSeconds(op string, success bool, seconds float64) {
	p.indexSeconds.WithLabelValues(op, fmt.Sprintf("%t", success)).Observe(seconds)
}

// EnablePrometheus installs a Prometheus recorder and serves /metrics and
// /healthz on addr. Pass an empty addr to register without an HTTP server.
func EnablePrometheus(addr string) error {
	registry := prom.NewRegistry()
	p := &promRecorder{
		stageTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "rag_stage_total",
			Help: "Total number of pipeline stage executions",
		}, []string{"stage", "success"}),
		stageSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "rag_stage_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"stage", "success"}),
		indexTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "vector_index_ops_total",
			Help: "Total number of vector index operations",
		}, []string{"op", "success"}),
		indexSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "vector_index_op_seconds",
			Help:    "Vector index operation duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"op", "success"}),
	}

	registry.MustRegister(p.stageTotal, p.stageSeconds, p.indexTotal, p.indexSeconds)
	SetRecorder(p)

	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() { _ = http.ListenAndServe(addr, mux) }()
	return nil
}
