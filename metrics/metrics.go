// Package metrics provides a minimal instrumentation interface with a no-op
// default and an optional Prometheus-backed implementation.
package metrics

import (
	"sync"
	"time"
)

// Recorder defines the metrics surface used across the pipeline.
type Recorder interface {
	IncStageTotal(stage string, success bool)
	ObserveStageSeconds(stage string, success bool, seconds float64)
	IncIndexOpTotal(op string, success bool)
	ObserveIndexOpSeconds(op string, success bool, seconds float64)
}

// noopRecorder implements Recorder with no-ops.
type noopRecorder struct{}

func (n *noopRecorder) IncStageTotal(string, bool)                  {}
func (n *noopRecorder) ObserveStageSeconds(string, bool, float64)   {}
func (n *noopRecorder) IncIndexOpTotal(string, bool)                {}
func (n *noopRecorder) ObserveIndexOpSeconds(string, bool, float64) {}

var (
	recMu    sync.RWMutex
	recorder Recorder = &noopRecorder{}
)

// Default returns the current recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder implementation.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	recorder = r
}

// TimeStage times one orchestrator stage.
func TimeStage(stage string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncStageTotal(stage, success)
		Default().ObserveStageSeconds(stage, success, dur)
	}
}

// TimeIndexOp times one vector-index operation.
func TimeIndexOp(op string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncIndexOpTotal(op, success)
		Default().ObserveIndexOpSeconds(op, success, dur)
	}
}
