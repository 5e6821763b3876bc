package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type captureRecorder struct {
	stageCounts map[string]int
	indexCounts map[string]int
	successes   []bool
	observed    int
}

func newCaptureRecorder() *captureRecorder {
	return &captureRecorder{
		stageCounts: map[string]int{},
		indexCounts: map[string]int{},
	}
}

func (c *captureRecorder) IncStageTotal(stage string, success bool) {
	c.stageCounts[stage]++
	c.successes = append(c.successes, success)
}

func (c *captureRecorder) ObserveStageSeconds(string, bool, float64) { c.observed++ }

func (c *captureRecorder) IncIndexOpTotal(op string, success bool) {
	c.indexCounts[op]++
	c.successes = append(c.successes, success)
}

func (c *captureRecorder) ObserveIndexOpSeconds(string, bool, float64) { c.observed++ }

func TestTimeStage(t *testing.T) {
	capture := newCaptureRecorder()
	SetRecorder(capture)
	t.Cleanup(func() { SetRecorder(&noopRecorder{}) })

	done := TimeStage("translate")
	done(true)

	assert.Equal(t, 1, capture.stageCounts["translate"])
	assert.Equal(t, []bool{true}, capture.successes)
	assert.Equal(t, 1, capture.observed)
}

func TestTimeIndexOp(t *testing.T) {
	capture := newCaptureRecorder()
	SetRecorder(capture)
	t.Cleanup(func() { SetRecorder(&noopRecorder{}) })

	done := TimeIndexOp("search")
	done(false)

	assert.Equal(t, 1, capture.indexCounts["search"])
	assert.Equal(t, []bool{false}, capture.successes)
}

func TestDefaultIsNoop(t *testing.T) {
	// Calling through the default recorder must never panic
	assert.NotPanics(t, func() {
		TimeStage("assemble")(true)
		TimeIndexOp("add")(false)
	})
}
