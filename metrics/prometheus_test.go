package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnablePrometheus(t *testing.T) {
	t.Cleanup(func() { SetRecorder(&noopRecorder{}) })

	// Empty addr registers the recorder without an HTTP server
	require.NoError(t, EnablePrometheus(""))

	_, isProm := Default().(*promRecorder)
	assert.True(t, isProm)

	assert.NotPanics(t, func() {
		TimeStage("synthesize")(true)
		TimeIndexOp("add")(true)
	})
}
