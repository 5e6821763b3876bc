package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guestgraph/guestgraph/pkg/retry"
)

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func completionResponse(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":"` + content + `"}}]}`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL: server.URL + "/v1",
		Model:   "test-model",
		Retry:   fastRetry(),
	}, nil)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("RequiresModel", func(t *testing.T) {
		_, err := NewClient(Config{}, nil)
		assert.Error(t, err)
	})

	t.Run("DefaultsApply", func(t *testing.T) {
		client, err := NewClient(Config{Model: "m"}, nil)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestGenerate(t *testing.T) {
	t.Run("ReturnsTrimmedContent", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(completionResponse("  g.V().hasLabel('Hotel')  ")))
		})

		content, err := client.Generate(context.Background(), "translate this")
		require.NoError(t, err)
		assert.Equal(t, "g.V().hasLabel('Hotel')", content)
	})

	t.Run("RetriesServerErrors", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(completionResponse("answer")))
		})

		content, err := client.Generate(context.Background(), "question")
		require.NoError(t, err)
		assert.Equal(t, "answer", content)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("DoesNotRetryAuthErrors", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
		})

		_, err := client.Generate(context.Background(), "question")
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("EmptyChoicesIsAnError", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices":[]}`))
		})

		_, err := client.Generate(context.Background(), "question")
		assert.ErrorContains(t, err, "empty completion response")
	})
}
