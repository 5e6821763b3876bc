package graph

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/guestgraph/guestgraph/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *GremlinClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewGremlinClient(GremlinConfig{
		Endpoint: server.URL,
		Timeout:  time.Second,
		Retry:    fastRetry(),
	}, slog.Default())
	require.NoError(t, err)
	return client
}

func TestNewGremlinClient(t *testing.T) {
	t.Run("RejectsEmptyEndpoint", func(t *testing.T) {
		_, err := NewGremlinClient(GremlinConfig{}, nil)
		assert.Error(t, err)
	})
}

func TestGremlinExecute(t *testing.T) {
	t.Run("DecodesPlainRows", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":{"code":200},"result":{"data":[{"id":"1","label":"Hotel","name":["Grand Palace"]}]}}`))
		})

		rows, err := client.Execute(context.Background(), "g.V().hasLabel('Hotel').valueMap(true).limit(10)")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Hotel", rows[0]["label"])
	})

	t.Run("DecodesGraphSONTypedRows", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":{"code":200},"result":{"data":{"@type":"g:List","@value":[
				{"@type":"g:Map","@value":["id",{"@type":"g:Int64","@value":42},"label","Hotel","name",{"@type":"g:List","@value":["Grand Palace"]}]}
			]}}}`))
		})

		rows, err := client.Execute(context.Background(), "g.V().limit(1)")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, float64(42), rows[0]["id"])
		assert.Equal(t, "Hotel", rows[0]["label"])
		assert.Equal(t, []any{"Grand Palace"}, rows[0]["name"])
	})

	t.Run("RejectedQueryIsNotRetried", func(t *testing.T) {
		attempts := 0
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			attempts++
			http.Error(w, "could not compile query", http.StatusBadRequest)
		})

		_, err := client.Execute(context.Background(), "g.V().bogusStep()")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrQueryRejected)
		assert.Equal(t, 1, attempts)
	})

	t.Run("TransientFailureIsRetried", func(t *testing.T) {
		attempts := 0
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"status":{"code":200},"result":{"data":[]}}`))
		})

		rows, err := client.Execute(context.Background(), "g.V().limit(1)")
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Equal(t, 2, attempts)
	})

	t.Run("EmbeddedStatusRejection", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":{"code":498,"message":"malformed request"},"result":{"data":null}}`))
		})

		_, err := client.Execute(context.Background(), "g.V()")
		assert.ErrorIs(t, err, ErrQueryRejected)
	})
}

func TestMaterializeResult(t *testing.T) {
	t.Run("SplitsNodesAndEdges", func(t *testing.T) {
		rows := []map[string]any{
			{"id": "v1", "label": "Hotel", "name": []any{"Grand Palace"}, "city": []any{"Istanbul"}},
			{"id": "e1", "label": "HAS_REVIEW", "outV": "v1", "inV": "v2"},
		}

		result := MaterializeResult(rows, 12*time.Millisecond)
		assert.Equal(t, 2, result.TotalCount)
		assert.Equal(t, 12*time.Millisecond, result.ExecutionTime)

		require.Len(t, result.Nodes, 1)
		assert.Equal(t, "Hotel", result.Nodes[0].Label)
		assert.Equal(t, "Grand Palace", result.Nodes[0].Properties["name"])

		require.Len(t, result.Edges, 1)
		assert.Equal(t, "HAS_REVIEW", result.Edges[0].Label)
		assert.Equal(t, "v1", result.Edges[0].SourceID)
		assert.Equal(t, "v2", result.Edges[0].TargetID)
	})

	t.Run("EmptyRowsYieldEmptyResult", func(t *testing.T) {
		result := MaterializeResult(nil, 0)
		assert.Equal(t, 0, result.TotalCount)
		assert.Empty(t, result.Nodes)
		assert.Empty(t, result.Edges)
	})

	t.Run("ScalarRowsBecomePropertyNodes", func(t *testing.T) {
		result := MaterializeResult([]map[string]any{{"value": float64(7)}}, 0)
		require.Len(t, result.Nodes, 1)
		assert.Equal(t, float64(7), result.Nodes[0].Properties["value"])
	})
}
