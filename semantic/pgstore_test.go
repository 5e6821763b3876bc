package semantic

import (
	"context"
	"testing"

	"github.com/guestgraph/guestgraph/helper"
	"github.com/guestgraph/guestgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGStore(t *testing.T) {
	teardown, port, err := helper.MustStartPostgresContainer()
	require.NoError(t, err, "failed to start postgres container")
	defer func() {
		if teardown != nil {
			require.NoError(t, teardown(context.Background()))
		}
	}()

	db := helper.NewTestDatabase(port)
	defer db.Close()

	store, err := NewPGStore(db, 3, false)
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("InsertAssignsSequentialIDs", func(t *testing.T) {
		first, err := store.InsertChunk(ctx, "the room was spotless", model.Metadata{"aspect": "cleanliness"}, []float32{1, 0, 0})
		require.NoError(t, err)
		second, err := store.InsertChunk(ctx, "staff were rude", model.Metadata{"aspect": "service"}, []float32{0, 1, 0})
		require.NoError(t, err)
		assert.Equal(t, first+1, second)
	})

	t.Run("SearchOrdersByDistance", func(t *testing.T) {
		results, err := store.SearchBySimilarity(ctx, []float32{0.9, 0.1, 0}, 10, 0.0)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "the room was spotless", results[0].Content)
		assert.Greater(t, results[0].Score, results[1].Score)
		assert.Equal(t, "cleanliness", results[0].Metadata["aspect"])
	})

	t.Run("SearchAppliesScoreThreshold", func(t *testing.T) {
		results, err := store.SearchBySimilarity(ctx, []float32{1, 0, 0}, 10, 0.9)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "the room was spotless", results[0].Content)
	})

	t.Run("CountAndClear", func(t *testing.T) {
		count, err := store.CountChunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		require.NoError(t, store.ClearChunks(ctx))

		count, err = store.CountChunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}
