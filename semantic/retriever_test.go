package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/guestgraph/guestgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEmbed maps known texts to fixed vectors so similarity is fully
// controlled by the test.
var testVectors = map[string][]float32{
	"the room was spotless":     {1, 0, 0},
	"room cleanliness question": {0.95, 0.05, 0},
	"staff were rude":           {0, 1, 0},
	"service question":          {0, 0.9, 0.1},
	"breakfast was cold":        {0, 0, 1},
}

func testEmbed(text string) ([]float32, error) {
	if vector, ok := testVectors[text]; ok {
		return vector, nil
	}
	return []float32{0.5, 0.5, 0.5}, nil
}

func newTestRetriever(t *testing.T) *Retriever {
	t.Helper()
	retriever, err := NewRetriever(newTestIndex(t), testEmbed, slog.Default())
	require.NoError(t, err)
	return retriever
}

func seedRetriever(t *testing.T, retriever *Retriever) {
	t.Helper()
	_, err := retriever.Add(context.Background(),
		[]string{"the room was spotless", "staff were rude", "breakfast was cold"},
		[]model.Metadata{
			{"aspect": "cleanliness", "score": 9.0, "language": "en"},
			{"aspect": "service", "score": 3.0, "language": "en"},
			{"aspect": "food", "score": 5.0, "language": "tr"},
		},
		2,
	)
	require.NoError(t, err)
}

func TestNewRetriever(t *testing.T) {
	t.Run("RejectsNilIndex", func(t *testing.T) {
		_, err := NewRetriever(nil, testEmbed, nil)
		assert.Error(t, err)
	})

	t.Run("RejectsNilEmbedFunc", func(t *testing.T) {
		_, err := NewRetriever(newTestIndex(t), nil, nil)
		assert.Error(t, err)
	})
}

func TestRetrieve(t *testing.T) {
	t.Run("OrderedCappedAndThresholded", func(t *testing.T) {
		retriever := newTestRetriever(t)
		seedRetriever(t, retriever)

		results, err := retriever.Retrieve(context.Background(), "room cleanliness question", 2, 0.3, nil)
		require.NoError(t, err)

		require.NotEmpty(t, results)
		assert.LessOrEqual(t, len(results), 2)
		for i, result := range results {
			assert.GreaterOrEqual(t, result.Score, 0.3)
			if i > 0 {
				assert.GreaterOrEqual(t, results[i-1].Score, result.Score)
			}
		}
		assert.Equal(t, "the room was spotless", results[0].Content)
	})

	t.Run("HighThresholdYieldsEmpty", func(t *testing.T) {
		retriever := newTestRetriever(t)
		seedRetriever(t, retriever)

		results, err := retriever.Retrieve(context.Background(), "service question", 5, 0.999, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("ExactMatchFilter", func(t *testing.T) {
		retriever := newTestRetriever(t)
		seedRetriever(t, retriever)

		results, err := retriever.Retrieve(context.Background(), "room cleanliness question", 5, 0.0, map[string]any{"aspect": "service"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "staff were rude", results[0].Content)
	})

	t.Run("ListMembershipFilter", func(t *testing.T) {
		retriever := newTestRetriever(t)
		seedRetriever(t, retriever)

		results, err := retriever.Retrieve(context.Background(), "room cleanliness question", 5, 0.0, map[string]any{
			"aspect": []any{"cleanliness", "food"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
	})

	t.Run("NumericRangeFilter", func(t *testing.T) {
		retriever := newTestRetriever(t)
		seedRetriever(t, retriever)

		results, err := retriever.Retrieve(context.Background(), "room cleanliness question", 5, 0.0, map[string]any{
			"score": map[string]any{"$gte": 4.0, "$lte": 6.0},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "breakfast was cold", results[0].Content)
	})

	t.Run("MissingFieldRejectsEntry", func(t *testing.T) {
		retriever := newTestRetriever(t)
		seedRetriever(t, retriever)

		results, err := retriever.Retrieve(context.Background(), "room cleanliness question", 5, 0.0, map[string]any{"hotel": "Grand Palace"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("RejectsNonPositiveTopK", func(t *testing.T) {
		retriever := newTestRetriever(t)
		_, err := retriever.Retrieve(context.Background(), "anything", 0, 0.0, nil)
		assert.Error(t, err)
	})

	t.Run("EmptyIndexYieldsEmpty", func(t *testing.T) {
		retriever := newTestRetriever(t)
		results, err := retriever.Retrieve(context.Background(), "anything", 5, 0.0, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestRetrieverAdd(t *testing.T) {
	t.Run("InsertsAllBatches", func(t *testing.T) {
		retriever := newTestRetriever(t)

		texts := make([]string, 7)
		for i := range texts {
			texts[i] = fmt.Sprintf("review number %d", i)
		}

		inserted, err := retriever.Add(context.Background(), texts, nil, 3)
		require.NoError(t, err)
		assert.Equal(t, 7, inserted)
		assert.Equal(t, 7, retriever.Stats()["entries"])
	})

	t.Run("EmptyInputIsNoop", func(t *testing.T) {
		retriever := newTestRetriever(t)
		inserted, err := retriever.Add(context.Background(), nil, nil, 10)
		require.NoError(t, err)
		assert.Equal(t, 0, inserted)
	})

	t.Run("RejectsMetadataLengthMismatch", func(t *testing.T) {
		retriever := newTestRetriever(t)
		_, err := retriever.Add(context.Background(), []string{"a", "b"}, []model.Metadata{{}}, 10)
		assert.Error(t, err)
	})

	t.Run("CancelledContextStopsBetweenBatches", func(t *testing.T) {
		retriever := newTestRetriever(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := retriever.Add(ctx, []string{"a", "b"}, nil, 1)
		assert.Error(t, err)
	})
}

func TestRetrieverClear(t *testing.T) {
	retriever := newTestRetriever(t)
	seedRetriever(t, retriever)

	require.NoError(t, retriever.Clear())
	assert.Equal(t, 0, retriever.Stats()["entries"])
}
