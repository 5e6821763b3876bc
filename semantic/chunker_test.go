package semantic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	t.Run("SplitsOnTerminators", func(t *testing.T) {
		sentences := SplitSentences("The room was clean. Staff were friendly! Would I return? Absolutely.")
		assert.Equal(t, []string{
			"The room was clean.",
			"Staff were friendly!",
			"Would I return?",
			"Absolutely.",
		}, sentences)
	})

	t.Run("EmptyText", func(t *testing.T) {
		assert.Empty(t, SplitSentences("   "))
	})

	t.Run("NoTerminators", func(t *testing.T) {
		sentences := SplitSentences("great location near the old town")
		assert.Equal(t, []string{"great location near the old town"}, sentences)
	})
}

func TestChunkReview(t *testing.T) {
	t.Run("ShortReviewStaysSingleChunk", func(t *testing.T) {
		chunks := ChunkReview("The breakfast was excellent. The pool was cold.", 5)
		assert.Len(t, chunks, 1)
	})

	t.Run("LongReviewSplits", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 12; i++ {
			b.WriteString("This sentence pads out a very long review. ")
		}
		chunks := ChunkReview(b.String(), 5)
		assert.Len(t, chunks, 3)
		for _, chunk := range chunks {
			assert.NotEmpty(t, chunk)
		}
	})

	t.Run("EmptyReviewYieldsNothing", func(t *testing.T) {
		assert.Nil(t, ChunkReview("  ", 5))
	})

	t.Run("NonPositiveMaxUsesDefault", func(t *testing.T) {
		chunks := ChunkReview("One. Two. Three.", 0)
		assert.Len(t, chunks, 1)
	})
}
