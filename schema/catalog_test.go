package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	t.Run("CoreEntitiesPresent", func(t *testing.T) {
		for _, label := range []string{"Hotel", "Review", "Reviewer", "Analysis", "Aspect", "Language", "Source"} {
			_, ok := catalog.Entity(label)
			assert.True(t, ok, "missing entity %s", label)
		}
	})

	t.Run("CoreRelationshipsPresent", func(t *testing.T) {
		for _, label := range []string{"HAS_REVIEW", "WROTE", "HAS_ANALYSIS", "ANALYZES_ASPECT", "WRITTEN_IN", "SOURCED_FROM"} {
			assert.True(t, catalog.HasRelationship(label), "missing relationship %s", label)
		}
	})

	t.Run("ReviewCarriesScore", func(t *testing.T) {
		review, ok := catalog.Entity("Review")
		require.True(t, ok)
		var found bool
		for _, property := range review.Properties {
			if property.Name == "score" {
				found = true
				assert.Equal(t, PropertyFloat, property.Type)
			}
		}
		assert.True(t, found)
	})

	t.Run("RelationshipEndpoints", func(t *testing.T) {
		wrote, ok := catalog.Relationship("WROTE")
		require.True(t, ok)
		assert.Equal(t, "Reviewer", wrote.From)
		assert.Equal(t, "Review", wrote.To)
	})
}

func TestParse(t *testing.T) {
	t.Run("RejectsDuplicateEntity", func(t *testing.T) {
		_, err := Parse([]byte(`
entities:
  - label: Hotel
  - label: Hotel
`))
		assert.ErrorContains(t, err, "duplicate entity label")
	})

	t.Run("RejectsDanglingRelationship", func(t *testing.T) {
		_, err := Parse([]byte(`
entities:
  - label: Hotel
relationships:
  - label: HAS_REVIEW
    from: Hotel
    to: Review
`))
		assert.ErrorContains(t, err, "unknown entity type")
	})
}

func TestNavigation(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	t.Run("OutgoingFromReview", func(t *testing.T) {
		labels := map[string]bool{}
		for _, relationship := range catalog.OutgoingRelationships("Review") {
			labels[relationship.Label] = true
		}
		assert.True(t, labels["HAS_ANALYSIS"])
		assert.True(t, labels["WRITTEN_IN"])
	})

	t.Run("BetweenHotelAndReview", func(t *testing.T) {
		relationships := catalog.RelationshipsBetween("Hotel", "Review")
		require.Len(t, relationships, 1)
		assert.Equal(t, "HAS_REVIEW", relationships[0].Label)
	})

	t.Run("IncomingToReview", func(t *testing.T) {
		labels := map[string]bool{}
		for _, relationship := range catalog.IncomingRelationships("Review") {
			labels[relationship.Label] = true
		}
		assert.True(t, labels["HAS_REVIEW"])
		assert.True(t, labels["WROTE"])
	})
}

func TestPromptDescription(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	description := catalog.PromptDescription()
	assert.Contains(t, description, "VERTICES (Nodes):")
	assert.Contains(t, description, "EDGES (Relationships):")
	assert.Contains(t, description, "- Hotel:")
	assert.Contains(t, description, "WRITTEN_IN: Review -> Language")
}
