package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReviewMetadata() Metadata {
	return Metadata{
		"hotel":       "Grand Marina",
		"language":    "tr",
		"source":      "booking.com",
		"rating":      8.8,
		"verified":    true,
		"chunk_index": 0,
	}
}

func TestMetadataMarshal(t *testing.T) {
	t.Run("ReviewAttributesRoundTrip", func(t *testing.T) {
		original := sampleReviewMetadata()

		data, err := original.Marshal()
		require.NoError(t, err)

		var restored Metadata
		require.NoError(t, restored.Unmarshal(data))
		assert.Equal(t, "Grand Marina", restored["hotel"])
		assert.Equal(t, "tr", restored["language"])
		assert.Equal(t, 8.8, restored["rating"])
		assert.Equal(t, true, restored["verified"])
		// JSON numbers come back as float64
		assert.Equal(t, float64(0), restored["chunk_index"])
	})

	t.Run("NestedAspectScores", func(t *testing.T) {
		m := Metadata{
			"aspects": map[string]interface{}{
				"cleanliness": 0.9,
				"service":     -0.2,
			},
			"rooms": []string{"deluxe", "suite"},
		}

		data, err := m.Marshal()
		require.NoError(t, err)

		var restored Metadata
		require.NoError(t, restored.Unmarshal(data))
		aspects, ok := restored["aspects"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, 0.9, aspects["cleanliness"])
	})

	t.Run("NilMetadataMarshalsToNull", func(t *testing.T) {
		var m Metadata
		data, err := m.Marshal()
		require.NoError(t, err)
		assert.Equal(t, []byte("null"), data)
	})
}

func TestMetadataUnmarshal(t *testing.T) {
	t.Run("FromJSONBytes", func(t *testing.T) {
		var m Metadata
		err := m.Unmarshal([]byte(`{"hotel":"Bayview Resort","rating":8.0}`))
		require.NoError(t, err)
		assert.Equal(t, "Bayview Resort", m["hotel"])
		assert.Equal(t, 8.0, m["rating"])
	})

	t.Run("FromJSONBString", func(t *testing.T) {
		var m Metadata
		err := m.Unmarshal(`{"language":"en"}`)
		require.NoError(t, err)
		assert.Equal(t, "en", m["language"])
	})

	t.Run("NilYieldsEmptyMap", func(t *testing.T) {
		var m Metadata
		require.NoError(t, m.Unmarshal(nil))
		assert.NotNil(t, m)
		assert.Len(t, m, 0)
	})

	t.Run("FromMetadataDirectly", func(t *testing.T) {
		var m Metadata
		require.NoError(t, m.Unmarshal(sampleReviewMetadata()))
		assert.Equal(t, "booking.com", m["source"])
	})

	t.Run("RejectsInvalidJSON", func(t *testing.T) {
		var m Metadata
		assert.Error(t, m.Unmarshal([]byte(`{not json}`)))
	})

	t.Run("RejectsUnsupportedType", func(t *testing.T) {
		var m Metadata
		err := m.Unmarshal(12345)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported source type")
	})
}

func TestMetadataValueScan(t *testing.T) {
	t.Run("ColumnRoundTrip", func(t *testing.T) {
		original := sampleReviewMetadata()

		value, err := original.Value()
		require.NoError(t, err)
		data, ok := value.([]byte)
		require.True(t, ok)
		assert.True(t, json.Valid(data))

		var restored Metadata
		require.NoError(t, restored.Scan(data))
		assert.Equal(t, "Grand Marina", restored["hotel"])
		assert.Equal(t, "booking.com", restored["source"])
	})

	t.Run("ScanNilColumn", func(t *testing.T) {
		var m Metadata
		require.NoError(t, m.Scan(nil))
		assert.NotNil(t, m)
	})

	t.Run("EmptyMetadataValue", func(t *testing.T) {
		value, err := Metadata{}.Value()
		require.NoError(t, err)
		assert.Equal(t, []byte("{}"), value)
	})
}

func TestMetadataClone(t *testing.T) {
	t.Run("CopyIsIndependent", func(t *testing.T) {
		original := sampleReviewMetadata()
		clone := original.Clone()

		clone["chunk_index"] = 3
		clone["extra"] = "added"

		assert.Equal(t, 0, original["chunk_index"])
		assert.NotContains(t, original, "extra")
		assert.Equal(t, "Grand Marina", clone["hotel"])
	})

	t.Run("NilCloneIsUsable", func(t *testing.T) {
		var m Metadata
		clone := m.Clone()
		assert.NotNil(t, clone)
		clone["language"] = "de"
		assert.Equal(t, "de", clone["language"])
	})
}
