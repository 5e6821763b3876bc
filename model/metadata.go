package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/guestgraph/guestgraph/helper"
)

// Metadata carries the review attributes attached to indexed chunks
// (hotel, language, source, rating, ...). It maps to a JSONB column
// when chunks live in PostgreSQL.
type Metadata map[string]interface{}

// Value implements driver.Valuer so Metadata can be written to a
// JSONB column
func (m Metadata) Value() (driver.Value, error) {
	return m.Marshal()
}

// Scan implements sql.Scanner for reading a JSONB column back
func (m *Metadata) Scan(value interface{}) error {
	return m.Unmarshal(value)
}

// Marshal renders the metadata as JSON
func (m Metadata) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal fills the metadata from JSON bytes, a JSONB string, or
// another Metadata value. A nil input yields an empty, non-nil map so
// callers can always index into the result.
func (m *Metadata) Unmarshal(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case Metadata:
		*m = v
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return helper.NewError("decode metadata", errors.New("unsupported source type"))
	}
}

// Clone returns an independent shallow copy, so per-chunk additions
// never leak into the caller's map
func (m Metadata) Clone() Metadata {
	clone := make(Metadata, len(m)+1)
	for k, v := range m {
		clone[k] = v
	}
	return clone
}
