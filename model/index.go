package model

import "time"

// VectorIndexEntry is one stored document in the vector index.
// Entries are append-only; IDs are assigned sequentially on insert.
type VectorIndexEntry struct {
	ID        int       `json:"id"`
	Embedding []float32 `json:"embedding,omitempty"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}
