package semantic

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/guestgraph/guestgraph/helper"
	"github.com/guestgraph/guestgraph/model"
)

// Index is a flat in-process vector index over review chunks. It is
// persisted as two paired files, one holding the raw vectors and one
// holding contents and metadata. The pair is written vectors first;
// a crash between the two writes leaves the files out of sync, which
// Load detects and reports so the caller can rebuild from source.
//
// A single RWMutex guards all access. Searches run concurrently,
// writes are exclusive.
type Index struct {
	mu      sync.RWMutex
	entries []model.VectorIndexEntry
	nextID  int
	dim     int

	vectorPath   string
	metadataPath string
	logger       *slog.Logger
}

// vectorFile is the on-disk shape of the vector half of the pair.
type vectorFile struct {
	Dim     int
	IDs     []int
	Vectors [][]float32
}

// metadataFile is the on-disk shape of the content half of the pair.
type metadataFile struct {
	NextID  int
	IDs     []int
	Content []string
	Meta    []model.Metadata
	AddedAt []time.Time
}

// NewIndex creates an empty index persisted at the given file pair.
// Call Load to pick up a previously persisted state.
func NewIndex(vectorPath string, metadataPath string, logger *slog.Logger) (*Index, error) {
	if vectorPath == "" || metadataPath == "" {
		return nil, helper.NewError("NewIndex", fmt.Errorf("vector and metadata paths must not be empty"))
	}
	if vectorPath == metadataPath {
		return nil, helper.NewError("NewIndex", fmt.Errorf("vector and metadata paths must differ"))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		vectorPath:   vectorPath,
		metadataPath: metadataPath,
		logger:       logger,
	}, nil
}

// Load restores the index from its file pair. A completely missing
// pair yields an empty index. A half-missing or mismatched pair is an
// error; the caller decides between restoring a backup and rebuilding.
func (x *Index) Load() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	_, vectorErr := os.Stat(x.vectorPath)
	_, metadataErr := os.Stat(x.metadataPath)
	if os.IsNotExist(vectorErr) && os.IsNotExist(metadataErr) {
		x.entries = nil
		x.nextID = 0
		return nil
	}
	if os.IsNotExist(vectorErr) != os.IsNotExist(metadataErr) {
		return helper.NewError("Load", fmt.Errorf("index file pair out of sync: one of %s, %s is missing", x.vectorPath, x.metadataPath))
	}

	var vectors vectorFile
	if err := decodeFile(x.vectorPath, &vectors); err != nil {
		return helper.NewError("Load", err)
	}
	var metadata metadataFile
	if err := decodeFile(x.metadataPath, &metadata); err != nil {
		return helper.NewError("Load", err)
	}

	if len(vectors.IDs) != len(metadata.IDs) {
		return helper.NewError("Load", fmt.Errorf("index file pair out of sync: %d vectors, %d metadata entries", len(vectors.IDs), len(metadata.IDs)))
	}
	for i := range vectors.IDs {
		if vectors.IDs[i] != metadata.IDs[i] {
			return helper.NewError("Load", fmt.Errorf("index file pair out of sync at position %d", i))
		}
	}

	entries := make([]model.VectorIndexEntry, len(vectors.IDs))
	for i := range vectors.IDs {
		entries[i] = model.VectorIndexEntry{
			ID:        vectors.IDs[i],
			Embedding: vectors.Vectors[i],
			Content:   metadata.Content[i],
			Metadata:  metadata.Meta[i],
			AddedAt:   metadata.AddedAt[i],
		}
	}

	x.entries = entries
	x.nextID = metadata.NextID
	x.dim = vectors.Dim
	x.logger.Info("vector index loaded", slog.Int("entries", len(entries)), slog.Int("dimension", vectors.Dim))
	return nil
}

// Add appends entries, assigning sequential IDs and insertion
// timestamps, then persists the file pair.
func (x *Index) Add(contents []string, metadata []model.Metadata, embeddings [][]float32) (int, error) {
	if len(contents) != len(embeddings) {
		return 0, helper.NewError("Add", fmt.Errorf("got %d contents but %d embeddings", len(contents), len(embeddings)))
	}
	if metadata != nil && len(metadata) != len(contents) {
		return 0, helper.NewError("Add", fmt.Errorf("got %d contents but %d metadata entries", len(contents), len(metadata)))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	now := time.Now()
	for i := range contents {
		if x.dim == 0 {
			x.dim = len(embeddings[i])
		}
		if len(embeddings[i]) != x.dim {
			return 0, helper.NewError("Add", fmt.Errorf("embedding dimension %d does not match index dimension %d", len(embeddings[i]), x.dim))
		}

		entry := model.VectorIndexEntry{
			ID:        x.nextID,
			Embedding: embeddings[i],
			Content:   contents[i],
			AddedAt:   now,
		}
		if metadata != nil {
			entry.Metadata = metadata[i]
		}
		x.entries = append(x.entries, entry)
		x.nextID++
	}

	if err := x.persistLocked(); err != nil {
		return 0, err
	}
	return len(contents), nil
}

// Scored pairs an entry with its similarity score.
type Scored struct {
	Entry model.VectorIndexEntry
	Score float64
}

// Search returns up to k entries ranked by cosine similarity to the
// query vector, scores clamped into [0,1].
func (x *Index) Search(query []float32, k int) []Scored {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if k <= 0 || len(x.entries) == 0 {
		return nil
	}

	scored := make([]Scored, 0, len(x.entries))
	for _, entry := range x.entries {
		scored = append(scored, Scored{
			Entry: entry,
			Score: CosineScore(query, entry.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Entry.ID < scored[j].Entry.ID
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// Count returns the number of stored entries.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Dimension returns the embedding dimension, 0 while empty.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dim
}

// Clear drops all entries and persists the now empty pair.
func (x *Index) Clear() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.entries = nil
	x.nextID = 0
	x.dim = 0
	return x.persistLocked()
}

// persistLocked writes the file pair, vectors first. Each file is
// written to a temporary sibling and renamed into place. The pair as a
// whole is not transactional.
func (x *Index) persistLocked() error {
	vectors := vectorFile{Dim: x.dim}
	metadata := metadataFile{NextID: x.nextID}
	for _, entry := range x.entries {
		vectors.IDs = append(vectors.IDs, entry.ID)
		vectors.Vectors = append(vectors.Vectors, entry.Embedding)
		metadata.IDs = append(metadata.IDs, entry.ID)
		metadata.Content = append(metadata.Content, entry.Content)
		metadata.Meta = append(metadata.Meta, entry.Metadata)
		metadata.AddedAt = append(metadata.AddedAt, entry.AddedAt)
	}

	if err := encodeFile(x.vectorPath, &vectors); err != nil {
		return helper.NewError("persist vectors", err)
	}
	if err := encodeFile(x.metadataPath, &metadata); err != nil {
		return helper.NewError("persist metadata", err)
	}
	return nil
}

func encodeFile(path string, value any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func decodeFile(path string, value any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return gob.NewDecoder(file).Decode(value)
}

// CosineScore converts cosine similarity into a [0,1] relevance score
// by clamping. Orthogonal and opposing vectors both score 0.
func CosineScore(a []float32, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0, math.Min(1, similarity))
}

// DistanceScore converts a non-negative distance into a [0,1]
// relevance score via 1/(1+distance). Distance 0 scores 1.
func DistanceScore(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return 1 / (1 + distance)
}
