package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/guestgraph/guestgraph/helper"
	"github.com/guestgraph/guestgraph/metrics"
	"github.com/guestgraph/guestgraph/model"
)

// Retriever embeds queries and searches the vector index. Results are
// score-filtered, metadata-filtered and capped, in that order.
type Retriever struct {
	index  *Index
	embed  EmbedFunc
	logger *slog.Logger
}

func NewRetriever(index *Index, embed EmbedFunc, logger *slog.Logger) (*Retriever, error) {
	if index == nil {
		return nil, helper.NewError("NewRetriever", fmt.Errorf("index must not be nil"))
	}
	if embed == nil {
		return nil, helper.NewError("NewRetriever", fmt.Errorf("embed function must not be nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{index: index, embed: embed, logger: logger}, nil
}

// Retrieve returns up to topK chunks similar to the query text, every
// score at least minScore, ordered by descending score. The index is
// asked for twice topK candidates so that score and metadata rejection
// rarely forces a short result.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, topK int, minScore float64, metadataFilters map[string]any) ([]model.SemanticResult, error) {
	if topK <= 0 {
		return nil, helper.NewError("Retrieve", fmt.Errorf("topK must be positive, got %d", topK))
	}
	if err := ctx.Err(); err != nil {
		return nil, helper.NewError("Retrieve", err)
	}

	success := false
	done := metrics.TimeIndexOp("search")
	defer func() { done(success) }()

	queryEmbedding, err := r.embed(queryText)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	candidates := r.index.Search(queryEmbedding, 2*topK)

	results := make([]model.SemanticResult, 0, topK)
	for _, candidate := range candidates {
		if candidate.Score < minScore {
			break
		}
		if !matchesFilters(candidate.Entry.Metadata, metadataFilters) {
			continue
		}
		results = append(results, model.SemanticResult{
			ID:       strconv.Itoa(candidate.Entry.ID),
			Content:  candidate.Entry.Content,
			Score:    candidate.Score,
			Metadata: candidate.Entry.Metadata,
		})
		if len(results) == topK {
			break
		}
	}

	r.logger.Debug("semantic retrieval done",
		slog.Int("candidates", len(candidates)),
		slog.Int("results", len(results)),
		slog.Float64("min_score", minScore))
	success = true
	return results, nil
}

// Add embeds the given texts in batches and appends them to the index.
// The index file pair is persisted after every batch, so a failure
// mid-call keeps all fully processed batches. Returns the number of
// inserted entries.
func (r *Retriever) Add(ctx context.Context, texts []string, metadataList []model.Metadata, batchSize int) (int, error) {
	if len(texts) == 0 {
		return 0, nil
	}
	if metadataList != nil && len(metadataList) != len(texts) {
		return 0, helper.NewError("Add", fmt.Errorf("got %d texts but %d metadata entries", len(texts), len(metadataList)))
	}
	if batchSize <= 0 {
		batchSize = 32
	}

	success := false
	done := metrics.TimeIndexOp("add")
	defer func() { done(success) }()

	inserted := 0
	for start := 0; start < len(texts); start += batchSize {
		if err := ctx.Err(); err != nil {
			return inserted, helper.NewError("Add", err)
		}

		end := min(start+batchSize, len(texts))
		batch := texts[start:end]

		embeddings := make([][]float32, len(batch))
		for i, text := range batch {
			embedding, err := r.embed(text)
			if err != nil {
				return inserted, helper.NewError("embed batch", err)
			}
			embeddings[i] = embedding
		}

		var batchMetadata []model.Metadata
		if metadataList != nil {
			batchMetadata = metadataList[start:end]
		}

		count, err := r.index.Add(batch, batchMetadata, embeddings)
		if err != nil {
			return inserted, err
		}
		inserted += count
	}

	r.logger.Info("indexed documents", slog.Int("inserted", inserted))
	success = true
	return inserted, nil
}

// Stats describes the current index state.
func (r *Retriever) Stats() model.Metadata {
	return model.Metadata{
		"entries":   r.index.Count(),
		"dimension": r.index.Dimension(),
	}
}

// Clear drops every indexed entry.
func (r *Retriever) Clear() error {
	return r.index.Clear()
}

// matchesFilters applies a conjunctive metadata filter. A filter value
// may be a plain value (exact match), a list (membership) or a map of
// comparison operators ($eq, $ne, $gt, $gte, $lt, $lte) for numeric
// ranges. Entries missing a filtered field are rejected.
func matchesFilters(metadata model.Metadata, filters map[string]any) bool {
	for field, condition := range filters {
		value, ok := metadata[field]
		if !ok {
			return false
		}
		if !matchesCondition(value, condition) {
			return false
		}
	}
	return true
}

func matchesCondition(value any, condition any) bool {
	switch cond := condition.(type) {
	case map[string]any:
		for operator, operand := range cond {
			if !matchesOperator(value, operator, operand) {
				return false
			}
		}
		return true
	case []any:
		for _, candidate := range cond {
			if equalValues(value, candidate) {
				return true
			}
		}
		return false
	case []string:
		for _, candidate := range cond {
			if equalValues(value, candidate) {
				return true
			}
		}
		return false
	default:
		return equalValues(value, condition)
	}
}

func matchesOperator(value any, operator string, operand any) bool {
	if operator == "$eq" {
		return equalValues(value, operand)
	}
	if operator == "$ne" {
		return !equalValues(value, operand)
	}

	left, leftOK := toFloat(value)
	right, rightOK := toFloat(operand)
	if !leftOK || !rightOK {
		return false
	}

	switch operator {
	case "$gt":
		return left > right
	case "$gte":
		return left >= right
	case "$lt":
		return left < right
	case "$lte":
		return left <= right
	default:
		return false
	}
}

func equalValues(a any, b any) bool {
	if a == b {
		return true
	}
	left, leftOK := toFloat(a)
	right, rightOK := toFloat(b)
	return leftOK && rightOK && left == right
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
