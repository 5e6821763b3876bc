package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guestgraph/guestgraph/model"
)

// ErrQueryRejected marks a query the graph store refused to run,
// usually a syntax or binding error. Rejected queries are never
// retried.
var ErrQueryRejected = errors.New("graph query rejected")

// Executor runs Gremlin traversals against a graph store. The store
// itself lives elsewhere; implementations only carry the transport.
type Executor interface {
	Execute(ctx context.Context, query string) ([]map[string]any, error)
}

// MaterializeResult converts raw row maps into a GraphResult. Rows in
// vertex shape (id, label, properties or a flat valueMap) become
// nodes; rows carrying source and target become edges; anything else
// is kept as a property-only node so no row is silently dropped.
func MaterializeResult(rows []map[string]any, elapsed time.Duration) *model.GraphResult {
	result := model.EmptyGraphResult()
	result.ExecutionTime = elapsed
	result.TotalCount = len(rows)

	for _, row := range rows {
		if isEdgeRow(row) {
			result.Edges = append(result.Edges, model.GraphEdge{
				ID:         stringValue(row["id"]),
				Label:      stringValue(row["label"]),
				SourceID:   stringValue(firstOf(row, "outV", "source", "source_id")),
				TargetID:   stringValue(firstOf(row, "inV", "target", "target_id")),
				Properties: propertyMap(row),
			})
			continue
		}
		result.Nodes = append(result.Nodes, model.GraphNode{
			ID:         stringValue(row["id"]),
			Label:      stringValue(row["label"]),
			Properties: propertyMap(row),
		})
	}

	return result
}

func isEdgeRow(row map[string]any) bool {
	if _, ok := row["outV"]; ok {
		return true
	}
	if _, ok := row["source"]; ok {
		_, hasTarget := row["target"]
		return hasTarget
	}
	return false
}

func firstOf(row map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := row[key]; ok {
			return value
		}
	}
	return nil
}

// propertyMap copies a row into properties, dropping the identity
// fields and unwrapping the single-element lists valueMap returns.
func propertyMap(row map[string]any) model.Metadata {
	properties := model.Metadata{}
	for key, value := range row {
		switch key {
		case "id", "label", "outV", "inV", "source", "target", "source_id", "target_id":
			continue
		}
		if list, ok := value.([]any); ok && len(list) == 1 {
			value = list[0]
		}
		properties[key] = value
	}
	return properties
}

func stringValue(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
