package model

import "time"

// GraphNode represents a vertex returned from the graph store
type GraphNode struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Properties Metadata `json:"properties"`
}

// GraphEdge represents an edge returned from the graph store
type GraphEdge struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	SourceID   string   `json:"source_id"`
	TargetID   string   `json:"target_id"`
	Properties Metadata `json:"properties"`
}

// GraphResult holds the outcome of one executed graph query.
// It is immutable once returned by the executor.
type GraphResult struct {
	Nodes         []GraphNode   `json:"nodes"`
	Edges         []GraphEdge   `json:"edges"`
	TotalCount    int           `json:"total_count"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// EmptyGraphResult returns a zero-result GraphResult, used when graph
// search is unavailable or the query was rejected.
func EmptyGraphResult() *GraphResult {
	return &GraphResult{Nodes: []GraphNode{}, Edges: []GraphEdge{}}
}

// SemanticResult is one scored chunk from the vector index.
// Score is always clamped into [0,1], 1.0 meaning identical.
type SemanticResult struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// RetrievalContext merges graph and semantic results into one bounded
// textual context. Built fresh per request, never persisted.
type RetrievalContext struct {
	Graph     *GraphResult     `json:"graph"`
	Semantic  []SemanticResult `json:"semantic"`
	Text      string           `json:"text"`
	Truncated bool             `json:"truncated"`
}

// Empty reports whether the context carries no usable information
func (c *RetrievalContext) Empty() bool {
	return c == nil || c.Text == ""
}

// AskResult is the final answer of one pipeline run with per-stage timings
type AskResult struct {
	RequestID            string                   `json:"request_id"`
	Question             string                   `json:"question"`
	Answer               string                   `json:"answer"`
	GremlinQuery         string                   `json:"gremlin_query,omitempty"`
	GraphResultsCount    int                      `json:"graph_results_count"`
	SemanticResultsCount int                      `json:"semantic_results_count"`
	StageTimings         map[string]time.Duration `json:"stage_timings"`
	TotalTime            time.Duration            `json:"total_time"`
}
