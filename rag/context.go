package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/guestgraph/guestgraph/model"
)

// truncationMarker terminates a context that got cut to budget.
const truncationMarker = "..."

// chunkPreviewLength caps how much of a single chunk makes it into
// the context.
const chunkPreviewLength = 200

// Assembler merges graph and semantic results into one bounded text
// context for synthesis.
type Assembler struct {
	maxGraphResults    int
	maxSemanticResults int
	contextBudget      int
}

func NewAssembler(cfg model.PipelineConfig) *Assembler {
	return &Assembler{
		maxGraphResults:    cfg.MaxGraphResults,
		maxSemanticResults: cfg.MaxSemanticResults,
		contextBudget:      cfg.ContextBudget,
	}
}

// Assemble renders the first N graph nodes as type plus key properties
// and the first M semantic chunks as truncated content. The combined
// text is hard-truncated at the budget with a trailing marker.
func (a *Assembler) Assemble(graphResult *model.GraphResult, semanticResults []model.SemanticResult) *model.RetrievalContext {
	if graphResult == nil {
		graphResult = model.EmptyGraphResult()
	}

	var parts []string

	if len(graphResult.Nodes) > 0 {
		parts = append(parts, "Graph Database Information:")
		for i, node := range graphResult.Nodes {
			if i == a.maxGraphResults {
				break
			}
			parts = append(parts, renderNode(node))
		}
	}

	if len(semanticResults) > 0 {
		parts = append(parts, "\nRelevant Documents:")
		for i, result := range semanticResults {
			if i == a.maxSemanticResults {
				break
			}
			parts = append(parts, "- "+truncateContent(result.Content, chunkPreviewLength))
		}
	}

	text := strings.Join(parts, "\n")
	truncated := false
	if a.contextBudget > 0 && len(text) > a.contextBudget {
		text = cutAtRuneBoundary(text, a.contextBudget) + truncationMarker
		truncated = true
	}

	return &model.RetrievalContext{
		Graph:     graphResult,
		Semantic:  semanticResults,
		Text:      text,
		Truncated: truncated,
	}
}

// renderNode writes one node as "- Label: name" with the description
// appended when present. Nodes without a name fall back to their id.
func renderNode(node model.GraphNode) string {
	name := node.ID
	if value, ok := node.Properties["name"]; ok {
		name = fmt.Sprintf("%v", value)
	}

	rendered := fmt.Sprintf("- %s: %s", node.Label, name)
	if description, ok := node.Properties["description"]; ok {
		rendered += fmt.Sprintf(" - %v", description)
	}
	return rendered
}

func truncateContent(content string, max int) string {
	if len(content) <= max {
		return content
	}
	return cutAtRuneBoundary(content, max) + truncationMarker
}

// cutAtRuneBoundary cuts s to at most max bytes without splitting a
// multi-byte rune. Turkish review text would otherwise end the context
// with invalid UTF-8.
func cutAtRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
