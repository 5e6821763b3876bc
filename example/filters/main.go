package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/guestgraph/guestgraph"
	"github.com/guestgraph/guestgraph/llm"
	"github.com/guestgraph/guestgraph/translate"
)

// Demonstrates translation, structured filters and query suggestions.
// Point GREMLIN_ENDPOINT at a running Gremlin server to get graph
// results; without it the pipeline degrades to semantic search.
func main() {
	_ = godotenv.Load()

	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	tmpDir, err := os.MkdirTemp("", "guestgraph-filters")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	g, err := guestgraph.New(guestgraph.Config{
		LLM: llm.Config{
			BaseURL: os.Getenv("LLM_BASE_URL"),
			Model:   model,
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Timeout: 30 * time.Second,
		},
		GremlinEndpoint:   os.Getenv("GREMLIN_ENDPOINT"),
		IndexVectorPath:   filepath.Join(tmpDir, "reviews.index"),
		IndexMetadataPath: filepath.Join(tmpDir, "reviews.meta"),
	})
	if err != nil {
		log.Fatalf("Failed to create guestgraph: %v", err)
	}

	ctx := context.Background()

	// Translate a Turkish question into Gremlin without running it
	question := "İstanbul'daki otellerin temizlik yorumlarını göster"
	fmt.Printf("Translating: %s\n", question)

	generated, err := g.TranslateQuery(ctx, question)
	if err != nil {
		log.Fatalf("Failed to translate: %v", err)
	}
	fmt.Printf("Gremlin:    %s\n", generated.Query)
	fmt.Printf("Language:   %s\n", generated.SourceLanguage)
	fmt.Printf("Confidence: %.2f\n", generated.Confidence)

	// Explain the generated traversal in plain language
	explanation, err := g.ExplainQuery(ctx, generated.Query)
	if err != nil {
		log.Printf("Explain failed: %v", err)
	} else {
		fmt.Printf("\nExplanation: %s\n", explanation)
	}

	// Ask with structured constraints on top of the question
	minRating := 8.0
	filters := translate.Filters{
		Language:  "tr",
		Aspect:    "cleanliness",
		MinRating: &minRating,
	}
	fmt.Println("\nAsking with filters (language=tr, aspect=cleanliness, rating>=8)...")

	result, err := g.AskWithFilters(ctx, "How clean are the hotels?", filters)
	if err != nil {
		log.Fatalf("Failed to answer: %v", err)
	}
	fmt.Printf("Answer: %s\n", result.Answer)
	if result.GremlinQuery != "" {
		fmt.Printf("Executed query: %s\n", result.GremlinQuery)
	}

	// Suggest related questions the graph can answer
	suggestions, err := g.SuggestQueries(ctx, question)
	if err != nil {
		log.Printf("Suggest failed: %v", err)
	} else {
		fmt.Println("\nRelated questions:")
		for _, s := range suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
}
