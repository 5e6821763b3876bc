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
	"github.com/guestgraph/guestgraph/metrics"
	"github.com/guestgraph/guestgraph/model"
)

var sampleReviews = []string{
	"The room was spotless and the bed extremely comfortable. Breakfast had a great selection. The staff at reception went out of their way to help us with restaurant recommendations.",
	"Otel çok temizdi ve personel çok yardımseverdi. Kahvaltı harikaydı. Denize yakın olması büyük avantaj.",
	"Terrible experience. The air conditioning was broken for our entire stay and nobody came to fix it despite three phone calls to the front desk.",
	"Great location right next to the old town. The rooftop pool has an amazing view over the bay. A bit noisy at night because of the street below.",
}

var sampleMetadata = []model.Metadata{
	{"hotel": "Grand Marina", "language": "en", "source": "booking.com", "rating": 9.2},
	{"hotel": "Grand Marina", "language": "tr", "source": "tripadvisor", "rating": 8.8},
	{"hotel": "City Lodge", "language": "en", "source": "booking.com", "rating": 3.1},
	{"hotel": "Bayview Resort", "language": "en", "source": "google", "rating": 8.0},
}

func main() {
	// Optional .env with OPENAI_API_KEY / LLM_BASE_URL / LLM_MODEL
	_ = godotenv.Load()

	// Expose Prometheus metrics when an address is configured
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		if err := metrics.EnablePrometheus(addr); err != nil {
			log.Fatalf("Failed to enable metrics: %v", err)
		}
	}

	model_ := os.Getenv("LLM_MODEL")
	if model_ == "" {
		model_ = "gpt-4o-mini"
	}

	tmpDir, err := os.MkdirTemp("", "guestgraph-example")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	g, err := guestgraph.New(guestgraph.Config{
		LLM: llm.Config{
			BaseURL: os.Getenv("LLM_BASE_URL"),
			Model:   model_,
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Timeout: 30 * time.Second,
		},
		// GremlinEndpoint left empty: answers come from semantic search only.
		IndexVectorPath:   filepath.Join(tmpDir, "reviews.index"),
		IndexMetadataPath: filepath.Join(tmpDir, "reviews.meta"),
	})
	if err != nil {
		log.Fatalf("Failed to create guestgraph: %v", err)
	}

	ctx := context.Background()

	fmt.Println("Indexing sample reviews...")
	indexed, err := g.IndexReviews(ctx, sampleReviews, sampleMetadata)
	if err != nil {
		log.Fatalf("Failed to index reviews: %v", err)
	}
	fmt.Printf("Indexed %d review chunks\n", indexed)

	question := "What do guests say about the staff?"
	fmt.Printf("\nAsking: %s\n", question)

	result, err := g.Ask(ctx, question)
	if err != nil {
		log.Fatalf("Failed to answer: %v", err)
	}

	fmt.Printf("\nAnswer: %s\n", result.Answer)
	fmt.Printf("Semantic results used: %d\n", result.SemanticResultsCount)
	fmt.Printf("Total time: %s\n", result.TotalTime)

	fmt.Println("\nPipeline stats:")
	for key, value := range g.Stats() {
		fmt.Printf("  %s: %v\n", key, value)
	}
}
