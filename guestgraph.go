package guestgraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/guestgraph/guestgraph/graph"
	"github.com/guestgraph/guestgraph/helper"
	"github.com/guestgraph/guestgraph/language"
	"github.com/guestgraph/guestgraph/llm"
	"github.com/guestgraph/guestgraph/model"
	"github.com/guestgraph/guestgraph/rag"
	"github.com/guestgraph/guestgraph/schema"
	"github.com/guestgraph/guestgraph/semantic"
	"github.com/guestgraph/guestgraph/translate"
)

const (
	reviewChunkSentences = 5
	indexBatchSize       = 32
)

// Config wires a GuestGraph instance. LLM is required; the Gremlin
// endpoint is optional and leaving it empty disables graph search.
// Embed defaults to the local sentence transformer embedder.
type Config struct {
	LLM             llm.Config
	GremlinEndpoint string
	Gremlin         graph.GremlinConfig

	IndexVectorPath   string
	IndexMetadataPath string
	Embed             semantic.EmbedFunc

	Pipeline model.PipelineConfig
	LogLevel slog.Level
}

// GuestGraph answers natural language questions over a hotel review
// knowledge graph by combining graph traversal with vector similarity
// search and synthesizing the final answer.
type GuestGraph struct {
	Catalog      *schema.Catalog
	Detector     *language.Detector
	Translator   *translate.Translator
	Index        *semantic.Index
	Retriever    *semantic.Retriever
	Orchestrator *rag.Orchestrator

	log *slog.Logger
}

// New creates a fully wired GuestGraph instance.
func New(config Config) (*GuestGraph, error) {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: config.LogLevel,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	catalog, err := schema.Load()
	if err != nil {
		return nil, helper.NewError("load schema catalog", err)
	}

	detector := language.NewDetector()

	generator, err := llm.NewClient(config.LLM, logger)
	if err != nil {
		return nil, helper.NewError("create llm client", err)
	}

	pipelineConfig := config.Pipeline
	if pipelineConfig == (model.PipelineConfig{}) {
		pipelineConfig = model.DefaultPipelineConfig()
	}

	translator, err := translate.NewTranslator(catalog, detector, generator, pipelineConfig.DefaultResultLimit, logger)
	if err != nil {
		return nil, helper.NewError("create translator", err)
	}

	vectorPath := config.IndexVectorPath
	metadataPath := config.IndexMetadataPath
	if vectorPath == "" {
		vectorPath = "guestgraph.index"
	}
	if metadataPath == "" {
		metadataPath = "guestgraph.meta"
	}
	index, err := semantic.NewIndex(vectorPath, metadataPath, logger)
	if err != nil {
		return nil, helper.NewError("create vector index", err)
	}
	if err := index.Load(); err != nil {
		return nil, helper.NewError("load vector index", err)
	}

	embed := config.Embed
	if embed == nil {
		embed, err = semantic.DefaultEmbedder()
		if err != nil {
			return nil, helper.NewError("create default embedder", err)
		}
	}

	retriever, err := semantic.NewRetriever(index, embed, logger)
	if err != nil {
		return nil, helper.NewError("create retriever", err)
	}

	var executor graph.Executor
	if config.GremlinEndpoint != "" {
		gremlinConfig := config.Gremlin
		gremlinConfig.Endpoint = config.GremlinEndpoint
		client, err := graph.NewGremlinClient(gremlinConfig, logger)
		if err != nil {
			return nil, helper.NewError("create gremlin client", err)
		}
		executor = client
	}

	orchestrator, err := rag.NewOrchestrator(translator, executor, retriever, generator, pipelineConfig, logger)
	if err != nil {
		return nil, helper.NewError("create orchestrator", err)
	}

	return &GuestGraph{
		Catalog:      catalog,
		Detector:     detector,
		Translator:   translator,
		Index:        index,
		Retriever:    retriever,
		Orchestrator: orchestrator,
		log:          logger,
	}, nil
}

// Ask answers a natural language question about hotels and reviews.
func (g *GuestGraph) Ask(ctx context.Context, question string) (*model.AskResult, error) {
	return g.Orchestrator.Ask(ctx, question, nil)
}

// AskWithFilters answers a question with structured constraints
// applied to both graph and semantic search.
func (g *GuestGraph) AskWithFilters(ctx context.Context, question string, filters translate.Filters) (*model.AskResult, error) {
	return g.Orchestrator.Ask(ctx, question, &filters)
}

// IndexReviews embeds review texts and adds them to the vector index.
// Long reviews are split into sentence chunks first, each carrying the
// review's metadata plus a chunk_index. Returns the number of indexed
// chunks.
func (g *GuestGraph) IndexReviews(ctx context.Context, texts []string, metadata []model.Metadata) (int, error) {
	if len(metadata) != 0 && len(metadata) != len(texts) {
		return 0, helper.NewError("index reviews", fmt.Errorf("got %d metadata entries for %d texts", len(metadata), len(texts)))
	}

	var chunks []string
	var chunkMeta []model.Metadata
	for i, text := range texts {
		for idx, chunk := range semantic.ChunkReview(text, reviewChunkSentences) {
			meta := model.Metadata{}
			if len(metadata) != 0 {
				meta = metadata[i].Clone()
			}
			meta["chunk_index"] = idx
			chunks = append(chunks, chunk)
			chunkMeta = append(chunkMeta, meta)
		}
	}

	return g.Retriever.Add(ctx, chunks, chunkMeta, indexBatchSize)
}

// TranslateQuery exposes the natural language to Gremlin translation
// on its own, without running the full pipeline.
func (g *GuestGraph) TranslateQuery(ctx context.Context, question string) (*model.GeneratedQuery, error) {
	return g.Translator.Translate(ctx, question, nil)
}

// ExplainQuery returns a human readable description of a traversal.
func (g *GuestGraph) ExplainQuery(ctx context.Context, queryText string) (string, error) {
	return g.Translator.Explain(ctx, queryText)
}

// SuggestQueries proposes related questions for a given question.
func (g *GuestGraph) SuggestQueries(ctx context.Context, question string) ([]string, error) {
	return g.Translator.SuggestQueries(ctx, question)
}

// Stats reports pipeline and index state for operators.
func (g *GuestGraph) Stats() model.Metadata {
	return g.Orchestrator.Stats()
}
