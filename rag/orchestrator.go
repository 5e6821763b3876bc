package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guestgraph/guestgraph/graph"
	"github.com/guestgraph/guestgraph/helper"
	"github.com/guestgraph/guestgraph/llm"
	"github.com/guestgraph/guestgraph/metrics"
	"github.com/guestgraph/guestgraph/model"
	"github.com/guestgraph/guestgraph/semantic"
	"github.com/guestgraph/guestgraph/translate"
)

// ErrNotReady reports a pipeline whose required collaborators were
// never initialized. It is the only error Ask surfaces directly;
// every per-stage failure degrades instead.
var ErrNotReady = errors.New("pipeline not ready")

// Stage names used in timings, metrics and diagnostics.
const (
	StageTranslate = "translate"
	StageGraph     = "graph_search"
	StageSemantic  = "semantic_search"
	StageAssemble  = "assemble"
	StageSynth     = "synthesize"
)

const noInformationAnswer = "I couldn't find relevant information to answer your question. Please try rephrasing your query or check if the system is properly configured."

const synthesisFailedAnswer = "I encountered an error while generating a response. Please try again."

// Orchestrator drives one question through translation, graph search,
// semantic search, context assembly and answer synthesis. Any single
// stage may fail while the others succeed; the orchestrator always
// produces an answer, degraded if necessary, and only ErrNotReady is
// ever returned as an error.
type Orchestrator struct {
	translator *translate.Translator
	executor   graph.Executor
	retriever  *semantic.Retriever
	assembler  *Assembler
	generator  llm.Generator
	config     model.PipelineConfig
	logger     *slog.Logger
}

// NewOrchestrator wires the pipeline. The graph executor may be nil,
// in which case graph search is skipped and every answer derives from
// semantic retrieval alone.
func NewOrchestrator(
	translator *translate.Translator,
	executor graph.Executor,
	retriever *semantic.Retriever,
	generator llm.Generator,
	config model.PipelineConfig,
	logger *slog.Logger,
) (*Orchestrator, error) {
	if translator == nil {
		return nil, helper.NewError("NewOrchestrator", fmt.Errorf("%w: translator is nil", ErrNotReady))
	}
	if retriever == nil {
		return nil, helper.NewError("NewOrchestrator", fmt.Errorf("%w: retriever is nil", ErrNotReady))
	}
	if generator == nil {
		return nil, helper.NewError("NewOrchestrator", fmt.Errorf("%w: generator is nil", ErrNotReady))
	}
	if err := config.Validate(); err != nil {
		return nil, helper.NewError("NewOrchestrator", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		translator: translator,
		executor:   executor,
		retriever:  retriever,
		assembler:  NewAssembler(config),
		generator:  generator,
		config:     config,
		logger:     logger,
	}, nil
}

// askState collects everything the stages produce for one request.
// mu guards the shared maps; the search stages run concurrently.
type askState struct {
	generated       *model.GeneratedQuery
	graphResult     *model.GraphResult
	semanticResults []model.SemanticResult
	retrievalCtx    *model.RetrievalContext

	mu          sync.Mutex
	timings     map[string]time.Duration
	stageErrors map[string]string
}

func (s *askState) recordTiming(stage string, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timings[stage] = elapsed
}

func (s *askState) recordError(stage string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stageErrors[stage] = message
}

// Ask answers one natural language question. Filters are optional
// structured constraints applied to both searches.
func (o *Orchestrator) Ask(ctx context.Context, question string, filters *translate.Filters) (*model.AskResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, helper.NewError("Ask", fmt.Errorf("question must not be empty"))
	}

	start := time.Now()
	state := &askState{
		graphResult: model.EmptyGraphResult(),
		timings:     map[string]time.Duration{},
		stageErrors: map[string]string{},
	}

	o.logger.Info("processing question", slog.String("question", question))

	o.runTranslate(ctx, question, filters, state)

	// Graph and semantic search have no ordering dependency, so they
	// run as two tasks joined before assembly.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		o.runGraphSearch(ctx, state)
	}()
	go func() {
		defer wg.Done()
		o.runSemanticSearch(ctx, question, filters, state)
	}()
	wg.Wait()

	o.runAssemble(state)
	answer := o.runSynthesize(ctx, question, state)

	result := &model.AskResult{
		RequestID:            uuid.NewString(),
		Question:             question,
		Answer:               answer,
		GraphResultsCount:    state.graphResult.TotalCount,
		SemanticResultsCount: len(state.semanticResults),
		StageTimings:         state.timings,
		TotalTime:            time.Since(start),
	}
	if state.generated != nil {
		result.GremlinQuery = state.generated.Query
	}

	o.logger.Info("question answered",
		slog.Int("graph_results", result.GraphResultsCount),
		slog.Int("semantic_results", result.SemanticResultsCount),
		slog.Duration("total", result.TotalTime))
	return result, nil
}

func (o *Orchestrator) runTranslate(ctx context.Context, question string, filters *translate.Filters, state *askState) {
	done := o.startStage(StageTranslate, state)

	stageCtx, cancel := context.WithTimeout(ctx, o.config.StageTimeout)
	defer cancel()

	var filterMap map[string]any
	if filters != nil {
		filterMap = filters.ToMap()
	}

	generated, err := o.translator.Translate(stageCtx, question, filterMap)
	if err != nil {
		state.recordError(StageTranslate, err.Error())
		o.logger.Warn("query translation failed", slog.Any("error", err))
		done(false)
		return
	}

	state.generated = generated
	done(true)
}

func (o *Orchestrator) runGraphSearch(ctx context.Context, state *askState) {
	done := o.startStage(StageGraph, state)

	if o.executor == nil {
		state.recordError(StageGraph, "graph executor not configured")
		done(false)
		return
	}
	if state.generated == nil || state.generated.Query == "" {
		state.recordError(StageGraph, "no query to execute")
		done(false)
		return
	}

	stageCtx, cancel := context.WithTimeout(ctx, o.config.StageTimeout)
	defer cancel()

	started := time.Now()
	rows, err := o.executor.Execute(stageCtx, state.generated.Query)
	if err != nil {
		// A rejected query means no results, not a failed request.
		state.recordError(StageGraph, err.Error())
		o.logger.Warn("graph search failed", slog.Any("error", err))
		done(false)
		return
	}

	state.graphResult = graph.MaterializeResult(rows, time.Since(started))
	done(true)
}

func (o *Orchestrator) runSemanticSearch(ctx context.Context, question string, filters *translate.Filters, state *askState) {
	done := o.startStage(StageSemantic, state)

	stageCtx, cancel := context.WithTimeout(ctx, o.config.StageTimeout)
	defer cancel()

	var metadataFilters map[string]any
	if filters != nil {
		metadataFilters = filters.MetadataFilters()
	}

	results, err := o.retriever.Retrieve(stageCtx, question, o.config.TopK, o.config.MinScore, metadataFilters)
	if err != nil {
		state.recordError(StageSemantic, err.Error())
		o.logger.Warn("semantic search failed", slog.Any("error", err))
		done(false)
		return
	}

	state.semanticResults = results
	done(true)
}

func (o *Orchestrator) runAssemble(state *askState) {
	done := o.startStage(StageAssemble, state)
	state.retrievalCtx = o.assembler.Assemble(state.graphResult, state.semanticResults)
	done(true)
}

// runSynthesize produces the final answer. An empty context skips the
// generator entirely and yields the no-information message, or the
// stage diagnostics in development mode.
func (o *Orchestrator) runSynthesize(ctx context.Context, question string, state *askState) string {
	done := o.startStage(StageSynth, state)

	if state.retrievalCtx.Empty() {
		done(true)
		if o.config.DevelopmentMode {
			return o.diagnosticAnswer(question, state)
		}
		return noInformationAnswer
	}

	stageCtx, cancel := context.WithTimeout(ctx, o.config.StageTimeout)
	defer cancel()

	answer, err := o.generator.Generate(stageCtx, buildAnswerPrompt(question, state.retrievalCtx.Text))
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			state.recordError(StageSynth, err.Error())
			o.logger.Warn("answer synthesis failed", slog.Any("error", err))
		} else {
			state.recordError(StageSynth, "empty response")
		}
		done(false)
		return synthesisFailedAnswer
	}

	done(true)
	return strings.TrimSpace(answer)
}

// startStage starts metric and wall-clock timers for one stage. The
// returned function stops both.
func (o *Orchestrator) startStage(stage string, state *askState) func(success bool) {
	recordMetric := metrics.TimeStage(stage)
	started := time.Now()
	return func(success bool) {
		state.recordTiming(stage, time.Since(started))
		recordMetric(success)
	}
}

// diagnosticAnswer itemizes what every stage did. Development mode
// only, never shown to end users.
func (o *Orchestrator) diagnosticAnswer(question string, state *askState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "No answer could be produced for: %q\n\nStage report:\n", question)

	query := "not generated"
	if state.generated != nil {
		query = state.generated.Query
	}
	fmt.Fprintf(&b, "- %s: %s\n", StageTranslate, query)

	for _, stage := range []string{StageGraph, StageSemantic, StageSynth} {
		if reason, ok := state.stageErrors[stage]; ok {
			fmt.Fprintf(&b, "- %s: failed: %s\n", stage, reason)
		} else {
			fmt.Fprintf(&b, "- %s: attempted\n", stage)
		}
	}

	fmt.Fprintf(&b, "\nFound %d graph results and %d semantic chunks.", state.graphResult.TotalCount, len(state.semanticResults))
	return b.String()
}

// buildAnswerPrompt wraps question and context for synthesis.
func buildAnswerPrompt(question string, contextText string) string {
	return fmt.Sprintf(`You are a helpful assistant that provides accurate and informative answers based on the given context.

User Question: %s

Context Information:
%s

Instructions:
- Answer the user's question based on the provided context
- If the context doesn't contain enough information, say so clearly
- Be concise but comprehensive
- Cite specific information from the context when possible
- If asked about data from the graph database, focus on relationships and connections
- If asked about content from documents, provide relevant excerpts

Answer:`, question, contextText)
}

// Stats describes the pipeline for operators.
func (o *Orchestrator) Stats() model.Metadata {
	stats := model.Metadata{
		"graph_search_enabled": o.executor != nil,
		"development_mode":     o.config.DevelopmentMode,
		"top_k":                o.config.TopK,
		"min_score":            o.config.MinScore,
	}
	for key, value := range o.retriever.Stats() {
		stats["index_"+key] = value
	}
	return stats
}
