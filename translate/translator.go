package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/guestgraph/guestgraph/helper"
	"github.com/guestgraph/guestgraph/language"
	"github.com/guestgraph/guestgraph/llm"
	"github.com/guestgraph/guestgraph/model"
	"github.com/guestgraph/guestgraph/schema"
)

// Translator turns natural language questions into Gremlin traversals.
// Generation goes through a language-aware prompt, the response is
// reduced to its first traversal line and the result is repaired
// before it reaches the caller. Generation failures degrade to a safe
// fallback listing instead of an error.
type Translator struct {
	catalog      *schema.Catalog
	detector     *language.Detector
	generator    llm.Generator
	enhancer     *Enhancer
	prompt       *promptBuilder
	defaultLimit int
	logger       *slog.Logger
}

func NewTranslator(catalog *schema.Catalog, detector *language.Detector, generator llm.Generator, defaultLimit int, logger *slog.Logger) (*Translator, error) {
	if catalog == nil {
		return nil, helper.NewError("NewTranslator", fmt.Errorf("catalog must not be nil"))
	}
	if detector == nil {
		return nil, helper.NewError("NewTranslator", fmt.Errorf("detector must not be nil"))
	}
	if generator == nil {
		return nil, helper.NewError("NewTranslator", fmt.Errorf("generator must not be nil"))
	}
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{
		catalog:      catalog,
		detector:     detector,
		generator:    generator,
		enhancer:     NewEnhancer(catalog, defaultLimit),
		prompt:       newPromptBuilder(catalog),
		defaultLimit: defaultLimit,
		logger:       logger,
	}, nil
}

// FallbackQuery is the safe listing used whenever no traversal could
// be generated or extracted.
func (t *Translator) FallbackQuery() string {
	return fmt.Sprintf("g.V().hasLabel('Hotel').valueMap(true).limit(%d)", t.defaultLimit)
}

// Translate generates a Gremlin traversal for the given question.
// Filters are optional caller-side constraints folded into the prompt.
// An unreachable generator or an unusable response never produces an
// error, only the fallback listing with a low confidence.
func (t *Translator) Translate(ctx context.Context, rawQuery string, filters map[string]any) (*model.GeneratedQuery, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, helper.NewError("Translate", fmt.Errorf("query must not be empty"))
	}

	detected := t.detector.Detect(rawQuery)
	prompt := t.prompt.Build(rawQuery, detected, filters)

	response, err := t.generator.Generate(ctx, prompt)
	if err != nil {
		t.logger.Warn("query generation failed, using fallback", slog.String("language", detected), slog.Any("error", err))
		return &model.GeneratedQuery{
			Query:          t.FallbackQuery(),
			SourceLanguage: detected,
			Confidence:     0.1,
		}, nil
	}

	extracted, confidence := t.extractQuery(response)
	if extracted == "" {
		t.logger.Warn("no traversal found in generated response, using fallback", slog.String("language", detected))
		return &model.GeneratedQuery{
			Query:          t.FallbackQuery(),
			SourceLanguage: detected,
			Confidence:     0.2,
		}, nil
	}

	enhanced := t.enhancer.Enhance(extracted, detected, rawQuery)
	repaired := enhanced != extracted
	if repaired {
		confidence -= 0.1
		t.logger.Debug("traversal repaired", slog.String("before", extracted), slog.String("after", enhanced))
	}

	return &model.GeneratedQuery{
		Query:          enhanced,
		SourceLanguage: detected,
		Confidence:     confidence,
		Repaired:       repaired,
	}, nil
}

// extractQuery reduces a raw generation response to its traversal.
// Fences are stripped, the first line starting with g. wins and
// trailing prose is discarded. The confidence reflects how directly
// the traversal was found.
func (t *Translator) extractQuery(response string) (string, float64) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```gremlin")
	cleaned = strings.TrimPrefix(cleaned, "```groovy")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "g.") {
			continue
		}
		if i == 0 {
			return line, 0.9
		}
		return line, 0.6
	}
	return "", 0
}

// Explain asks the generator for a short human readable description of
// a traversal. Used by operators, never on the answer path.
func (t *Translator) Explain(ctx context.Context, queryText string) (string, error) {
	prompt := fmt.Sprintf(`%s

TASK: Explain the following Gremlin query in simple, human-readable terms.

Gremlin Query: %s

Explain what this query looks for, how it traverses the graph and what it returns.

Explanation:`, t.prompt.schemaPrompt, queryText)

	response, err := t.generator.Generate(ctx, prompt)
	if err != nil {
		return "", helper.NewError("Explain", err)
	}
	return strings.TrimSpace(response), nil
}

// SuggestQueries proposes up to five related questions for a given
// question.
func (t *Translator) SuggestQueries(ctx context.Context, rawQuery string) ([]string, error) {
	prompt := fmt.Sprintf(`%s

TASK: Based on the user's query, suggest 3-5 related questions they might ask about hotel reviews.

User Query: %q

Return only the questions, one per line, without numbers or bullets.

Suggestions:`, t.prompt.schemaPrompt, rawQuery)

	response, err := t.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, helper.NewError("SuggestQueries", err)
	}

	var suggestions []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line == "" {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == 5 {
			break
		}
	}
	return suggestions, nil
}
