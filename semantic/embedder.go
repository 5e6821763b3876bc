package semantic

import (
	"context"
	"fmt"
	"time"

	"github.com/knights-analytics/hugot"
	openai "github.com/sashabaranov/go-openai"

	"github.com/guestgraph/guestgraph/helper"
)

// EmbedFunc turns a text into its embedding vector.
type EmbedFunc func(text string) ([]float32, error)

// DefaultEmbedder creates an embedder backed by a local sentence
// transformer model. Uses all-MiniLM-L6-v2 which produces
// 384-dimensional embeddings.
func DefaultEmbedder() (EmbedFunc, error) {
	modelName := "sentence-transformers/all-MiniLM-L6-v2"
	modelPath, err := helper.PrepareModel(modelName, "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return func(text string) ([]float32, error) {
		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}
		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}
		return result.Embeddings[0], nil
	}, nil
}

// RemoteEmbedderConfig configures an embedder backed by an
// OpenAI-compatible embeddings endpoint.
type RemoteEmbedderConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewRemoteEmbedder creates an embedder that calls out to an
// OpenAI-compatible API for every text.
func NewRemoteEmbedder(cfg RemoteEmbedderConfig) (EmbedFunc, error) {
	if cfg.Model == "" {
		return nil, helper.NewError("NewRemoteEmbedder", fmt.Errorf("model must not be empty"))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	return func(text string) ([]float32, error) {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		response, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(cfg.Model),
		})
		if err != nil {
			return nil, helper.NewError("CreateEmbeddings", err)
		}
		if len(response.Data) == 0 {
			return nil, helper.NewError("CreateEmbeddings", fmt.Errorf("no embedding returned"))
		}
		return response.Data[0].Embedding, nil
	}, nil
}
