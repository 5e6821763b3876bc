package model

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PipelineConfig represents configuration for an answer pipeline run
type PipelineConfig struct {
	// Semantic search parameters
	TopK     int     `yaml:"top_k" json:"top_k"`
	MinScore float64 `yaml:"min_score" json:"min_score,omitempty"`

	// Context assembly parameters
	MaxGraphResults    int `yaml:"max_graph_results" json:"max_graph_results"`
	MaxSemanticResults int `yaml:"max_semantic_results" json:"max_semantic_results"`
	ContextBudget      int `yaml:"context_budget" json:"context_budget"` // max characters of assembled context

	// Query translation parameters
	DefaultResultLimit int `yaml:"default_result_limit" json:"default_result_limit"` // cap appended to unbounded queries

	// Stage control
	StageTimeout    time.Duration `yaml:"stage_timeout" json:"stage_timeout"`
	DevelopmentMode bool          `yaml:"development_mode" json:"development_mode"`
}

// DefaultPipelineConfig returns a sensible default configuration
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		TopK:               5,
		MinScore:           0.3,
		MaxGraphResults:    10,
		MaxSemanticResults: 5,
		ContextBudget:      4000,
		DefaultResultLimit: 10,
		StageTimeout:       30 * time.Second,
		DevelopmentMode:    false,
	}
}

// LoadPipelineConfig reads a PipelineConfig from a YAML file, filling
// unset fields from the defaults
func LoadPipelineConfig(path string) (PipelineConfig, error) {
	config := DefaultPipelineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read pipeline config: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse pipeline config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Validate checks the configuration for out-of-range values
func (c PipelineConfig) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("min_score must be in [0,1], got %f", c.MinScore)
	}
	if c.ContextBudget <= 0 {
		return fmt.Errorf("context_budget must be positive, got %d", c.ContextBudget)
	}
	if c.DefaultResultLimit <= 0 {
		return fmt.Errorf("default_result_limit must be positive, got %d", c.DefaultResultLimit)
	}
	return nil
}
