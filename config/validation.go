package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateLLM()...)
	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateVectorDB()...)
	errs = append(errs, c.validatePipeline()...)
	errs = append(errs, c.validateIntent()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateLLM() ValidationErrors {
	var errs ValidationErrors

	if c.LLM.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.provider",
			Message: "llm provider is required",
		})
	}

	if c.LLM.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.model",
			Message: "llm model is required",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "llm.temperature",
			Message: fmt.Sprintf("llm.temperature must be in [0, 2], got %.2f", c.LLM.Temperature),
		})
	}

	if c.LLM.TopP < 0 || c.LLM.TopP > 1 {
		errs = append(errs, ValidationError{
			Field:   "llm.top_p",
			Message: fmt.Sprintf("llm.top_p must be in [0, 1], got %.2f", c.LLM.TopP),
		})
	}

	return errs
}

// validateEmbedding validates embedding configuration
func (c *Config) validateEmbedding() ValidationErrors {
	var errs ValidationErrors

	if c.Embedding.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.provider",
			Message: "embedding provider is required",
		})
	}

	if c.Embedding.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.model",
			Message: "embedding model is required",
		})
	}

	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions),
		})
	}

	// Validate dimensions are reasonable (typical range: 128-4096)
	if c.Embedding.Dimensions > 0 && (c.Embedding.Dimensions < 128 || c.Embedding.Dimensions > 4096) {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions %d is outside typical range [128, 4096]", c.Embedding.Dimensions),
		})
	}

	return errs
}

// validateVectorDB validates vector database configuration
func (c *Config) validateVectorDB() ValidationErrors {
	var errs ValidationErrors

	if c.VectorDB.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: "vectordb provider is required",
		})
		return errs
	}

	switch strings.ToLower(c.VectorDB.Provider) {
	case "milvus":
		if c.VectorDB.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.host",
				Message: "vectordb host is required for milvus provider",
			})
		}
		if c.VectorDB.Collection == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.collection",
				Message: "collection name is required for milvus provider",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: fmt.Sprintf("unsupported vectordb provider %q", c.VectorDB.Provider),
		})
	}

	return errs
}

// validatePipeline validates answering pipeline configuration
func (c *Config) validatePipeline() ValidationErrors {
	var errs ValidationErrors

	if c.Pipeline.Variants < 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.variants",
			Message: fmt.Sprintf("pipeline.variants must be non-negative, got %d", c.Pipeline.Variants),
		})
	}

	if c.Pipeline.Variants > 8 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.variants",
			Message: fmt.Sprintf("pipeline.variants %d is too large (max recommended: 8)", c.Pipeline.Variants),
		})
	}

	if c.Pipeline.TopK <= 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.top_k",
			Message: fmt.Sprintf("pipeline.top_k must be positive, got %d", c.Pipeline.TopK),
		})
	}

	if c.Pipeline.TopK > 100 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.top_k",
			Message: fmt.Sprintf("pipeline.top_k %d is too large (max recommended: 100)", c.Pipeline.TopK),
		})
	}

	if c.Pipeline.Threshold < 0 || c.Pipeline.Threshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.threshold",
			Message: fmt.Sprintf("pipeline.threshold must be in [0, 1], got %.2f", c.Pipeline.Threshold),
		})
	}

	if c.Pipeline.MaxPassages <= 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.max_passages",
			Message: fmt.Sprintf("pipeline.max_passages must be positive, got %d", c.Pipeline.MaxPassages),
		})
	}

	if c.Pipeline.MaxContextTokens <= 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.max_context_tokens",
			Message: fmt.Sprintf("pipeline.max_context_tokens must be positive, got %d", c.Pipeline.MaxContextTokens),
		})
	}

	return errs
}

// validateIntent validates intent classifier configuration
func (c *Config) validateIntent() ValidationErrors {
	var errs ValidationErrors

	if c.Intent.Cache.Enable {
		if c.Intent.Cache.MaxEntries <= 0 {
			errs = append(errs, ValidationError{
				Field:   "intent.cache.max_entries",
				Message: fmt.Sprintf("intent.cache.max_entries must be positive when cache is enabled, got %d", c.Intent.Cache.MaxEntries),
			})
		}
		if c.Intent.Cache.TTLSeconds <= 0 {
			errs = append(errs, ValidationError{
				Field:   "intent.cache.ttl_seconds",
				Message: fmt.Sprintf("intent.cache.ttl_seconds must be positive when cache is enabled, got %d", c.Intent.Cache.TTLSeconds),
			})
		}
	}

	return errs
}
