package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finadvisor/orchestrator/config"
)

// Provider defines a unified interface for completion backends.
type Provider interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
	GetProviderType() string
}

var (
	// ErrTimeout indicates the model call exceeded its deadline.
	ErrTimeout = errors.New("llm call timed out")
	// ErrUnavailable indicates the backend could not be reached or
	// returned no usable completion.
	ErrUnavailable = errors.New("llm backend unavailable")
)

// NewProvider creates a completion provider from configuration.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		return newOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
