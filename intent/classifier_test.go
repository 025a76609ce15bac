package intent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/finadvisor/orchestrator/config"
	"github.com/finadvisor/orchestrator/schema"
)

// MockLLMProvider is a mock implementation of llm.Provider for testing
type MockLLMProvider struct {
	mu       sync.Mutex
	calls    int
	response string
	err      error
}

func (m *MockLLMProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *MockLLMProvider) GetProviderType() string {
	return "mock"
}

func (m *MockLLMProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		expected schema.IntentLabel
	}{
		{
			name:     "chat rag",
			response: "chat_rag",
			expected: schema.IntentChatRAG,
		},
		{
			name:     "analyze pdf with whitespace",
			response: " analyze_pdf\n",
			expected: schema.IntentAnalyzePDF,
		},
		{
			name:     "shopping advisor uppercase",
			response: "SHOPPING_ADVISOR",
			expected: schema.IntentShoppingAdvisor,
		},
		{
			name:     "toxic",
			response: "toxic",
			expected: schema.IntentToxic,
		},
		{
			name:     "multi word anomaly refuses",
			response: "creo que es finanzas",
			expected: schema.IntentToxic,
		},
		{
			name:     "empty output refuses",
			response: "",
			expected: schema.IntentToxic,
		},
		{
			name:     "call failure refuses",
			err:      errors.New("connection refused"),
			expected: schema.IntentToxic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(config.IntentConfig{}, &MockLLMProvider{response: tt.response, err: tt.err})
			if got := c.Classify(context.Background(), "¿Qué es el interés compuesto?"); got != tt.expected {
				t.Fatalf("Classify() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClassifyEmptyQuestionRefuses(t *testing.T) {
	provider := &MockLLMProvider{response: "chat_rag"}
	c := NewClassifier(config.IntentConfig{}, provider)
	if got := c.Classify(context.Background(), "   "); got != schema.IntentToxic {
		t.Fatalf("Classify(blank) = %v, want IntentToxic", got)
	}
	if provider.callCount() != 0 {
		t.Fatal("blank question should not reach the model")
	}
}

func TestClassifyCache(t *testing.T) {
	provider := &MockLLMProvider{response: "chat_rag"}
	cfg := config.IntentConfig{Cache: config.IntentCacheConfig{Enable: true, MaxEntries: 8, TTLSeconds: 60}}
	c := NewClassifier(cfg, provider)

	for i := 0; i < 3; i++ {
		if got := c.Classify(context.Background(), "what is an ETF"); got != schema.IntentChatRAG {
			t.Fatalf("Classify() = %v, want IntentChatRAG", got)
		}
	}
	if provider.callCount() != 1 {
		t.Fatalf("model called %d times, want 1 (cache hit after first)", provider.callCount())
	}
}

func TestClassifyCacheDisabledByDefault(t *testing.T) {
	provider := &MockLLMProvider{response: "chat_rag"}
	c := NewClassifier(config.IntentConfig{}, provider)

	c.Classify(context.Background(), "what is an ETF")
	c.Classify(context.Background(), "what is an ETF")
	if provider.callCount() != 2 {
		t.Fatalf("model called %d times, want 2 (no cache)", provider.callCount())
	}
}
