package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/finadvisor/orchestrator/config"
	"github.com/finadvisor/orchestrator/schema"
)

// MockLLMProvider scripts completions per prompt for testing.
type MockLLMProvider struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (m *MockLLMProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.respond(prompt)
}

func (m *MockLLMProvider) GetProviderType() string { return "mock" }

func (m *MockLLMProvider) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// MockRetriever returns canned results per query.
type MockRetriever struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]schema.SearchResult
	err     error
}

func (m *MockRetriever) Type() string { return "mock" }

func (m *MockRetriever) Search(ctx context.Context, query string, topK int) ([]schema.SearchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.results[query], nil
}

func (m *MockRetriever) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func passage(text string) []schema.SearchResult {
	return []schema.SearchResult{{Document: schema.Document{ID: text, Content: text}, Score: 0.9}}
}

func testConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Variants:         2,
		TopK:             5,
		MaxPassages:      8,
		MaxContextTokens: 3000,
	}
}

func TestAnswerHappyPath(t *testing.T) {
	provider := &MockLLMProvider{
		respond: func(p string) (string, error) {
			if strings.Contains(p, "alternative phrasings") {
				return "variant one\nvariant two", nil
			}
			return "El interés compuesto es el interés sobre el interés.", nil
		},
	}
	ret := &MockRetriever{
		results: map[string][]schema.SearchResult{
			"¿Qué es el interés compuesto?": passage("passage A"),
			"variant one":                   passage("passage A"), // duplicate text across variants
			"variant two":                   passage("passage B"),
		},
	}

	p := New(testConfig(), provider, ret)
	answer, err := p.Answer(context.Background(), "¿Qué es el interés compuesto?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "El interés compuesto es el interés sobre el interés." {
		t.Fatalf("unexpected answer: %q", answer)
	}

	if got := ret.callCount(); got != 3 {
		t.Fatalf("retriever called %d times, want 3 (original + 2 variants)", got)
	}

	final := provider.lastPrompt()
	if strings.Count(final, "passage A") != 1 {
		t.Fatalf("duplicate passage not deduplicated in final prompt:\n%s", final)
	}
	if !strings.Contains(final, "passage B") {
		t.Fatalf("final prompt missing passage B:\n%s", final)
	}
	// original question's passages come before later variants'
	if strings.Index(final, "passage A") > strings.Index(final, "passage B") {
		t.Fatal("merged context does not preserve variant order")
	}
}

func TestAnswerReformulationFailureDegrades(t *testing.T) {
	provider := &MockLLMProvider{
		respond: func(p string) (string, error) {
			if strings.Contains(p, "alternative phrasings") {
				return "", errors.New("model overloaded")
			}
			return "answer", nil
		},
	}
	ret := &MockRetriever{results: map[string][]schema.SearchResult{"q": passage("doc")}}

	p := New(testConfig(), provider, ret)
	answer, err := p.Answer(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "answer" {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if got := ret.callCount(); got != 1 {
		t.Fatalf("retriever called %d times, want 1 (original question only)", got)
	}
}

func TestAnswerRetrievalFailureStillGenerates(t *testing.T) {
	provider := &MockLLMProvider{
		respond: func(p string) (string, error) {
			if strings.Contains(p, "alternative phrasings") {
				return "v1\nv2", nil
			}
			return "degraded answer", nil
		},
	}
	ret := &MockRetriever{err: errors.New("store down")}

	p := New(testConfig(), provider, ret)
	answer, err := p.Answer(context.Background(), "q")
	if err != nil {
		t.Fatalf("expected degraded success, got error: %v", err)
	}
	if answer != "degraded answer" {
		t.Fatalf("unexpected answer: %q", answer)
	}

	// empty context still reaches the generator with the refusal instruction
	final := provider.lastPrompt()
	if !strings.Contains(final, "Lo siento") {
		t.Fatalf("final prompt missing refusal instruction:\n%s", final)
	}
}

func TestAnswerReturnedVerbatim(t *testing.T) {
	raw := "\n  La respuesta, con su formato original.  \n"
	provider := &MockLLMProvider{
		respond: func(p string) (string, error) {
			if strings.Contains(p, "alternative phrasings") {
				return "v1", nil
			}
			return raw, nil
		},
	}
	p := New(testConfig(), provider, &MockRetriever{})
	answer, err := p.Answer(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != raw {
		t.Fatalf("answer was modified: got %q, want %q", answer, raw)
	}
}

func TestAnswerWhitespaceOnlyOutputFails(t *testing.T) {
	provider := &MockLLMProvider{
		respond: func(p string) (string, error) {
			if strings.Contains(p, "alternative phrasings") {
				return "v1", nil
			}
			return "   \n", nil
		},
	}
	p := New(testConfig(), provider, &MockRetriever{})
	if _, err := p.Answer(context.Background(), "q"); !errors.Is(err, schema.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestAnswerGenerationFailure(t *testing.T) {
	provider := &MockLLMProvider{
		respond: func(p string) (string, error) {
			if strings.Contains(p, "alternative phrasings") {
				return "v1", nil
			}
			return "", errors.New("upstream 500")
		},
	}
	ret := &MockRetriever{results: map[string][]schema.SearchResult{}}

	p := New(testConfig(), provider, ret)
	if _, err := p.Answer(context.Background(), "q"); err == nil {
		t.Fatal("expected error when final generation fails")
	}
}

func TestAnswerEmptyQuestion(t *testing.T) {
	p := New(testConfig(), &MockLLMProvider{respond: func(string) (string, error) { return "", nil }}, &MockRetriever{})
	if _, err := p.Answer(context.Background(), "   "); !errors.Is(err, schema.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestBuildContextCaps(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPassages = 2
	p := New(cfg, &MockLLMProvider{respond: func(string) (string, error) { return "", nil }}, &MockRetriever{})

	lists := [][]schema.SearchResult{
		append(append(passage("one"), passage("two")...), passage("three")...),
	}
	ctxText, kept := p.buildContext(lists)
	if kept != 2 {
		t.Fatalf("kept %d passages, want 2", kept)
	}
	if strings.Contains(ctxText, "three") {
		t.Fatalf("context exceeded passage cap: %q", ctxText)
	}
}

func TestBuildContextTokenBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxContextTokens = 5
	p := New(cfg, &MockLLMProvider{respond: func(string) (string, error) { return "", nil }}, &MockRetriever{})

	long := strings.Repeat("alpha beta gamma delta ", 50)
	lists := [][]schema.SearchResult{append(passage(long), passage("tiny")...)}
	ctxText, kept := p.buildContext(lists)
	if kept != 1 {
		t.Fatalf("kept %d passages, want 1 (long passage over budget)", kept)
	}
	if !strings.Contains(ctxText, "tiny") {
		t.Fatalf("small passage should fit the budget, got %q", ctxText)
	}
}
