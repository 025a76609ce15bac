package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/finadvisor/orchestrator/common/logger"
	"github.com/finadvisor/orchestrator/config"
	"github.com/finadvisor/orchestrator/llm"
	"github.com/finadvisor/orchestrator/metrics"
	"github.com/finadvisor/orchestrator/prompt"
	"github.com/finadvisor/orchestrator/retriever"
	"github.com/finadvisor/orchestrator/schema"
)

const passageSeparator = "\n\n"

// Pipeline answers a question with multi-query retrieval: the question
// is reformulated into alternative phrasings, every phrasing is
// retrieved concurrently, and the merged context feeds one constrained
// generation call.
type Pipeline struct {
	provider  llm.Provider
	retriever retriever.Retriever

	variants         int
	topK             int
	maxPassages      int
	maxContextTokens int
	retrievalTimeout time.Duration

	encInit sync.Once
	encoder *tiktoken.Tiktoken
	encName string
}

// New builds a pipeline from configuration.
func New(cfg config.PipelineConfig, provider llm.Provider, r retriever.Retriever) *Pipeline {
	variants := cfg.Variants
	if variants < 0 {
		variants = 0
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}
	maxPassages := cfg.MaxPassages
	if maxPassages <= 0 {
		maxPassages = 8
	}
	maxTokens := cfg.MaxContextTokens
	if maxTokens <= 0 {
		maxTokens = 3000
	}
	timeout := 5 * time.Second
	if cfg.RetrievalTimeoutMs > 0 {
		timeout = time.Duration(cfg.RetrievalTimeoutMs) * time.Millisecond
	}
	encName := cfg.Encoding
	if encName == "" {
		encName = "cl100k_base"
	}
	return &Pipeline{
		provider:         provider,
		retriever:        r,
		variants:         variants,
		topK:             topK,
		maxPassages:      maxPassages,
		maxContextTokens: maxTokens,
		retrievalTimeout: timeout,
		encName:          encName,
	}
}

// Answer runs the full multi-query flow for one question.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("pipeline: question: %w", schema.ErrMissingField)
	}

	queries := p.reformulate(ctx, question)
	lists := p.retrieveAll(ctx, queries)
	contextText, kept := p.buildContext(lists)
	metrics.ObserveContext(kept)
	logger.Infof("pipeline: %d variant(s), %d distinct passage(s) in context", len(queries), kept)

	answerPrompt, err := prompt.Answer(contextText, question)
	if err != nil {
		return "", err
	}
	answer, err := p.provider.GenerateCompletion(ctx, answerPrompt)
	if err != nil {
		return "", fmt.Errorf("final answer generation failed, err: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("final answer was empty: %w", schema.ErrGenerationFailed)
	}
	// the generator's text is returned as-is, no post-processing
	return answer, nil
}

// reformulate returns the retrieval queries, original question first.
// Reformulation failures degrade to the original question alone.
func (p *Pipeline) reformulate(ctx context.Context, question string) []string {
	queries := []string{question}
	if p.variants == 0 {
		return queries
	}

	rp, err := prompt.Reformulation(question, p.variants)
	if err != nil {
		return queries
	}
	out, err := p.provider.GenerateCompletion(ctx, rp)
	if err != nil {
		logger.Warnf("pipeline: reformulation failed, falling back to original question: %v", err)
		return queries
	}

	seen := map[string]bool{normalizeQuery(question): true}
	for _, line := range strings.Split(out, "\n") {
		variant := strings.TrimSpace(line)
		if variant == "" || seen[normalizeQuery(variant)] {
			continue
		}
		seen[normalizeQuery(variant)] = true
		queries = append(queries, variant)
		if len(queries) > p.variants {
			break
		}
	}
	return queries
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// retrieveAll runs one retrieval per query concurrently. Result order
// follows query order so the merge stays reproducible. A failed or
// timed-out variant contributes an empty list.
func (p *Pipeline) retrieveAll(ctx context.Context, queries []string) [][]schema.SearchResult {
	lists := make([][]schema.SearchResult, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(idx int, query string) {
			defer wg.Done()
			qctx, cancel := context.WithTimeout(ctx, p.retrievalTimeout)
			defer cancel()

			start := time.Now()
			res, err := p.retriever.Search(qctx, query, p.topK)
			if err != nil {
				logger.Warnf("pipeline: retrieval for variant %d failed: %v", idx, err)
				return
			}
			metrics.ObserveRetriever(p.retriever.Type(), start, len(res))
			lists[idx] = res
		}(i, q)
	}
	wg.Wait()
	return lists
}

// buildContext merges the per-variant result lists in variant order,
// drops passages whose text was already taken, and caps the context by
// passage count and token budget.
func (p *Pipeline) buildContext(lists [][]schema.SearchResult) (string, int) {
	seen := make(map[string]bool)
	var parts []string
	budget := p.maxContextTokens

	for _, list := range lists {
		for _, res := range list {
			text := strings.TrimSpace(res.Document.Content)
			if text == "" || seen[text] {
				continue
			}
			if len(parts) >= p.maxPassages {
				return strings.Join(parts, passageSeparator), len(parts)
			}
			cost := p.countTokens(text)
			if cost > budget {
				continue
			}
			seen[text] = true
			parts = append(parts, text)
			budget -= cost
		}
	}
	return strings.Join(parts, passageSeparator), len(parts)
}

func (p *Pipeline) countTokens(text string) int {
	p.encInit.Do(func() {
		enc, err := tiktoken.GetEncoding(p.encName)
		if err != nil {
			logger.Warnf("pipeline: load encoding %s failed, using character estimate: %v", p.encName, err)
			return
		}
		p.encoder = enc
	})
	if p.encoder == nil {
		// rough 4 chars per token estimate
		return (len(text) + 3) / 4
	}
	return len(p.encoder.Encode(text, nil, nil))
}
