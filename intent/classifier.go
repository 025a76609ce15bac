package intent

import (
	"context"
	"strings"
	"time"

	"github.com/finadvisor/orchestrator/cache"
	"github.com/finadvisor/orchestrator/common/logger"
	"github.com/finadvisor/orchestrator/config"
	"github.com/finadvisor/orchestrator/llm"
	"github.com/finadvisor/orchestrator/metrics"
	"github.com/finadvisor/orchestrator/prompt"
	"github.com/finadvisor/orchestrator/schema"
)

// Classifier decides which intent a user message carries. It never
// returns an error: any failure or unrecognized model output resolves
// to the refusing label.
type Classifier struct {
	provider llm.Provider
	cache    cache.Cache
	ttl      time.Duration
}

// NewClassifier builds a classifier. The decision cache is only
// attached when enabled in configuration.
func NewClassifier(cfg config.IntentConfig, provider llm.Provider) *Classifier {
	c := &Classifier{provider: provider}
	if cfg.Cache.Enable {
		c.ttl = time.Duration(cfg.Cache.TTLSeconds) * time.Second
		c.cache = cache.NewLRU(cfg.Cache.MaxEntries, c.ttl)
	}
	return c
}

// Classify maps a user message to an intent label.
func (c *Classifier) Classify(ctx context.Context, question string) schema.IntentLabel {
	key := strings.ToLower(strings.TrimSpace(question))
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			if label, ok := v.(schema.IntentLabel); ok {
				return label
			}
		}
	}

	label := c.classify(ctx, question)
	metrics.IncIntent(label.String())
	if c.cache != nil {
		c.cache.Set(key, label, c.ttl)
	}
	return label
}

func (c *Classifier) classify(ctx context.Context, question string) schema.IntentLabel {
	cp, err := prompt.Classification(question)
	if err != nil {
		logger.Warnf("intent: empty question, refusing by default")
		metrics.IncIntentAnomaly("anomaly")
		return schema.IntentToxic
	}

	out, err := c.provider.GenerateCompletion(ctx, cp)
	if err != nil {
		logger.Errorf("intent: classification call failed, refusing by default: %v", err)
		metrics.IncIntentAnomaly("failure")
		return schema.IntentToxic
	}

	label, ok := schema.ParseIntent(out)
	if !ok {
		logger.Warnf("intent: unrecognized classifier output %q, refusing by default", truncate(out, 120))
		metrics.IncIntentAnomaly("anomaly")
		return schema.IntentToxic
	}
	return label
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
