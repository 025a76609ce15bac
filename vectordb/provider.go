package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/finadvisor/orchestrator/config"
	"github.com/finadvisor/orchestrator/schema"
)

// VectorStoreProvider defines a unified interface for vector stores.
type VectorStoreProvider interface {
	AddDocs(ctx context.Context, docs []schema.Document) error
	SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error)
	Close() error
}

// NewProvider creates a vector store provider from configuration.
// dim is the embedding dimension used when the collection has to be
// created.
func NewProvider(ctx context.Context, cfg config.VectorDBConfig, dim int) (VectorStoreProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "milvus", "":
		return newMilvusProvider(ctx, cfg, dim)
	default:
		return nil, fmt.Errorf("unsupported vectordb provider: %s", cfg.Provider)
	}
}
