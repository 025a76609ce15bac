package vectordb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/finadvisor/orchestrator/common/logger"
	"github.com/finadvisor/orchestrator/config"
	"github.com/finadvisor/orchestrator/schema"
)

const (
	fieldID       = "id"
	fieldContent  = "content"
	fieldMetadata = "metadata"
	fieldVector   = "vector"

	maxIDLength      = 256
	maxVarCharLength = 65535
)

type milvusProvider struct {
	client     client.Client
	collection string
	dim        int
}

func newMilvusProvider(ctx context.Context, cfg config.VectorDBConfig, dim int) (VectorStoreProvider, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c, err := client.NewClient(ctx, client.Config{
		Address:  addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to milvus at %s failed, err: %w", addr, err)
	}

	p := &milvusProvider{client: c, collection: cfg.Collection, dim: dim}
	if err := p.ensureCollection(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return p, nil
}

func (p *milvusProvider) ensureCollection(ctx context.Context) error {
	has, err := p.client.HasCollection(ctx, p.collection)
	if err != nil {
		return fmt.Errorf("check collection failed, err: %w", err)
	}
	if !has {
		sch := entity.NewSchema().
			WithName(p.collection).
			WithField(entity.NewField().WithName(fieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxIDLength).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(fieldContent).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxVarCharLength)).
			WithField(entity.NewField().WithName(fieldMetadata).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxVarCharLength)).
			WithField(entity.NewField().WithName(fieldVector).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(p.dim)))
		if err := p.client.CreateCollection(ctx, sch, 1); err != nil {
			return fmt.Errorf("create collection failed, err: %w", err)
		}
		idx, err := entity.NewIndexHNSW(entity.COSINE, 8, 64)
		if err != nil {
			return fmt.Errorf("build index definition failed, err: %w", err)
		}
		if err := p.client.CreateIndex(ctx, p.collection, fieldVector, idx, false); err != nil {
			return fmt.Errorf("create index failed, err: %w", err)
		}
		logger.Infof("vectordb: created milvus collection %s (dim=%d)", p.collection, p.dim)
	}
	if err := p.client.LoadCollection(ctx, p.collection, false); err != nil {
		return fmt.Errorf("load collection failed, err: %w", err)
	}
	return nil
}

func (p *milvusProvider) AddDocs(ctx context.Context, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(docs))
	contents := make([]string, 0, len(docs))
	metas := make([]string, 0, len(docs))
	vectors := make([][]float32, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Vector) != p.dim {
			return fmt.Errorf("document %s vector dimension %d does not match collection dimension %d", doc.ID, len(doc.Vector), p.dim)
		}
		meta := "{}"
		if len(doc.Metadata) > 0 {
			raw, err := json.Marshal(doc.Metadata)
			if err != nil {
				return fmt.Errorf("encode metadata for document %s failed, err: %w", doc.ID, err)
			}
			meta = string(raw)
		}
		ids = append(ids, doc.ID)
		contents = append(contents, doc.Content)
		metas = append(metas, meta)
		vectors = append(vectors, doc.Vector)
	}

	_, err := p.client.Insert(ctx, p.collection, "",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldContent, contents),
		entity.NewColumnVarChar(fieldMetadata, metas),
		entity.NewColumnFloatVector(fieldVector, p.dim, vectors),
	)
	if err != nil {
		return fmt.Errorf("insert documents failed, err: %w", err)
	}
	return nil
}

func (p *milvusProvider) SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	topK := 10
	threshold := 0.0
	if opts != nil {
		if opts.TopK > 0 {
			topK = opts.TopK
		}
		threshold = opts.Threshold
	}

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("build search param failed, err: %w", err)
	}
	res, err := p.client.Search(ctx, p.collection, nil, "",
		[]string{fieldID, fieldContent, fieldMetadata},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldVector, entity.COSINE, topK, sp,
	)
	if err != nil {
		return nil, fmt.Errorf("vector search failed, err: %w", err)
	}

	var results []schema.SearchResult
	for _, rs := range res {
		idCol := rs.Fields.GetColumn(fieldID)
		contentCol := rs.Fields.GetColumn(fieldContent)
		metaCol := rs.Fields.GetColumn(fieldMetadata)
		for i := 0; i < rs.ResultCount; i++ {
			score := float64(rs.Scores[i])
			if threshold > 0 && score < threshold {
				continue
			}
			doc := schema.Document{}
			if idCol != nil {
				doc.ID, _ = idCol.GetAsString(i)
			}
			if contentCol != nil {
				doc.Content, _ = contentCol.GetAsString(i)
			}
			if metaCol != nil {
				if raw, err := metaCol.GetAsString(i); err == nil && raw != "" && raw != "{}" {
					meta := map[string]any{}
					if err := json.Unmarshal([]byte(raw), &meta); err == nil {
						doc.Metadata = meta
					}
				}
			}
			results = append(results, schema.SearchResult{Document: doc, Score: score})
		}
	}
	return results, nil
}

func (p *milvusProvider) Close() error {
	return p.client.Close()
}
