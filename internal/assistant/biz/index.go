// Package biz 实现助手服务的业务逻辑：文档索引、检索与对话生成。
package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/kova-io/estate-x/internal/assistant/metrics"
	"github.com/kova-io/estate-x/internal/assistant/store"
	"github.com/kova-io/estate-x/internal/model"
	"github.com/kova-io/estate-x/internal/pkg/textutil"
	"github.com/kova-io/estate-x/pkg/llm"
)

// IndexerConfig 索引器配置。
type IndexerConfig struct {
	ChunkSize      int
	TopK           int
	ScoreThreshold float64
}

// Indexer 负责文档的向量化入库与相似检索。
type Indexer struct {
	embedder llm.EmbeddingProvider
	registry *store.CollectionRegistry
	vectors  store.VectorStore
	cache    *SearchCache
	cfg      IndexerConfig
}

// NewIndexer 创建索引器。cache 可为 nil，表示不启用检索缓存。
func NewIndexer(embedder llm.EmbeddingProvider, vectors store.VectorStore, registry *store.CollectionRegistry, cache *SearchCache, cfg IndexerConfig) *Indexer {
	return &Indexer{
		embedder: embedder,
		registry: registry,
		vectors:  vectors,
		cache:    cache,
		cfg:      cfg,
	}
}

// IndexDocument 把文档文本切块、向量化并写入租户集合，返回块数。
// 写入前先删除该文档的旧块，文档变短时不会残留过期内容。
func (ix *Indexer) IndexDocument(ctx context.Context, propertyID int64, documentID, title, text string) (int, error) {
	chunks := textutil.SplitChunks(text, ix.cfg.ChunkSize)
	if len(chunks) == 0 {
		return 0, nil
	}

	// 嵌入输入带上标题，提升短块的可检索性
	inputs := make([]string, len(chunks))
	for i, c := range chunks {
		inputs[i] = title + "\n\n" + c
	}

	vectors, err := ix.embedder.Embed(ctx, inputs)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(chunks))
	}

	collection, err := ix.registry.Ensure(ctx, propertyID)
	if err != nil {
		return 0, err
	}

	// 先删后写，清掉旧版本的全部块
	if err := ix.vectors.DeleteByDocument(ctx, collection, documentID); err != nil {
		return 0, fmt.Errorf("delete stale chunks: %w", err)
	}

	points := make([]store.Point, len(chunks))
	for i, c := range chunks {
		points[i] = store.Point{
			ID:     store.PointID(documentID, i),
			Vector: vectors[i],
			Payload: store.Payload{
				DocumentID: documentID,
				Title:      title,
				Content:    c,
				ChunkIndex: i,
				PropertyID: propertyID,
			},
		}
	}

	if err := ix.vectors.Upsert(ctx, collection, points); err != nil {
		return 0, fmt.Errorf("upsert chunks: %w", err)
	}

	if ix.cache != nil {
		ix.cache.InvalidateProperty(ctx, propertyID)
	}

	return len(chunks), nil
}

// DeleteDocument 删除文档的全部向量块。
func (ix *Indexer) DeleteDocument(ctx context.Context, propertyID int64, documentID string) error {
	collection, err := ix.registry.Ensure(ctx, propertyID)
	if err != nil {
		return err
	}
	if err := ix.vectors.DeleteByDocument(ctx, collection, documentID); err != nil {
		return fmt.Errorf("delete document vectors: %w", err)
	}
	if ix.cache != nil {
		ix.cache.InvalidateProperty(ctx, propertyID)
	}
	return nil
}

// Search 检索与 query 相关的文档块，limit 不为正时用配置的 TopK。
// 任何失败都降级为空结果，对话流程永远不会因检索问题中断。
func (ix *Indexer) Search(ctx context.Context, propertyID int64, query string, limit int) []model.ChunkSource {
	m := metrics.Get()

	if limit <= 0 {
		limit = ix.cfg.TopK
	}

	if ix.cache != nil {
		if hit, ok := ix.cache.Get(ctx, propertyID, limit, query); ok {
			m.IncCacheHit()
			m.IncSearch(false)
			return hit
		}
	}

	sources, err := ix.search(ctx, propertyID, query, limit)
	if err != nil {
		logger.Warnw("检索失败，降级为空来源", "property_id", propertyID, "error", err)
		m.IncSearch(true)
		return []model.ChunkSource{}
	}
	m.IncSearch(false)

	if ix.cache != nil {
		ix.cache.Set(ctx, propertyID, limit, query, sources)
	}
	return sources
}

func (ix *Indexer) search(ctx context.Context, propertyID int64, query string, limit int) ([]model.ChunkSource, error) {
	vector, err := ix.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	collection, err := ix.registry.Ensure(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	hits, err := ix.vectors.Search(ctx, collection, vector, limit, ix.cfg.ScoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	sources := make([]model.ChunkSource, len(hits))
	for i, h := range hits {
		sources[i] = model.ChunkSource{
			DocumentID: h.Payload.DocumentID,
			Title:      h.Payload.Title,
			Content:    h.Payload.Content,
			ChunkIndex: h.Payload.ChunkIndex,
			Score:      h.Score,
		}
	}
	return sources, nil
}

// ChunkCount 返回租户集合内的向量块数。
func (ix *Indexer) ChunkCount(ctx context.Context, propertyID int64) (int64, error) {
	collection, err := ix.registry.Ensure(ctx, propertyID)
	if err != nil {
		return 0, err
	}
	return ix.vectors.Count(ctx, collection)
}
