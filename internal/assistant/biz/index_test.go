package biz

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kova-io/estate-x/internal/assistant/store"
)

func newTestIndexer(embedder *mockEmbeddingProvider) (*Indexer, *store.MemoryStore) {
	vectors := store.NewMemoryStore()
	registry := store.NewCollectionRegistry(vectors, "property_docs_", embedder.dim)
	ix := NewIndexer(embedder, vectors, registry, nil, IndexerConfig{
		ChunkSize:      500,
		TopK:           5,
		ScoreThreshold: 0.5,
	})
	return ix, vectors
}

func TestIndexDocumentChunking(t *testing.T) {
	embedder := &mockEmbeddingProvider{dim: 4}
	ix, _ := newTestIndexer(embedder)
	ctx := context.Background()

	// 1200 字 → 500 + 500 + 200 三块
	text := strings.Repeat("物", 1200)
	n, err := ix.IndexDocument(ctx, 1, "doc-1", "消防制度", text)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// 嵌入输入带标题前缀
	require.Len(t, embedder.seen, 3)
	assert.True(t, strings.HasPrefix(embedder.seen[0], "消防制度\n\n"))

	count, err := ix.ChunkCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestIndexDocumentReplacesStaleChunks(t *testing.T) {
	embedder := &mockEmbeddingProvider{dim: 4}
	ix, _ := newTestIndexer(embedder)
	ctx := context.Background()

	_, err := ix.IndexDocument(ctx, 1, "doc-1", "规章", strings.Repeat("长", 1500))
	require.NoError(t, err)

	// 文档变短重新入库，旧块必须整体消失
	n, err := ix.IndexDocument(ctx, 1, "doc-1", "规章", strings.Repeat("短", 300))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := ix.ChunkCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSearchReturnsRankedSources(t *testing.T) {
	embedder := &mockEmbeddingProvider{dim: 4}
	ix, _ := newTestIndexer(embedder)
	ctx := context.Background()

	_, err := ix.IndexDocument(ctx, 1, "doc-1", "电梯维保", strings.Repeat("梯", 1200))
	require.NoError(t, err)

	sources := ix.Search(ctx, 1, "电梯多久保养一次", 0)
	require.Len(t, sources, 3)
	for _, s := range sources {
		assert.Equal(t, "doc-1", s.DocumentID)
		assert.Equal(t, "电梯维保", s.Title)
		assert.GreaterOrEqual(t, s.Score, float32(0.5))
	}
}

func TestSearchTopKLimit(t *testing.T) {
	embedder := &mockEmbeddingProvider{dim: 4}
	ix, _ := newTestIndexer(embedder)
	ctx := context.Background()

	// 8 块超过 top-k=5
	_, err := ix.IndexDocument(ctx, 1, "doc-1", "手册", strings.Repeat("册", 500*8))
	require.NoError(t, err)

	// limit 不为正时用配置默认值
	sources := ix.Search(ctx, 1, "手册", 0)
	assert.Len(t, sources, 5)

	// 显式 limit 覆盖默认值
	sources = ix.Search(ctx, 1, "手册", 3)
	assert.Len(t, sources, 3)
}

func TestSearchTenantIsolation(t *testing.T) {
	embedder := &mockEmbeddingProvider{dim: 4}
	ix, _ := newTestIndexer(embedder)
	ctx := context.Background()

	_, err := ix.IndexDocument(ctx, 1, "doc-1", "一号小区", strings.Repeat("一", 100))
	require.NoError(t, err)

	// 其他租户的集合看不到 doc-1
	sources := ix.Search(ctx, 2, "一号小区", 0)
	assert.Empty(t, sources)
}

func TestSearchDegradesToEmpty(t *testing.T) {
	embedder := &mockEmbeddingProvider{dim: 4, err: errMockLLM}
	ix, _ := newTestIndexer(embedder)

	// 嵌入失败时降级为空来源，不向调用方返回错误
	sources := ix.Search(context.Background(), 1, "任意问题", 0)
	require.NotNil(t, sources)
	assert.Empty(t, sources)
}

func TestDeleteDocumentRemovesChunks(t *testing.T) {
	embedder := &mockEmbeddingProvider{dim: 4}
	ix, _ := newTestIndexer(embedder)
	ctx := context.Background()

	_, err := ix.IndexDocument(ctx, 1, "doc-1", "通知", strings.Repeat("知", 600))
	require.NoError(t, err)
	require.NoError(t, ix.DeleteDocument(ctx, 1, "doc-1"))

	count, err := ix.ChunkCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)
}
