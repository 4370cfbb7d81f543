package store

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kova-io/estate-x/pkg/component/milvus"
)

// MilvusStore 基于 Milvus 实现 VectorStore。
type MilvusStore struct {
	client *milvus.Client
}

var _ VectorStore = (*MilvusStore)(nil)

// NewMilvusStore 创建 Milvus 向量存储。
func NewMilvusStore(client *milvus.Client) *MilvusStore {
	return &MilvusStore{client: client}
}

var payloadFields = []string{"document_id", "title", "content", "chunk_index", "property_id"}

// EnsureCollection 惰性创建集合。
func (s *MilvusStore) EnsureCollection(ctx context.Context, name string, dim int) error {
	return s.client.EnsureCollection(ctx, &milvus.CollectionSchema{
		Name:        name,
		Description: "property document chunks",
		Dimension:   dim,
		IDMaxLen:    128,
		MetaFields: []milvus.MetaField{
			{Name: "document_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "title", DataType: entity.FieldTypeVarChar, MaxLen: 512},
			{Name: "content", DataType: entity.FieldTypeVarChar, MaxLen: 4096},
			{Name: "chunk_index", DataType: entity.FieldTypeInt64},
			{Name: "property_id", DataType: entity.FieldTypeInt64},
		},
	})
}

// Upsert 写入记录。
func (s *MilvusStore) Upsert(ctx context.Context, name string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	data := &milvus.UpsertData{
		IDs:        make([]string, len(points)),
		Embeddings: make([][]float32, len(points)),
		Metadata: map[string][]any{
			"document_id": make([]any, len(points)),
			"title":       make([]any, len(points)),
			"content":     make([]any, len(points)),
			"chunk_index": make([]any, len(points)),
			"property_id": make([]any, len(points)),
		},
	}
	for i, p := range points {
		data.IDs[i] = p.ID
		data.Embeddings[i] = p.Vector
		data.Metadata["document_id"][i] = p.Payload.DocumentID
		data.Metadata["title"][i] = p.Payload.Title
		data.Metadata["content"][i] = p.Payload.Content
		data.Metadata["chunk_index"][i] = int64(p.Payload.ChunkIndex)
		data.Metadata["property_id"][i] = p.Payload.PropertyID
	}

	return s.client.Upsert(ctx, name, data)
}

// Search 检索相似块并按阈值过滤。
func (s *MilvusStore) Search(ctx context.Context, name string, vector []float32, limit int, threshold float64) ([]ScoredPoint, error) {
	hits, err := s.client.Search(ctx, name, vector, limit, payloadFields)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredPoint, 0, len(hits))
	for _, h := range hits {
		if float64(h.Score) < threshold {
			continue
		}
		sp := ScoredPoint{Score: h.Score}
		sp.ID = h.ID
		sp.Payload = payloadFromMetadata(h.Metadata)
		results = append(results, sp)
	}
	return results, nil
}

// DeleteByDocument 删除某文档的全部块。
func (s *MilvusStore) DeleteByDocument(ctx context.Context, name string, documentID string) error {
	expr := fmt.Sprintf("document_id == %q", documentID)
	return s.client.DeleteByFilter(ctx, name, expr)
}

// Count 返回集合行数。
func (s *MilvusStore) Count(ctx context.Context, name string) (int64, error) {
	return s.client.RowCount(ctx, name)
}

// Close 关闭底层连接。
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func payloadFromMetadata(meta map[string]any) Payload {
	var p Payload
	if v, ok := meta["document_id"].(string); ok {
		p.DocumentID = v
	}
	if v, ok := meta["title"].(string); ok {
		p.Title = v
	}
	if v, ok := meta["content"].(string); ok {
		p.Content = v
	}
	if v, ok := meta["chunk_index"].(int64); ok {
		p.ChunkIndex = int(v)
	}
	if v, ok := meta["property_id"].(int64); ok {
		p.PropertyID = v
	}
	return p
}
