// Package store 提供向量索引与元数据的存储层。
package store

import (
	"context"
	"fmt"
	"sync"
)

// Payload 是随向量一起存储的块元数据。
type Payload struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	ChunkIndex int    `json:"chunk_index"`
	PropertyID int64  `json:"property_id"`
}

// Point 是一条向量记录。ID 形如 {document_id}_{chunk_index}，
// 同一文档重新入库时按 ID 覆盖。
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// PointID 构造块记录的主键。
func PointID(documentID string, chunkIndex int) string {
	return fmt.Sprintf("%s_%d", documentID, chunkIndex)
}

// ScoredPoint 是一次检索命中。
type ScoredPoint struct {
	Point
	Score float32
}

// VectorStore 定义向量集合的操作。实现必须可安全并发使用。
type VectorStore interface {
	// EnsureCollection 惰性创建集合，已存在时为幂等空操作。
	EnsureCollection(ctx context.Context, name string, dim int) error

	// Upsert 写入记录，主键相同的旧记录被覆盖。
	Upsert(ctx context.Context, name string, points []Point) error

	// Search 返回按相似度降序排列、得分不低于 threshold 的前 limit 条记录。
	Search(ctx context.Context, name string, vector []float32, limit int, threshold float64) ([]ScoredPoint, error)

	// DeleteByDocument 删除 payload.document_id 匹配的所有记录。
	DeleteByDocument(ctx context.Context, name string, documentID string) error

	// Count 返回集合内的记录数。
	Count(ctx context.Context, name string) (int64, error)

	// Close 释放底层连接。
	Close(ctx context.Context) error
}

// CollectionRegistry 是租户到集合名的唯一权威映射。
// 集合按需创建一次，后续请求直接复用。
type CollectionRegistry struct {
	store  VectorStore
	prefix string
	dim    int

	mu      sync.Mutex
	ensured map[string]bool
}

// NewCollectionRegistry 创建注册表。prefix 通常为 "property_docs_"。
func NewCollectionRegistry(store VectorStore, prefix string, dim int) *CollectionRegistry {
	return &CollectionRegistry{
		store:   store,
		prefix:  prefix,
		dim:     dim,
		ensured: make(map[string]bool),
	}
}

// CollectionName 返回租户对应的集合名，不触发创建。
func (r *CollectionRegistry) CollectionName(propertyID int64) string {
	return fmt.Sprintf("%s%d", r.prefix, propertyID)
}

// Ensure 返回租户集合名，首次调用时创建集合。
// 创建失败不会被记忆，下次调用会重试。
func (r *CollectionRegistry) Ensure(ctx context.Context, propertyID int64) (string, error) {
	name := r.CollectionName(propertyID)

	r.mu.Lock()
	done := r.ensured[name]
	r.mu.Unlock()
	if done {
		return name, nil
	}

	if err := r.store.EnsureCollection(ctx, name, r.dim); err != nil {
		return "", fmt.Errorf("ensure collection %s: %w", name, err)
	}

	r.mu.Lock()
	r.ensured[name] = true
	r.mu.Unlock()
	return name, nil
}
