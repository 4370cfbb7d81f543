package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore 是进程内暴力检索的 VectorStore 实现，
// 用于测试与无 Milvus 的本地开发。
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	dim    int
	points map[string]Point
}

var _ VectorStore = (*MemoryStore)(nil)

// NewMemoryStore 创建内存向量存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
	}
}

// EnsureCollection 惰性创建集合，维度不匹配时报错。
func (s *MemoryStore) EnsureCollection(ctx context.Context, name string, dim int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		if c.dim != dim {
			return fmt.Errorf("collection %s exists with dim %d, requested %d", name, c.dim, dim)
		}
		return nil
	}
	s.collections[name] = &memoryCollection{
		dim:    dim,
		points: make(map[string]Point),
	}
	return nil
}

// Upsert 写入记录，按 ID 覆盖。
func (s *MemoryStore) Upsert(ctx context.Context, name string, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %s does not exist", name)
	}
	for _, p := range points {
		if len(p.Vector) != c.dim {
			return fmt.Errorf("point %s has dim %d, collection expects %d", p.ID, len(p.Vector), c.dim)
		}
		c.points[p.ID] = p
	}
	return nil
}

// Search 暴力计算余弦相似度，返回达到阈值的前 limit 条。
func (s *MemoryStore) Search(ctx context.Context, name string, vector []float32, limit int, threshold float64) ([]ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", name)
	}

	scored := make([]ScoredPoint, 0, len(c.points))
	for _, p := range c.points {
		score := cosineSimilarity(vector, p.Vector)
		if float64(score) < threshold {
			continue
		}
		scored = append(scored, ScoredPoint{Point: p, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// DeleteByDocument 删除某文档的全部块。
func (s *MemoryStore) DeleteByDocument(ctx context.Context, name string, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %s does not exist", name)
	}
	for id, p := range c.points {
		if p.Payload.DocumentID == documentID {
			delete(c.points, id)
		}
	}
	return nil
}

// Count 返回集合内记录数。
func (s *MemoryStore) Count(ctx context.Context, name string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return 0, fmt.Errorf("collection %s does not exist", name)
	}
	return int64(len(c.points)), nil
}

// Close 无资源可释放。
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
