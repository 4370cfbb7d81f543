package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kova-io/estate-x/internal/model"
)

// DocumentStore 管理文档元数据。
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore 创建文档元数据存储。
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Create 新建文档记录。
func (s *DocumentStore) Create(ctx context.Context, doc *model.Document) error {
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Get 按 ID 查询文档。
func (s *DocumentStore) Get(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByProperty 返回某小区的全部文档，按创建时间倒序。
func (s *DocumentStore) ListByProperty(ctx context.Context, propertyID int64) ([]model.Document, error) {
	var docs []model.Document
	err := s.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// UpdateStatus 更新文档状态；失败状态同时记录错误信息。
func (s *DocumentStore) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	updates := map[string]any{"status": status, "error": errMsg}
	if err := s.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

// UpdateIndexed 在索引完成后写入块数、分类与摘要。
func (s *DocumentStore) UpdateIndexed(ctx context.Context, id string, chunkNum int, category, summary string) error {
	updates := map[string]any{
		"status":    model.DocStatusCompleted,
		"error":     "",
		"chunk_num": chunkNum,
		"category":  category,
		"summary":   summary,
	}
	if err := s.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("update document index result: %w", err)
	}
	return nil
}

// Delete 删除文档记录。
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&model.Document{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// StatsByProperty 汇总某小区文档的状态与分类分布。
func (s *DocumentStore) StatsByProperty(ctx context.Context, propertyID int64) (*model.PropertyStats, error) {
	stats := &model.PropertyStats{
		PropertyID: propertyID,
		ByStatus:   make(map[string]int64),
		ByCategory: make(map[string]int64),
	}

	if err := s.db.WithContext(ctx).Model(&model.Document{}).
		Where("property_id = ?", propertyID).
		Count(&stats.Documents).Error; err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byStatus []bucket
	if err := s.db.WithContext(ctx).Model(&model.Document{}).
		Select("status AS key, COUNT(*) AS count").
		Where("property_id = ?", propertyID).
		Group("status").Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("group by status: %w", err)
	}
	for _, b := range byStatus {
		stats.ByStatus[b.Key] = b.Count
	}

	var byCategory []bucket
	if err := s.db.WithContext(ctx).Model(&model.Document{}).
		Select("category AS key, COUNT(*) AS count").
		Where("property_id = ?", propertyID).
		Group("category").Scan(&byCategory).Error; err != nil {
		return nil, fmt.Errorf("group by category: %w", err)
	}
	for _, b := range byCategory {
		stats.ByCategory[b.Key] = b.Count
	}

	return stats, nil
}
