package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kova-io/estate-x/internal/model"
)

// ConversationStore 管理会话与消息。
type ConversationStore struct {
	db *gorm.DB
}

// NewConversationStore 创建会话存储。
func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Create 新建会话。
func (s *ConversationStore) Create(ctx context.Context, conv *model.Conversation) error {
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	return nil
}

// Get 按 ID 查询会话。
func (s *ConversationStore) Get(ctx context.Context, id string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := s.db.WithContext(ctx).First(&conv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListByProperty 返回某小区的会话，按更新时间倒序。
func (s *ConversationStore) ListByProperty(ctx context.Context, propertyID int64) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := s.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

// Delete 删除会话及其全部消息。
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Message{}, "conversation_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := tx.Delete(&model.Conversation{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete conversation: %w", err)
		}
		return nil
	})
}

// AppendMessage 追加一条消息并刷新会话更新时间。
func (s *ConversationStore) AppendMessage(ctx context.Context, msg *model.Message) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("append message: %w", err)
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", msg.CreatedAt).Error
	})
}

// ListMessages 返回会话全部消息，按时间升序。
func (s *ConversationStore) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	var msgs []model.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// RecentMessages 返回会话最近 limit 条消息，按时间升序。
// 用于构造提示词的历史窗口。
func (s *ConversationStore) RecentMessages(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	var msgs []model.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}

	// 倒序取出后翻转为时间升序
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
