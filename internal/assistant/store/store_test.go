package store

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kova-io/estate-x/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Document{}, &model.Conversation{}, &model.Message{}))
	return db
}

func TestDocumentStoreLifecycle(t *testing.T) {
	db := setupTestDB(t)
	s := NewDocumentStore(db)
	ctx := context.Background()

	doc := &model.Document{
		ID:         "doc-1",
		PropertyID: 1,
		Title:      "小区供水管道维修通知",
		FileName:   "notice.pdf",
		Status:     model.DocStatusPending,
		Category:   model.CategoryOther,
	}
	require.NoError(t, s.Create(ctx, doc))

	got, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "小区供水管道维修通知", got.Title)
	assert.Equal(t, model.DocStatusPending, got.Status)

	require.NoError(t, s.UpdateStatus(ctx, "doc-1", model.DocStatusProcessing, ""))
	require.NoError(t, s.UpdateIndexed(ctx, "doc-1", 12, model.CategoryNotice, "管道维修安排摘要"))

	got, err = s.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, model.DocStatusCompleted, got.Status)
	assert.Equal(t, 12, got.ChunkNum)
	assert.Equal(t, model.CategoryNotice, got.Category)
	assert.Equal(t, "管道维修安排摘要", got.Summary)

	require.NoError(t, s.Delete(ctx, "doc-1"))
	_, err = s.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDocumentStoreFailedKeepsError(t *testing.T) {
	db := setupTestDB(t)
	s := NewDocumentStore(db)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.Document{
		ID: "doc-2", PropertyID: 1, Title: "损坏的文件", Status: model.DocStatusPending,
	}))
	require.NoError(t, s.UpdateStatus(ctx, "doc-2", model.DocStatusFailed, "无法解析 PDF"))

	got, err := s.Get(ctx, "doc-2")
	require.NoError(t, err)
	assert.Equal(t, model.DocStatusFailed, got.Status)
	assert.Equal(t, "无法解析 PDF", got.Error)
}

func TestDocumentStoreStats(t *testing.T) {
	db := setupTestDB(t)
	s := NewDocumentStore(db)
	ctx := context.Background()

	docs := []*model.Document{
		{ID: "s-1", PropertyID: 7, Title: "a", Status: model.DocStatusCompleted, Category: model.CategoryNotice},
		{ID: "s-2", PropertyID: 7, Title: "b", Status: model.DocStatusCompleted, Category: model.CategoryRegulation},
		{ID: "s-3", PropertyID: 7, Title: "c", Status: model.DocStatusFailed, Category: model.CategoryNotice},
		{ID: "s-4", PropertyID: 8, Title: "d", Status: model.DocStatusCompleted, Category: model.CategoryOther},
	}
	for _, d := range docs {
		require.NoError(t, s.Create(ctx, d))
	}

	stats, err := s.StatsByProperty(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Documents)
	assert.EqualValues(t, 2, stats.ByStatus[model.DocStatusCompleted])
	assert.EqualValues(t, 1, stats.ByStatus[model.DocStatusFailed])
	assert.EqualValues(t, 2, stats.ByCategory[model.CategoryNotice])
}

func TestConversationStoreMessages(t *testing.T) {
	db := setupTestDB(t)
	s := NewConversationStore(db)
	ctx := context.Background()

	conv := &model.Conversation{ID: "conv-1", PropertyID: 1, Title: "咨询物业费"}
	require.NoError(t, s.Create(ctx, conv))

	for i := 0; i < 12; i++ {
		role := model.MessageRoleUser
		if i%2 == 1 {
			role = model.MessageRoleAssistant
		}
		require.NoError(t, s.AppendMessage(ctx, &model.Message{
			ConversationID: "conv-1",
			Role:           role,
			Content:        "消息",
		}))
	}

	all, err := s.ListMessages(ctx, "conv-1")
	require.NoError(t, err)
	assert.Len(t, all, 12)

	// 最近 10 条，按时间升序
	recent, err := s.RecentMessages(ctx, "conv-1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, all[2].ID, recent[0].ID)
	assert.Equal(t, all[11].ID, recent[9].ID)

	require.NoError(t, s.Delete(ctx, "conv-1"))
	remaining, err := s.ListMessages(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestConversationStoreListByProperty(t *testing.T) {
	db := setupTestDB(t)
	s := NewConversationStore(db)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.Conversation{ID: "c-1", PropertyID: 3}))
	require.NoError(t, s.Create(ctx, &model.Conversation{ID: "c-2", PropertyID: 3}))
	require.NoError(t, s.Create(ctx, &model.Conversation{ID: "c-3", PropertyID: 4}))

	convs, err := s.ListByProperty(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, convs, 2)
}
