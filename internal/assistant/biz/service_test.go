package biz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kova-io/estate-x/internal/assistant/extract"
	"github.com/kova-io/estate-x/internal/assistant/store"
	"github.com/kova-io/estate-x/internal/model"
)

func newTestService(t *testing.T, chat *mockChatProvider) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Document{}, &model.Conversation{}, &model.Message{}))

	files, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	extractor := extract.New(extract.Options{})
	embedder := &mockEmbeddingProvider{dim: 4}
	ix, _ := newTestIndexer(embedder)

	return NewService(
		store.NewDocumentStore(db),
		store.NewConversationStore(db),
		files,
		extractor,
		ix,
		NewEngine(chat, ix, EngineConfig{Persona: testPersona, HistoryWindow: 10, ModelName: testChatModel}),
		NewSummarizer(chat),
		NewClassifier(chat),
		10,
	)
}

// waitIndexed 等待后台入库结束。
func waitIndexed(t *testing.T, svc *Service, documentID string) *model.Document {
	t.Helper()
	var doc *model.Document
	require.Eventually(t, func() bool {
		var err error
		doc, err = svc.GetDocument(context.Background(), documentID)
		if err != nil {
			return false
		}
		return doc.Status == model.DocStatusCompleted || doc.Status == model.DocStatusFailed
	}, 5*time.Second, 20*time.Millisecond)
	return doc
}

func TestChatCreatesConversation(t *testing.T) {
	chat := &mockChatProvider{reply: "您好，有什么可以帮您？", tokens: 18}
	svc := newTestService(t, chat)
	ctx := context.Background()

	resp, err := svc.Chat(ctx, &ChatRequest{PropertyID: 1, Message: "你好"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ConversationID)
	assert.Equal(t, "您好，有什么可以帮您？", resp.Answer)
	assert.Equal(t, testChatModel, resp.Model)
	assert.Equal(t, 18, resp.Tokens)

	// 用户与助手消息都已持久化
	msgs, err := svc.ListMessages(ctx, resp.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.MessageRoleUser, msgs[0].Role)
	assert.Equal(t, "你好", msgs[0].Content)
	assert.Equal(t, model.MessageRoleAssistant, msgs[1].Role)
	assert.Equal(t, 18, msgs[1].Tokens)

	convs, err := svc.ListConversations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "你好", convs[0].Title)
}

func TestChatContinuesConversation(t *testing.T) {
	chat := &mockChatProvider{reply: "好的。"}
	svc := newTestService(t, chat)
	ctx := context.Background()

	first, err := svc.Chat(ctx, &ChatRequest{PropertyID: 1, Message: "第一个问题"})
	require.NoError(t, err)

	second, err := svc.Chat(ctx, &ChatRequest{
		PropertyID:     1,
		ConversationID: first.ConversationID,
		Message:        "追问",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	// 第二轮提示词带上了第一轮历史
	var contents []string
	for _, m := range chat.messages {
		contents = append(contents, m.Content)
	}
	assert.Contains(t, contents, "第一个问题")

	msgs, err := svc.ListMessages(ctx, first.ConversationID)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
}

func TestChatRejectsForeignConversation(t *testing.T) {
	chat := &mockChatProvider{reply: "好的。"}
	svc := newTestService(t, chat)
	ctx := context.Background()

	resp, err := svc.Chat(ctx, &ChatRequest{PropertyID: 1, Message: "你好"})
	require.NoError(t, err)

	// 会话属于小区 1，小区 2 不能续聊
	_, err = svc.Chat(ctx, &ChatRequest{
		PropertyID:     2,
		ConversationID: resp.ConversationID,
		Message:        "越权",
	})
	assert.Error(t, err)
}

func TestUploadDocumentLifecycle(t *testing.T) {
	chat := &mockChatProvider{reply: "notice"}
	svc := newTestService(t, chat)
	ctx := context.Background()

	content := strings.Repeat("停水通知正文。", 120)
	doc, err := svc.UploadDocument(ctx, 1, "停水通知", "notice.txt", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, model.DocStatusPending, doc.Status)

	indexed := waitIndexed(t, svc, doc.ID)
	assert.Equal(t, model.DocStatusCompleted, indexed.Status)
	assert.Greater(t, indexed.ChunkNum, 0)
	assert.Equal(t, model.CategoryNotice, indexed.Category)
	assert.NotEmpty(t, indexed.Summary)

	stats, err := svc.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Documents)
	assert.Equal(t, int64(indexed.ChunkNum), stats.IndexedChunks)
}

func TestUploadRejectsUnsupportedKind(t *testing.T) {
	chat := &mockChatProvider{}
	svc := newTestService(t, chat)

	_, err := svc.UploadDocument(context.Background(), 1, "可执行文件", "tool.exe", 4, strings.NewReader("MZ.."))
	assert.ErrorIs(t, err, extract.ErrUnsupportedKind)
}

func TestDeleteDocument(t *testing.T) {
	chat := &mockChatProvider{reply: "other"}
	svc := newTestService(t, chat)
	ctx := context.Background()

	doc, err := svc.UploadDocument(ctx, 1, "临时文档", "tmp.txt", 12, strings.NewReader("临时内容临时内容"))
	require.NoError(t, err)
	waitIndexed(t, svc, doc.ID)

	require.NoError(t, svc.DeleteDocument(ctx, doc.ID))

	_, err = svc.GetDocument(ctx, doc.ID)
	assert.Error(t, err)

	// 向量块一并清除
	stats, err := svc.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, stats.IndexedChunks)
}

func TestReindexDocument(t *testing.T) {
	chat := &mockChatProvider{reply: "other"}
	svc := newTestService(t, chat)
	ctx := context.Background()

	doc, err := svc.UploadDocument(ctx, 1, "手册", "manual.txt", 10, strings.NewReader("手册内容"))
	require.NoError(t, err)
	first := waitIndexed(t, svc, doc.ID)
	require.Equal(t, model.DocStatusCompleted, first.Status)

	again, err := svc.ReindexDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocStatusPending, again.Status)

	second := waitIndexed(t, svc, doc.ID)
	assert.Equal(t, model.DocStatusCompleted, second.Status)
	assert.Equal(t, first.ChunkNum, second.ChunkNum)
}
