package biz

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kova-io/estate-x/internal/model"
	"github.com/kova-io/estate-x/pkg/llm"
)

const (
	testPersona   = "你是一个物业管理助手。"
	testChatModel = "qwen2.5:7b"
)

func newTestEngine(chat *mockChatProvider, embedder *mockEmbeddingProvider) *Engine {
	ix, _ := newTestIndexer(embedder)
	return NewEngine(chat, ix, EngineConfig{
		Persona:       testPersona,
		HistoryWindow: 10,
		ModelName:     testChatModel,
	})
}

func TestChatPromptAssembly(t *testing.T) {
	chat := &mockChatProvider{reply: "每月保养一次。", tokens: 42}
	embedder := &mockEmbeddingProvider{dim: 4}
	engine := newTestEngine(chat, embedder)
	ctx := context.Background()

	// 先入库一份文档，让检索能命中
	_, err := engine.indexer.IndexDocument(ctx, 1, "doc-1", "电梯维保", strings.Repeat("梯", 600))
	require.NoError(t, err)

	result := engine.Chat(ctx, 1, "电梯多久保养一次？", nil)
	require.False(t, result.Degraded)
	assert.Equal(t, "每月保养一次。", result.Content)
	assert.Equal(t, testChatModel, result.Model)
	assert.Equal(t, 42, result.Tokens)
	assert.NotEmpty(t, result.Sources)

	// 人设 → 资料上下文 → 用户消息
	require.Len(t, chat.messages, 3)
	assert.Equal(t, llm.RoleSystem, chat.messages[0].Role)
	assert.Equal(t, testPersona, chat.messages[0].Content)
	assert.Equal(t, llm.RoleSystem, chat.messages[1].Role)
	assert.Contains(t, chat.messages[1].Content, "以下是相关的物业文档信息:")
	assert.Contains(t, chat.messages[1].Content, "文档1: 电梯维保")
	assert.Contains(t, chat.messages[1].Content, "请基于这些信息回答用户的问题。")
	assert.Equal(t, llm.RoleUser, chat.messages[2].Role)
	assert.Equal(t, "电梯多久保养一次？", chat.messages[2].Content)

	// 对话生成参数
	require.NotNil(t, chat.options.Temperature)
	assert.InDelta(t, 0.7, *chat.options.Temperature, 1e-9)
	require.NotNil(t, chat.options.MaxTokens)
	assert.Equal(t, 2000, *chat.options.MaxTokens)
}

func TestChatNoSourcesSkipsContext(t *testing.T) {
	chat := &mockChatProvider{reply: "您好！"}
	embedder := &mockEmbeddingProvider{dim: 4}
	engine := newTestEngine(chat, embedder)

	// 空索引检索不到资料，上下文系统消息不应出现
	result := engine.Chat(context.Background(), 1, "你好", nil)
	require.False(t, result.Degraded)
	assert.Empty(t, result.Sources)

	require.Len(t, chat.messages, 2)
	assert.Equal(t, testPersona, chat.messages[0].Content)
	assert.Equal(t, llm.RoleUser, chat.messages[1].Role)
}

func TestChatHistoryWindow(t *testing.T) {
	chat := &mockChatProvider{reply: "好的。"}
	embedder := &mockEmbeddingProvider{dim: 4}
	engine := newTestEngine(chat, embedder)

	// 12 条历史只重放最近 10 条
	history := make([]model.Message, 0, 12)
	for i := 0; i < 12; i++ {
		role := model.MessageRoleUser
		if i%2 == 1 {
			role = model.MessageRoleAssistant
		}
		history = append(history, model.Message{Role: role, Content: fmt.Sprintf("消息%d", i)})
	}

	engine.Chat(context.Background(), 1, "继续", history)

	// 人设 + 10 条历史 + 当前用户消息
	require.Len(t, chat.messages, 12)
	assert.Equal(t, "消息2", chat.messages[1].Content)
	assert.Equal(t, "消息11", chat.messages[10].Content)
	assert.Equal(t, "继续", chat.messages[11].Content)
}

func TestChatHistorySkipsOtherRoles(t *testing.T) {
	chat := &mockChatProvider{reply: "好的。"}
	embedder := &mockEmbeddingProvider{dim: 4}
	engine := newTestEngine(chat, embedder)

	history := []model.Message{
		{Role: "system", Content: "不应重放"},
		{Role: model.MessageRoleUser, Content: "上一个问题"},
		{Role: model.MessageRoleAssistant, Content: "上一个回答"},
	}

	engine.Chat(context.Background(), 1, "追问", history)

	require.Len(t, chat.messages, 4)
	assert.Equal(t, "上一个问题", chat.messages[1].Content)
	assert.Equal(t, "上一个回答", chat.messages[2].Content)
}

func TestChatFallbackOnProviderError(t *testing.T) {
	chat := &mockChatProvider{err: errMockLLM}
	embedder := &mockEmbeddingProvider{dim: 4}
	engine := newTestEngine(chat, embedder)

	result := engine.Chat(context.Background(), 1, "你好", nil)
	assert.True(t, result.Degraded)
	assert.Equal(t, FallbackReply, result.Content)
	// 降级回复同样带模型名，外部结构保持完整
	assert.Equal(t, testChatModel, result.Model)
	assert.Zero(t, result.Tokens)
	require.NotNil(t, result.Sources)
	assert.Empty(t, result.Sources)
}

func TestChatRetrievalLimit(t *testing.T) {
	chat := &mockChatProvider{reply: "好的。"}
	embedder := &mockEmbeddingProvider{dim: 4}
	engine := newTestEngine(chat, embedder)
	ctx := context.Background()

	// 六份单块文档向量相同，全部过阈值
	for i := 0; i < 6; i++ {
		_, err := engine.indexer.IndexDocument(ctx, 1, fmt.Sprintf("doc-%d", i), fmt.Sprintf("通知%d", i), strings.Repeat("知", 100))
		require.NoError(t, err)
	}

	// 对话检索最多取 3 条，比通用检索的默认值更紧
	result := engine.Chat(ctx, 1, "有什么通知", nil)
	require.False(t, result.Degraded)
	assert.Len(t, result.Sources, 3)

	require.Len(t, chat.messages, 3)
	assert.Contains(t, chat.messages[1].Content, "文档3:")
	assert.NotContains(t, chat.messages[1].Content, "文档4:")
}
