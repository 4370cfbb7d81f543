package biz

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kova-io/estate-x/internal/model"
)

func TestClassify(t *testing.T) {
	chat := &mockChatProvider{reply: "regulation"}
	c := NewClassifier(chat)

	got := c.Classify(context.Background(), "小区消防管理制度", "为规范消防安全管理……")
	assert.Equal(t, model.CategoryRegulation, got)

	require.Len(t, chat.messages, 2)
	// 提示词里列出全部可选分类
	for _, code := range model.Categories {
		assert.Contains(t, chat.messages[0].Content, code)
	}
	assert.Contains(t, chat.messages[1].Content, "标题: 小区消防管理制度")
	assert.Contains(t, chat.messages[1].Content, "内容: 为规范消防安全管理……")

	require.NotNil(t, chat.options.Temperature)
	assert.InDelta(t, 0.3, *chat.options.Temperature, 1e-9)
	require.NotNil(t, chat.options.MaxTokens)
	assert.Equal(t, 20, *chat.options.MaxTokens)
}

func TestClassifyNormalizesOutput(t *testing.T) {
	chat := &mockChatProvider{reply: "  Notice\n"}
	c := NewClassifier(chat)

	assert.Equal(t, model.CategoryNotice, c.Classify(context.Background(), "停水通知", "正文"))
}

func TestClassifyUnknownLabelFallsBackToOther(t *testing.T) {
	chat := &mockChatProvider{reply: "这是一份规章制度文档"}
	c := NewClassifier(chat)

	assert.Equal(t, model.CategoryOther, c.Classify(context.Background(), "标题", "正文"))
}

func TestClassifyTruncatesContent(t *testing.T) {
	chat := &mockChatProvider{reply: "other"}
	c := NewClassifier(chat)

	c.Classify(context.Background(), "标题", strings.Repeat("容", 800))
	require.Len(t, chat.messages, 2)
	// 前缀 "标题: 标题\n内容: " 之外正好 500 字
	assert.Equal(t, 500, strings.Count(chat.messages[1].Content, "容"))
}

func TestClassifyDegradesToOther(t *testing.T) {
	chat := &mockChatProvider{err: errMockLLM}
	c := NewClassifier(chat)

	assert.Equal(t, model.CategoryOther, c.Classify(context.Background(), "标题", "正文"))
}
