package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/kova-io/estate-x/internal/pkg/textutil"
	"github.com/kova-io/estate-x/pkg/llm"
)

const (
	summaryInputLimit  = 4000
	summaryTemperature = 0.5
	summaryMaxTokens   = 300

	summarySystemPrompt = "你是一个专业的文档摘要助手。请为以下文本生成简洁的摘要,突出关键信息。"
)

// Summarizer 生成文档摘要。
type Summarizer struct {
	chat llm.ChatProvider
}

// NewSummarizer 创建摘要器。
func NewSummarizer(chat llm.ChatProvider) *Summarizer {
	return &Summarizer{chat: chat}
}

// Summarize 生成文本摘要。输入截断到 4000 字，
// 任何失败降级为空字符串。
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	if text == "" {
		return ""
	}

	resp, err := s.chat.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: summarySystemPrompt},
		{Role: llm.RoleUser, Content: textutil.TruncateRunes(text, summaryInputLimit)},
	},
		llm.WithTemperature(summaryTemperature),
		llm.WithMaxTokens(summaryMaxTokens))
	if err != nil {
		logger.Warnw("生成摘要失败", "error", err)
		return ""
	}
	return resp.Content
}
