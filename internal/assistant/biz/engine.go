package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kova-io/estate-x/internal/assistant/metrics"
	"github.com/kova-io/estate-x/internal/model"
	"github.com/kova-io/estate-x/pkg/llm"
)

// 对话生成参数与降级回复，行为常量不可配置。
const (
	chatTemperature = 0.7
	chatMaxTokens   = 2000

	// chatTopK 对话检索只取前 3 条，比通用检索的默认值更紧，
	// 控制进入提示词的上下文长度。
	chatTopK = 3

	// FallbackReply 是 LLM 调用失败时返回的致歉回复。
	FallbackReply = "抱歉,我现在遇到了一些问题。请稍后再试。"
)

// EngineConfig 对话引擎配置。
type EngineConfig struct {
	// Persona 系统人设提示词。
	Persona string
	// HistoryWindow 重放进提示词的历史消息条数。
	HistoryWindow int
	// ModelName 随回复返回的模型名称，取自对话供应商配置。
	ModelName string
}

// ChatResult 是一次对话的结果。失败时 Degraded 为 true，
// 外部字段仍保持完整：致歉回复、模型名、零 token、空来源。
type ChatResult struct {
	Content  string
	Model    string
	Tokens   int
	Sources  []model.ChunkSource
	Degraded bool
}

// Engine 组合检索与生成，实现带资料引用的对话。
type Engine struct {
	chat    llm.ChatProvider
	indexer *Indexer
	cfg     EngineConfig
}

// NewEngine 创建对话引擎。
func NewEngine(chat llm.ChatProvider, indexer *Indexer, cfg EngineConfig) *Engine {
	return &Engine{chat: chat, indexer: indexer, cfg: cfg}
}

// Chat 处理一轮对话：检索资料、拼装提示词、调用 LLM。
// history 只有 user/assistant 角色会被重放，超出窗口的旧消息被丢弃。
// LLM 失败时降级为致歉回复，不向调用方返回错误。
func (e *Engine) Chat(ctx context.Context, propertyID int64, userMessage string, history []model.Message) *ChatResult {
	m := metrics.Get()

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: e.cfg.Persona},
	}

	sources := e.indexer.Search(ctx, propertyID, userMessage, chatTopK)
	if len(sources) > 0 {
		messages = append(messages, llm.Message{
			Role:    llm.RoleSystem,
			Content: fmt.Sprintf("以下是相关的物业文档信息:\n\n%s\n\n请基于这些信息回答用户的问题。", formatContext(sources)),
		})
	}

	messages = append(messages, replayHistory(history, e.cfg.HistoryWindow)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})

	resp, err := e.chat.Chat(ctx, messages,
		llm.WithTemperature(chatTemperature),
		llm.WithMaxTokens(chatMaxTokens))
	if err != nil {
		logger.Errorw("对话生成失败，返回致歉回复", "property_id", propertyID, "error", err)
		m.IncChat(true)
		return &ChatResult{
			Content:  FallbackReply,
			Model:    e.cfg.ModelName,
			Tokens:   0,
			Sources:  []model.ChunkSource{},
			Degraded: true,
		}
	}

	m.IncChat(false)
	m.AddTokens(resp.Usage.TotalTokens)
	return &ChatResult{
		Content: resp.Content,
		Model:   e.cfg.ModelName,
		Tokens:  resp.Usage.TotalTokens,
		Sources: sources,
	}
}

// formatContext 把检索到的块拼成带编号的上下文。
func formatContext(sources []model.ChunkSource) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = fmt.Sprintf("文档%d: %s\n内容: %s\n", i+1, s.Title, s.Content)
	}
	return strings.Join(parts, "\n")
}

// replayHistory 取最近 window 条消息，只保留 user/assistant 角色。
func replayHistory(history []model.Message, window int) []llm.Message {
	if window <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}

	out := make([]llm.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case model.MessageRoleUser:
			out = append(out, llm.Message{Role: llm.RoleUser, Content: msg.Content})
		case model.MessageRoleAssistant:
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: msg.Content})
		}
	}
	return out
}
