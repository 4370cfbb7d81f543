package biz

import (
	"context"
	"errors"

	"github.com/kova-io/estate-x/pkg/llm"
)

var errMockLLM = errors.New("mock llm unavailable")

// mockChatProvider 记录收到的消息，返回预设的回复或错误。
type mockChatProvider struct {
	reply    string
	tokens   int
	err      error
	messages []llm.Message
	options  llm.ChatOptions
	calls    int
}

func (m *mockChatProvider) Chat(_ context.Context, messages []llm.Message, opts ...llm.ChatOption) (*llm.GenerateResponse, error) {
	m.calls++
	m.messages = messages
	m.options = llm.ApplyChatOptions(opts)
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{
		Content: m.reply,
		Usage:   llm.TokenUsage{TotalTokens: m.tokens},
	}, nil
}

func (m *mockChatProvider) Name() string { return "mock" }

// mockEmbeddingProvider 为所有文本返回同一个单位向量，
// 余弦相似度恒为 1，便于命中检索阈值。
type mockEmbeddingProvider struct {
	dim  int
	err  error
	seen []string
}

func (m *mockEmbeddingProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.seen = append(m.seen, texts...)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.unitVector()
	}
	return out, nil
}

func (m *mockEmbeddingProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbeddingProvider) Name() string { return "mock" }

func (m *mockEmbeddingProvider) unitVector() []float32 {
	v := make([]float32, m.dim)
	v[0] = 1
	return v
}

var (
	_ llm.ChatProvider      = (*mockChatProvider)(nil)
	_ llm.EmbeddingProvider = (*mockEmbeddingProvider)(nil)
)
