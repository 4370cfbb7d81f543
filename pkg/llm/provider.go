// Package llm 提供统一的 LLM 供应商抽象层。
// Embedding 与 Chat 可以配置不同供应商的模型。
package llm

import (
	"context"
	"fmt"
	"sync"
)

// EmbeddingProvider 定义 Embedding 供应商接口。
type EmbeddingProvider interface {
	// Embed 为多个文本生成向量嵌入。
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle 为单个文本生成向量嵌入。
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Name 返回供应商名称。
	Name() string
}

// ChatProvider 定义 Chat 供应商接口。
type ChatProvider interface {
	// Chat 进行多轮对话，opts 覆盖单次调用的生成参数。
	Chat(ctx context.Context, messages []Message, opts ...ChatOption) (*GenerateResponse, error)

	// Name 返回供应商名称。
	Name() string
}

// Message 表示对话中的一条消息。
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role 定义消息角色。
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// GenerateResponse 是一次生成调用的结果。
type GenerateResponse struct {
	Content string     `json:"content"`
	Usage   TokenUsage `json:"usage"`
}

// TokenUsage 记录一次调用消耗的 token 数。
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatOptions 是单次调用的生成参数。零值字段使用供应商默认值。
type ChatOptions struct {
	Temperature *float64
	MaxTokens   *int
}

// ChatOption 修改 ChatOptions。
type ChatOption func(*ChatOptions)

// WithTemperature 设置采样温度。
func WithTemperature(t float64) ChatOption {
	return func(o *ChatOptions) { o.Temperature = &t }
}

// WithMaxTokens 设置生成上限。
func WithMaxTokens(n int) ChatOption {
	return func(o *ChatOptions) { o.MaxTokens = &n }
}

// ApplyChatOptions 聚合可变参数，供应商实现据此构造请求。
func ApplyChatOptions(opts []ChatOption) ChatOptions {
	var o ChatOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Provider 同时支持 Embedding 和 Chat 的完整供应商。
type Provider interface {
	EmbeddingProvider
	ChatProvider
}

// ProviderFactory 供应商工厂函数类型。
type ProviderFactory func(config map[string]any) (Provider, error)

var registry = struct {
	mu        sync.RWMutex
	providers map[string]ProviderFactory
}{
	providers: make(map[string]ProviderFactory),
}

// RegisterProvider 注册供应商工厂，通常在驱动包的 init 中调用。
func RegisterProvider(name string, factory ProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.providers[name] = factory
}

// NewProvider 根据名称创建完整供应商实例。
func NewProvider(name string, config map[string]any) (Provider, error) {
	registry.mu.RLock()
	factory, ok := registry.providers[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	return factory(config)
}

// NewEmbeddingProvider 根据名称创建 Embedding 供应商实例。
func NewEmbeddingProvider(name string, config map[string]any) (EmbeddingProvider, error) {
	return NewProvider(name, config)
}

// NewChatProvider 根据名称创建 Chat 供应商实例。
func NewChatProvider(name string, config map[string]any) (ChatProvider, error) {
	return NewProvider(name, config)
}

// ListProviders 列出所有已注册的供应商名称。
func ListProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.providers))
	for name := range registry.providers {
		names = append(names, name)
	}
	return names
}
