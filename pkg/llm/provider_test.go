package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct{ name string }

func (p *fakeProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (p *fakeProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (p *fakeProvider) Chat(ctx context.Context, messages []Message, opts ...ChatOption) (*GenerateResponse, error) {
	return &GenerateResponse{Content: "ok"}, nil
}

func (p *fakeProvider) Name() string { return p.name }

func TestRegistry(t *testing.T) {
	RegisterProvider("fake", func(config map[string]any) (Provider, error) {
		return &fakeProvider{name: "fake"}, nil
	})

	p, err := NewProvider("fake", nil)
	require.NoError(t, err)
	assert.Equal(t, "fake", p.Name())

	ep, err := NewEmbeddingProvider("fake", nil)
	require.NoError(t, err)
	vec, err := ep.EmbedSingle(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 3)

	_, err = NewChatProvider("missing", nil)
	assert.Error(t, err)

	assert.Contains(t, ListProviders(), "fake")
}

func TestApplyChatOptions(t *testing.T) {
	o := ApplyChatOptions(nil)
	assert.Nil(t, o.Temperature)
	assert.Nil(t, o.MaxTokens)

	o = ApplyChatOptions([]ChatOption{WithTemperature(0.7), WithMaxTokens(2000)})
	require.NotNil(t, o.Temperature)
	require.NotNil(t, o.MaxTokens)
	assert.Equal(t, 0.7, *o.Temperature)
	assert.Equal(t, 2000, *o.MaxTokens)
}
