package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoin(t *testing.T) {
	assert.Equal(t, "", Join())
	assert.Equal(t, "", Join(""))
	assert.Equal(t, "milvus.", Join("milvus"))
	assert.Equal(t, "assistant.milvus.", Join("assistant", "milvus"))

	// 前缀自带的点不产生双点
	assert.Equal(t, "embedding.", Join("embedding."))
	assert.Equal(t, "embedding.llm.", Join("embedding.", "llm."))
}
