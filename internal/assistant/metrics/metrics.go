// Package metrics 提供助手服务的业务指标收集。
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// AssistantMetrics 助手服务业务指标。
type AssistantMetrics struct {
	// 对话指标
	chatsTotal    uint64 // 总对话次数
	chatsDegraded uint64 // LLM 失败降级为致歉回复的次数
	tokensTotal   uint64 // 累计消耗 token 数

	// 检索指标
	searchesTotal    uint64 // 总检索次数
	searchesDegraded uint64 // 检索失败降级为空来源的次数
	cacheHits        uint64 // 检索缓存命中次数

	// 索引指标
	documentsIndexed uint64 // 成功索引的文档数
	documentsFailed  uint64 // 索引失败的文档数
	chunksUpserted   uint64 // 写入的分块数

	startTime time.Time
}

var (
	global *AssistantMetrics
	once   sync.Once
)

// Get 获取全局指标实例。
func Get() *AssistantMetrics {
	once.Do(func() {
		global = &AssistantMetrics{startTime: time.Now()}
	})
	return global
}

// IncChat 记录一次对话；degraded 表示本次返回了致歉回复。
func (m *AssistantMetrics) IncChat(degraded bool) {
	atomic.AddUint64(&m.chatsTotal, 1)
	if degraded {
		atomic.AddUint64(&m.chatsDegraded, 1)
	}
}

// AddTokens 累加消耗的 token 数。
func (m *AssistantMetrics) AddTokens(n int) {
	if n > 0 {
		atomic.AddUint64(&m.tokensTotal, uint64(n))
	}
}

// IncSearch 记录一次检索；degraded 表示检索失败降级为空结果。
func (m *AssistantMetrics) IncSearch(degraded bool) {
	atomic.AddUint64(&m.searchesTotal, 1)
	if degraded {
		atomic.AddUint64(&m.searchesDegraded, 1)
	}
}

// IncCacheHit 记录一次检索缓存命中。
func (m *AssistantMetrics) IncCacheHit() {
	atomic.AddUint64(&m.cacheHits, 1)
}

// IncDocumentIndexed 记录一次文档索引结果。
func (m *AssistantMetrics) IncDocumentIndexed(ok bool, chunks int) {
	if ok {
		atomic.AddUint64(&m.documentsIndexed, 1)
		atomic.AddUint64(&m.chunksUpserted, uint64(chunks))
	} else {
		atomic.AddUint64(&m.documentsFailed, 1)
	}
}

// Snapshot 导出当前指标值。
func (m *AssistantMetrics) Snapshot() map[string]any {
	return map[string]any{
		"uptime_seconds":    int64(time.Since(m.startTime).Seconds()),
		"chats_total":       atomic.LoadUint64(&m.chatsTotal),
		"chats_degraded":    atomic.LoadUint64(&m.chatsDegraded),
		"tokens_total":      atomic.LoadUint64(&m.tokensTotal),
		"searches_total":    atomic.LoadUint64(&m.searchesTotal),
		"searches_degraded": atomic.LoadUint64(&m.searchesDegraded),
		"cache_hits":        atomic.LoadUint64(&m.cacheHits),
		"documents_indexed": atomic.LoadUint64(&m.documentsIndexed),
		"documents_failed":  atomic.LoadUint64(&m.documentsFailed),
		"chunks_upserted":   atomic.LoadUint64(&m.chunksUpserted),
	}
}
