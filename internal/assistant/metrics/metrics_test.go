package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := &AssistantMetrics{}

	m.IncChat(false)
	m.IncChat(true)
	m.AddTokens(100)
	m.AddTokens(-5) // 忽略负数
	m.IncSearch(false)
	m.IncSearch(true)
	m.IncCacheHit()
	m.IncDocumentIndexed(true, 8)
	m.IncDocumentIndexed(false, 0)

	snap := m.Snapshot()
	assert.EqualValues(t, uint64(2), snap["chats_total"])
	assert.EqualValues(t, uint64(1), snap["chats_degraded"])
	assert.EqualValues(t, uint64(100), snap["tokens_total"])
	assert.EqualValues(t, uint64(2), snap["searches_total"])
	assert.EqualValues(t, uint64(1), snap["searches_degraded"])
	assert.EqualValues(t, uint64(1), snap["cache_hits"])
	assert.EqualValues(t, uint64(1), snap["documents_indexed"])
	assert.EqualValues(t, uint64(1), snap["documents_failed"])
	assert.EqualValues(t, uint64(8), snap["chunks_upserted"])
}

func TestMetricsConcurrentAccess(t *testing.T) {
	m := &AssistantMetrics{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncChat(false)
			m.AddTokens(10)
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.EqualValues(t, uint64(50), snap["chats_total"])
	assert.EqualValues(t, uint64(500), snap["tokens_total"])
}

func TestGetReturnsSingleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}
