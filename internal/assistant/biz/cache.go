package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	"github.com/redis/go-redis/v9"

	"github.com/kova-io/estate-x/internal/model"
	"github.com/kova-io/estate-x/pkg/utils/json"
)

// SearchCacheConfig 检索缓存配置。
type SearchCacheConfig struct {
	Enabled   bool
	TTL       time.Duration
	KeyPrefix string
}

// defaultSearchCacheConfig 缓存默认禁用。
func defaultSearchCacheConfig() *SearchCacheConfig {
	return &SearchCacheConfig{
		Enabled:   false,
		TTL:       time.Hour,
		KeyPrefix: "assistant:search:",
	}
}

// SearchCache 用 Redis 缓存检索结果。缓存故障只记日志，
// 不影响检索主流程。
type SearchCache struct {
	redis  *redis.Client
	config *SearchCacheConfig
}

// NewSearchCache 创建检索缓存。
func NewSearchCache(client *redis.Client, config *SearchCacheConfig) *SearchCache {
	if config == nil {
		config = defaultSearchCacheConfig()
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "assistant:search:"
	}
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	return &SearchCache{redis: client, config: config}
}

func (c *SearchCache) enabled() bool {
	return c != nil && c.config.Enabled && c.redis != nil
}

// key 按租户分段，便于整租户失效。limit 参与键值，
// 对话检索与通用检索取数不同，不能互相命中。
func (c *SearchCache) key(propertyID int64, limit int, query string) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%s%d:%d:%s", c.config.KeyPrefix, propertyID, limit, hex.EncodeToString(sum[:]))
}

// Get 读取缓存的检索结果。
func (c *SearchCache) Get(ctx context.Context, propertyID int64, limit int, query string) ([]model.ChunkSource, bool) {
	if !c.enabled() {
		return nil, false
	}

	data, err := c.redis.Get(ctx, c.key(propertyID, limit, query)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warnw("检索缓存读取失败", "error", err)
		}
		return nil, false
	}

	var sources []model.ChunkSource
	if err := json.Unmarshal(data, &sources); err != nil {
		logger.Warnw("检索缓存反序列化失败", "error", err)
		return nil, false
	}
	return sources, true
}

// Set 写入检索结果。
func (c *SearchCache) Set(ctx context.Context, propertyID int64, limit int, query string, sources []model.ChunkSource) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(sources)
	if err != nil {
		logger.Warnw("检索缓存序列化失败", "error", err)
		return
	}
	if err := c.redis.Set(ctx, c.key(propertyID, limit, query), data, c.config.TTL).Err(); err != nil {
		logger.Warnw("检索缓存写入失败", "error", err)
	}
}

// InvalidateProperty 清空某租户的全部缓存。文档增删后调用，
// 避免返回过期内容。
func (c *SearchCache) InvalidateProperty(ctx context.Context, propertyID int64) {
	if !c.enabled() {
		return
	}

	pattern := fmt.Sprintf("%s%d:*", c.config.KeyPrefix, propertyID)
	iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("检索缓存删除失败", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warnw("检索缓存扫描失败", "error", err)
	}
}
