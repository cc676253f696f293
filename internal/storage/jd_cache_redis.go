package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-ranker/internal/config"
	"resume-ranker/internal/constants"
	"resume-ranker/internal/logger"
	"resume-ranker/internal/tracing"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisJDCache Redis后端的JD向量缓存
// 带TTL；Redis故障只记日志，调用方回退到重新编码
type RedisJDCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisJDCache 建立Redis连接并启用otel追踪钩子
func NewRedisJDCache(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*RedisJDCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("启用Redis追踪钩子失败: %w", err)
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	if ttl <= 0 {
		ttl = constants.DefaultJDCacheTTL
	}

	return &RedisJDCache{
		client: client,
		ttl:    ttl,
		logger: logger.Logger.With().Str("component", "jd_cache_redis").Logger(),
	}, nil
}

// Get 实现 JDVectorCache
func (c *RedisJDCache) Get(ctx context.Context, key string) ([]float64, bool) {
	data, err := c.client.Get(ctx, constants.JDVectorCachePrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).
				Str("key", tracing.TruncateString(key, tracing.MaxRedisLength)).
				Msg("读取JD向量缓存失败")
		}
		return nil, false
	}

	var vector []float64
	if err := json.Unmarshal(data, &vector); err != nil {
		c.logger.Warn().Err(err).Msg("反序列化JD向量失败，视为未命中")
		return nil, false
	}
	return vector, true
}

// Put 实现 JDVectorCache
func (c *RedisJDCache) Put(ctx context.Context, key string, vector []float64) {
	data, err := json.Marshal(vector)
	if err != nil {
		c.logger.Warn().Err(err).Msg("序列化JD向量失败")
		return
	}
	if err := c.client.Set(ctx, constants.JDVectorCachePrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).
			Str("key", tracing.TruncateString(key, tracing.MaxRedisLength)).
			Msg("写入JD向量缓存失败")
	}
}

// Close 关闭Redis连接
func (c *RedisJDCache) Close() error {
	return c.client.Close()
}
