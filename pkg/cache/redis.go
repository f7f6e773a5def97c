package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"TrendAgent/pkg/config"

	"github.com/redis/go-redis/v9"
)

// Cache Redis缓存/队列客户端
type Cache struct {
	rdb *redis.Client
}

// ParseURL 解析 redis:// 连接串
func ParseURL(url string) (*redis.Options, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("解析Redis地址失败: %w", err)
	}
	return opts, nil
}

// New 根据配置创建客户端，不会立即建立连接
func New(cfg config.RedisConfig) (*Cache, error) {
	opts, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	return &Cache{rdb: redis.NewClient(opts)}, nil
}

// Ping 发送 PING
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis PING 失败: %w", err)
	}
	return nil
}

// SetJSON 以JSON格式写入，ttl为0表示不过期
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化缓存值失败: %w", err)
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("写入缓存 %s 失败: %w", key, err)
	}
	return nil
}

// GetJSON 读取JSON值，键不存在时返回 false
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("读取缓存 %s 失败: %w", key, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("解析缓存 %s 失败: %w", key, err)
	}
	return true, nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}
