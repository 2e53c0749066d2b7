package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"Momentum/pkg/config"
	"Momentum/pkg/model"
)

// 缓存键
const (
	keyStockList    = "momentum:stocks"
	keyFactorPrefix = "momentum:factor:"
)

// RedisCache 读多写少数据的Redis缓存
// 同步成功后由编排器调用InvalidateSync统一失效
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	ctx    context.Context
}

// NewRedisCache 创建Redis缓存
func NewRedisCache(cfg *config.Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.Redis.TTL.Std(),
		ctx:    context.Background(),
	}, nil
}

// Close 关闭Redis连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// SetStockList 缓存股票列表
func (c *RedisCache) SetStockList(stocks []*model.Stock) error {
	data, err := json.Marshal(stocks)
	if err != nil {
		return fmt.Errorf("序列化股票列表失败: %w", err)
	}
	return c.client.Set(c.ctx, keyStockList, data, c.ttl).Err()
}

// GetStockList 读取缓存的股票列表，未命中返回nil
func (c *RedisCache) GetStockList() ([]*model.Stock, error) {
	data, err := c.client.Get(c.ctx, keyStockList).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取股票列表缓存失败: %w", err)
	}

	var stocks []*model.Stock
	if err := json.Unmarshal([]byte(data), &stocks); err != nil {
		return nil, fmt.Errorf("反序列化股票列表失败: %w", err)
	}
	return stocks, nil
}

// SetLatestFactor 缓存某只股票最新因子
func (c *RedisCache) SetLatestFactor(symbol string, factor *model.FactorValue) error {
	data, err := json.Marshal(factor)
	if err != nil {
		return fmt.Errorf("序列化因子数据失败: %w", err)
	}
	return c.client.Set(c.ctx, keyFactorPrefix+symbol, data, c.ttl).Err()
}

// GetLatestFactor 读取缓存的最新因子，未命中返回nil
func (c *RedisCache) GetLatestFactor(symbol string) (*model.FactorValue, error) {
	data, err := c.client.Get(c.ctx, keyFactorPrefix+symbol).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取因子缓存失败: %w", err)
	}

	var factor model.FactorValue
	if err := json.Unmarshal([]byte(data), &factor); err != nil {
		return nil, fmt.Errorf("反序列化因子数据失败: %w", err)
	}
	return &factor, nil
}

// InvalidateSync 清除同步相关缓存
func (c *RedisCache) InvalidateSync() error {
	if err := c.client.Del(c.ctx, keyStockList).Err(); err != nil {
		return fmt.Errorf("清除股票列表缓存失败: %w", err)
	}

	iter := c.client.Scan(c.ctx, 0, keyFactorPrefix+"*", 0).Iterator()
	for iter.Next(c.ctx) {
		if err := c.client.Del(c.ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("清除因子缓存失败: %w", err)
		}
	}
	return iter.Err()
}
