// Package redis 提供 CacheService 接口的 Redis 实现
package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"plural_proxy_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache Redis 缓存实现
// 同时实现 CacheService 与 AsyncCacheService，调用方按需声明最小接口
type RedisCache struct {
	client    *redis.Client
	taskChan  chan func()
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRedisCache 创建 Redis 缓存实例并启动 Worker Pool
func NewRedisCache(client *redis.Client, workerNum, taskChanSize int) *RedisCache {
	rc := &RedisCache{
		client:   client,
		taskChan: make(chan func(), taskChanSize),
	}
	rc.wg.Add(workerNum)
	for i := 0; i < workerNum; i++ {
		go rc.startWorker()
	}
	zap.L().Info("Redis Cache Workers started", zap.Int("workers", workerNum), zap.Int("buffer", taskChanSize))
	return rc
}

// startWorker 单个 Worker 消费循环
func (r *RedisCache) startWorker() {
	defer r.wg.Done()
	for task := range r.taskChan {
		r.run(task)
	}
}

// run 执行任务，panic 不影响 Worker 继续消费
func (r *RedisCache) run(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("Redis Worker panic", zap.Any("recover", rec))
		}
	}()
	if task != nil {
		task()
	}
}

// Set 设置键值对并指定过期时间
func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

// Get 获取键对应的值（键不存在返回空字符串和 nil）
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

// Delete 删除键（如果存在）
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Unlink(ctx, key).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink key %s", key)
	}
	return nil
}

// DeleteByPattern 删除匹配模式的所有键
func (r *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		var keys []string
		var err error
		keys, cursor, err = r.client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return errorx.Wrapf(err, errorx.CodeCacheError, "redis scan pattern %s", pattern)
		}
		if len(keys) > 0 {
			if err := r.client.Unlink(ctx, keys...).Err(); err != nil {
				return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink keys with pattern %s", pattern)
			}
		}
		if cursor == 0 {
			break
		}
	}
	return nil
}

// SubmitTask 提交异步缓存任务
func (r *RedisCache) SubmitTask(action func()) {
	select {
	case r.taskChan <- action:
	default:
		// 降级：同步执行
		zap.L().Warn("Redis cache task channel full, executing synchronously")
		r.run(action)
	}
}

// Close 停止 Worker 并关闭连接，已提交的任务会执行完
func (r *RedisCache) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.taskChan)
		r.wg.Wait()
		err = r.client.Close()
	})
	return err
}

// 确保 RedisCache 实现了 AsyncCacheService 接口
var _ AsyncCacheService = (*RedisCache)(nil)
