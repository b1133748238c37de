// Package redis 提供 Redis 缓存操作的封装
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"context"
	"strconv"

	"plural_proxy_server/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Init 按配置创建 Redis 客户端与缓存服务
// 连接失败只记录告警，缓存读写失败时业务会回源数据库
func Init(conf *config.RedisConfig) *RedisCache {
	addr := conf.Host + ":" + strconv.Itoa(conf.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.Password,
		DB:       conf.Db,
		// 连接池配置
		PoolSize:     50,
		MinIdleConns: 8,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		zap.L().Warn("redis ping failed", zap.String("addr", addr), zap.Error(err))
	}

	// 8 个 Worker，缓冲区 1000，用于异步失效
	return NewRedisCache(client, 8, 1000)
}
