// Package cachetest 提供内存版缓存，供服务层测试替代 Redis
package cachetest

import (
	"context"
	"path"
	"sync"
	"time"
)

// Cache 内存缓存，异步任务默认同步执行
// HoldTasks 之后任务先排队，由 RunHeldTasks 统一执行
type Cache struct {
	mu    sync.Mutex
	data  map[string]string
	hold  bool
	queue []func()
}

// New 创建空缓存
func New() *Cache {
	return &Cache{data: make(map[string]string)}
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// DeleteByPattern 按 glob 模式删除
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *Cache) SubmitTask(action func()) {
	c.mu.Lock()
	if c.hold {
		c.queue = append(c.queue, action)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	action()
}

// HoldTasks 暂存之后提交的任务
func (c *Cache) HoldTasks() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hold = true
}

// RunHeldTasks 按提交顺序执行暂存的任务并恢复同步执行
func (c *Cache) RunHeldTasks() {
	c.mu.Lock()
	queue := c.queue
	c.queue = nil
	c.hold = false
	c.mu.Unlock()
	for _, action := range queue {
		action()
	}
}

// Has 键是否存在
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// Len 当前键数量
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear 清空缓存
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]string)
}
