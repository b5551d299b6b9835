package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/LENAX/job-processing/pkg/core/task"
)

// OrderCache 排序结果缓存接口（对外导出）
// 排序是纯函数，缓存只是对同一Job重复排序的记忆，不缓存失败结果
type OrderCache interface {
	// Set 设置缓存值
	// key: Job指纹，见 Fingerprint
	// ordered: 排序结果
	// ttl: 缓存有效期
	Set(key string, ordered []task.Task, ttl time.Duration) error

	// Get 获取缓存值
	// 返回: 排序结果的副本和是否存在
	Get(key string) ([]task.Task, bool)

	// Delete 删除缓存值
	Delete(key string) error

	// Clear 清空所有缓存
	Clear() error

	// CleanupExpired 清理过期缓存，返回清理数量
	CleanupExpired() int

	// Len 当前缓存条目数（包含尚未清理的过期条目）
	Len() int
}

// cacheEntry 缓存条目（内部使用）
type cacheEntry struct {
	value      []task.Task
	expireTime time.Time
}

// MemoryOrderCache 内存排序结果缓存实现（对外导出）
// 过期条目在Get时惰性删除，或由外部定时调用 CleanupExpired 清理
type MemoryOrderCache struct {
	mu    sync.RWMutex
	cache map[string]*cacheEntry
	now   func() time.Time
}

// NewMemoryOrderCache 创建内存排序结果缓存实例（对外导出）
func NewMemoryOrderCache() *MemoryOrderCache {
	return &MemoryOrderCache{
		cache: make(map[string]*cacheEntry),
		now:   time.Now,
	}
}

// Fingerprint 计算Job和未知依赖策略的指纹，作为缓存key
// Task顺序会影响排序结果，因此参与计算
func Fingerprint(job task.Job, policy string) string {
	h := sha256.New()
	h.Write([]byte(policy))
	h.Write([]byte{0})
	// task.Job 只包含字符串和切片，Marshal不会失败
	data, _ := json.Marshal(job)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Set 设置缓存值
func (c *MemoryOrderCache) Set(key string, ordered []task.Task, ttl time.Duration) error {
	if key == "" {
		return nil // 空key，忽略
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = &cacheEntry{
		value:      task.CloneAll(ordered),
		expireTime: c.now().Add(ttl),
	}
	return nil
}

// Get 获取缓存值
func (c *MemoryOrderCache) Get(key string) ([]task.Task, bool) {
	if key == "" {
		return nil, false
	}

	c.mu.RLock()
	entry, exists := c.cache[key]
	c.mu.RUnlock()
	if !exists {
		return nil, false
	}

	// 已过期，删除并返回不存在
	if c.now().After(entry.expireTime) {
		c.mu.Lock()
		if current, ok := c.cache[key]; ok && current == entry {
			delete(c.cache, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return task.CloneAll(entry.value), true
}

// Delete 删除缓存值
func (c *MemoryOrderCache) Delete(key string) error {
	if key == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, key)
	return nil
}

// Clear 清空所有缓存
func (c *MemoryOrderCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*cacheEntry)
	return nil
}

// CleanupExpired 清理过期缓存
func (c *MemoryOrderCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.cache {
		if now.After(entry.expireTime) {
			delete(c.cache, key)
			removed++
		}
	}
	return removed
}

// Len 当前缓存条目数
func (c *MemoryOrderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
