package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/LENAX/job-processing/pkg/core/cache"
)

// CacheJanitor 按cron表达式定期清理过期的排序缓存（对外导出）
type CacheJanitor struct {
	cron    *cron.Cron
	cache   cache.OrderCache
	spec    string
	entry   cron.EntryID
	logger  *slog.Logger
	mu      sync.Mutex
	started bool
}

// NewCacheJanitor 创建缓存清理器
// spec 使用标准5段cron表达式或 @every 描述符
func NewCacheJanitor(c cache.OrderCache, spec string, logger *slog.Logger) (*CacheJanitor, error) {
	j := &CacheJanitor{
		cron:   cron.New(),
		cache:  c,
		spec:   spec,
		logger: logger,
	}

	entryID, err := j.cron.AddFunc(spec, func() { j.RunOnce() })
	if err != nil {
		return nil, fmt.Errorf("缓存清理的Cron表达式无效: %w", err)
	}
	j.entry = entryID
	return j, nil
}

// RunOnce 立即执行一次清理，返回清理数量
func (j *CacheJanitor) RunOnce() int {
	removed := j.cache.CleanupExpired()
	if removed > 0 {
		j.logger.Debug("已清理过期排序缓存", "removed", removed, "remaining", j.cache.Len())
	}
	return removed
}

// Start 启动定时清理
func (j *CacheJanitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.started {
		return
	}
	j.cron.Start()
	j.started = true
	j.logger.Info("✅ [缓存清理] 已启动", "spec", j.spec)
}

// Stop 停止定时清理，等待正在执行的清理完成
func (j *CacheJanitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.started {
		return
	}
	<-j.cron.Stop().Done()
	j.started = false
	j.logger.Info("✅ [缓存清理] 已停止")
}

// Spec 返回cron表达式
func (j *CacheJanitor) Spec() string {
	return j.spec
}
