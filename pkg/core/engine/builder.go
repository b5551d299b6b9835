package engine

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	internalstorage "github.com/LENAX/job-processing/internal/storage"
	"github.com/LENAX/job-processing/pkg/config"
	"github.com/LENAX/job-processing/pkg/core/cache"
	"github.com/LENAX/job-processing/pkg/core/dag"
	"github.com/LENAX/job-processing/pkg/core/events"
	"github.com/LENAX/job-processing/pkg/logging"
	"github.com/LENAX/job-processing/pkg/storage"
)

// EngineBuilder 引擎构建器（链式调用）
type EngineBuilder struct {
	engineConfigPath string
	cfg              *config.EngineConfig
	logger           *slog.Logger
	catalog          storage.JobRepository
	disableCatalog   bool
	disableEvents    bool
	err              error
}

// NewEngineBuilder 创建引擎构建器（入口）
// engineConfigPath 为空或文件不存在时使用默认配置
func NewEngineBuilder(engineConfigPath string) *EngineBuilder {
	return &EngineBuilder{
		engineConfigPath: engineConfigPath,
	}
}

// WithConfig 直接使用已加载的配置，忽略配置文件（链式）
func (b *EngineBuilder) WithConfig(cfg *config.EngineConfig) *EngineBuilder {
	if b.err != nil {
		return b
	}
	if cfg == nil {
		b.err = errors.New("engine config cannot be nil")
		return b
	}
	b.cfg = cfg
	return b
}

// WithLogger 设置Logger，默认根据配置创建（链式）
func (b *EngineBuilder) WithLogger(logger *slog.Logger) *EngineBuilder {
	if b.err != nil {
		return b
	}
	if logger == nil {
		b.err = errors.New("logger cannot be nil")
		return b
	}
	b.logger = logger
	return b
}

// WithCatalog 使用外部提供的Job定义存储（链式）
func (b *EngineBuilder) WithCatalog(repo storage.JobRepository) *EngineBuilder {
	if b.err != nil {
		return b
	}
	if repo == nil {
		b.err = errors.New("job repository cannot be nil")
		return b
	}
	b.catalog = repo
	return b
}

// DisableCatalog 不创建Job定义目录，即使配置了数据库（链式）
func (b *EngineBuilder) DisableCatalog() *EngineBuilder {
	b.disableCatalog = true
	return b
}

// DisableEvents 不创建事件总线（链式）
func (b *EngineBuilder) DisableEvents() *EngineBuilder {
	b.disableEvents = true
	return b
}

// Build 构建引擎实例（最终步骤）
func (b *EngineBuilder) Build() (*Engine, error) {
	// 检查构建过程是否有错误
	if b.err != nil {
		return nil, b.err
	}

	// 1. 加载引擎配置
	cfg := b.cfg
	if cfg == nil {
		loaded, err := config.LoadEngineConfig(b.engineConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load engine config failed: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyDefaults()

	// 2. 校验配置
	if err := config.ValidateFrameworkConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate engine config failed: %w", err)
	}
	jp := cfg.JobProcessing

	policy, ok := dag.ParseUnknownDependencyPolicy(jp.Ordering.UnknownDependency)
	if !ok {
		return nil, fmt.Errorf("invalid unknown_dependency policy: %s", jp.Ordering.UnknownDependency)
	}

	// 3. Logger
	logger := b.logger
	if logger == nil {
		logger = logging.New(jp.General.LogLevel, jp.General.LogFormat, os.Stderr)
	}
	logger = logger.With("instance", jp.General.InstanceName)

	engine := &Engine{
		cfg:      cfg,
		logger:   logger,
		policy:   policy,
		maxTasks: cfg.GetMaxTasks(),
	}

	// 4. 结果缓存和定时清理
	if jp.Storage.Cache.Enabled {
		orderCache := cache.NewMemoryOrderCache()
		janitor, err := NewCacheJanitor(orderCache, jp.Storage.Cache.CleanCron, logger)
		if err != nil {
			return nil, fmt.Errorf("create cache janitor failed: %w", err)
		}
		engine.cache = orderCache
		engine.cacheTTL = jp.Storage.Cache.DefaultTTL
		engine.janitor = janitor
	}

	// 5. 事件总线
	if jp.Events.Enabled && !b.disableEvents {
		engine.bus = events.NewBus(logger)
	}

	// 6. Job定义目录（根据配置创建Repository）
	switch {
	case b.catalog != nil:
		engine.catalog = b.catalog
	case !b.disableCatalog && cfg.CatalogEnabled():
		repo, err := b.initStorage(cfg)
		if err != nil {
			if engine.bus != nil {
				engine.bus.Close()
			}
			return nil, fmt.Errorf("init storage failed: %w", err)
		}
		engine.catalog = repo
		log.Printf("📝 [EngineBuilder] 已连接Job目录: type=%s", cfg.GetDatabaseType())
	}

	return engine, nil
}

// initStorage 初始化存储层（根据配置创建Repository）
func (b *EngineBuilder) initStorage(cfg *config.EngineConfig) (storage.JobRepository, error) {
	db := cfg.JobProcessing.Storage.Database
	return internalstorage.NewJobRepository(cfg.GetDatabaseType(), cfg.GetDatabaseDSN(), storage.PoolConfig{
		MaxOpenConns:    db.MaxOpenConns,
		MaxIdleConns:    db.MaxIdleConns,
		ConnMaxLifetime: db.ConnMaxLifetime,
		ConnMaxIdleTime: db.ConnMaxIdleTime,
	})
}
