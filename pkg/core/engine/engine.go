package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/LENAX/job-processing/pkg/codec"
	"github.com/LENAX/job-processing/pkg/config"
	"github.com/LENAX/job-processing/pkg/core/cache"
	"github.com/LENAX/job-processing/pkg/core/dag"
	"github.com/LENAX/job-processing/pkg/core/events"
	"github.com/LENAX/job-processing/pkg/core/script"
	"github.com/LENAX/job-processing/pkg/core/task"
	"github.com/LENAX/job-processing/pkg/logging"
	"github.com/LENAX/job-processing/pkg/storage"
)

var (
	// ErrJobTooLarge Job的Task数量超过 ordering.max_tasks
	ErrJobTooLarge = errors.New("job exceeds max task count")
	// ErrCatalogDisabled 未配置Job定义目录
	ErrCatalogDisabled = errors.New("job catalog is not configured")
	// ErrInvalidJobName Job名称为空
	ErrInvalidJobName = errors.New("job name is required")
)

// Processor Job排序服务接口（对外导出）
type Processor interface {
	// OrderTasks 按依赖关系排序Job中的Task
	// policy 为空时使用引擎配置的默认策略
	OrderTasks(ctx context.Context, job task.Job, policy dag.UnknownDependencyPolicy) ([]task.Task, error)

	// GenerateScript 把已排序的Task渲染为bash脚本
	GenerateScript(ctx context.Context, ordered []task.Task) string
}

// Engine Job排序引擎核心结构体（对外导出）
// 排序本身是纯函数；Engine负责结果缓存、事件发布和Job定义目录
type Engine struct {
	cfg       *config.EngineConfig
	logger    *slog.Logger
	cache     cache.OrderCache // 未启用缓存时为nil
	cacheTTL  time.Duration
	bus       *events.Bus // 未启用事件时为nil
	catalog   storage.JobRepository
	janitor   *CacheJanitor
	policy    dag.UnknownDependencyPolicy
	maxTasks  int
	running   bool
	stopAudit context.CancelFunc
	mu        sync.Mutex
}

// Start 启动引擎（对外导出）
// 启动缓存清理定时任务和事件审计日志
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}

	if e.bus != nil {
		auditCtx, cancel := context.WithCancel(context.Background())
		if err := e.bus.StartAuditLog(auditCtx); err != nil {
			cancel()
			return fmt.Errorf("start event audit failed: %w", err)
		}
		e.stopAudit = cancel
	}
	if e.janitor != nil {
		e.janitor.Start()
	}

	e.running = true
	log.Printf("✅ Job排序引擎已启动: instance=%s", e.cfg.JobProcessing.General.InstanceName)
	return nil
}

// Stop 停止引擎（对外导出），关闭事件总线和数据库连接
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.janitor != nil {
		e.janitor.Stop()
	}
	if e.stopAudit != nil {
		e.stopAudit()
		e.stopAudit = nil
	}
	if e.bus != nil {
		if err := e.bus.Close(); err != nil {
			e.logger.Warn("关闭事件总线失败", "error", err)
		}
	}
	if e.catalog != nil {
		if err := e.catalog.Close(); err != nil {
			e.logger.Warn("关闭Job目录失败", "error", err)
		}
	}

	if e.running {
		log.Println("✅ Job排序引擎已停止")
	}
	e.running = false
}

// OrderTasks 按依赖关系排序Job中的Task
func (e *Engine) OrderTasks(ctx context.Context, job task.Job, policy dag.UnknownDependencyPolicy) ([]task.Task, error) {
	return e.orderJob(ctx, "", job, policy)
}

// GenerateScript 把已排序的Task渲染为bash脚本
func (e *Engine) GenerateScript(_ context.Context, ordered []task.Task) string {
	return script.RenderBash(ordered)
}

// OutputFormat Process的输出格式
type OutputFormat string

const (
	OutputJSON   OutputFormat = "json"
	OutputYAML   OutputFormat = "yaml"
	OutputScript OutputFormat = "script"
)

// Process 排序Job并按format编码结果：JSON/YAML为 [{name, command}]，script为bash脚本
func (e *Engine) Process(ctx context.Context, job task.Job, policy dag.UnknownDependencyPolicy, format OutputFormat) ([]byte, error) {
	ordered, err := e.OrderTasks(ctx, job, policy)
	if err != nil {
		return nil, err
	}
	switch format {
	case OutputScript:
		return []byte(e.GenerateScript(ctx, ordered)), nil
	case OutputJSON:
		data, err := codec.EncodeOrdered(ordered, codec.FormatJSON)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case OutputYAML:
		return codec.EncodeOrdered(ordered, codec.FormatYAML)
	default:
		return nil, fmt.Errorf("%w: output %q", codec.ErrUnsupportedFormat, format)
	}
}

// Inspect 返回Job依赖图的结构信息
func (e *Engine) Inspect(ctx context.Context, job task.Job, policy dag.UnknownDependencyPolicy) (*dag.Inspection, error) {
	if err := e.checkSize(job); err != nil {
		return nil, err
	}
	g, err := dag.BuildGraph(job.Tasks, dag.WithUnknownDependencyPolicy(e.resolvePolicy(policy)))
	if err != nil {
		return nil, err
	}
	return g.Inspect()
}

func (e *Engine) orderJob(ctx context.Context, jobName string, job task.Job, policy dag.UnknownDependencyPolicy) ([]task.Task, error) {
	if err := e.checkSize(job); err != nil {
		return nil, err
	}
	policy = e.resolvePolicy(policy)

	var key string
	if e.cache != nil {
		key = cache.Fingerprint(job, string(policy))
		if ordered, ok := e.cache.Get(key); ok {
			e.publishOrdered(ctx, jobName, ordered, true)
			return ordered, nil
		}
	}

	ordered, err := dag.SortTasks(job.Tasks, dag.WithUnknownDependencyPolicy(policy))
	if err != nil {
		e.publishFailed(ctx, jobName, job, err)
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(key, ordered, e.cacheTTL); err != nil {
			logging.FromContext(ctx).Warn("写入排序缓存失败", "error", err)
		}
	}
	e.publishOrdered(ctx, jobName, ordered, false)
	return ordered, nil
}

func (e *Engine) resolvePolicy(policy dag.UnknownDependencyPolicy) dag.UnknownDependencyPolicy {
	if policy == "" {
		return e.policy
	}
	return policy
}

func (e *Engine) checkSize(job task.Job) error {
	if e.maxTasks > 0 && job.Len() > e.maxTasks {
		return fmt.Errorf("%w: %d tasks, max %d", ErrJobTooLarge, job.Len(), e.maxTasks)
	}
	return nil
}

func (e *Engine) publishOrdered(ctx context.Context, jobName string, ordered []task.Task, cacheHit bool) {
	if e.bus == nil {
		return
	}
	event := events.NewJobEvent(events.EventJobOrdered, len(ordered)).
		WithJobName(jobName).
		WithCorrelationID(logging.RequestID(ctx))
	event.Order = task.NamesOf(ordered)
	event.CacheHit = cacheHit
	e.publish(ctx, event)
}

func (e *Engine) publishFailed(ctx context.Context, jobName string, job task.Job, cause error) {
	if e.bus == nil {
		return
	}
	event := events.NewJobEvent(events.EventJobFailed, job.Len()).
		WithJobName(jobName).
		WithCorrelationID(logging.RequestID(ctx))
	event.Error = cause.Error()
	var cycleErr *dag.CircularDependencyError
	if errors.As(cause, &cycleErr) {
		event.Cycle = cycleErr.Cycle
	}
	e.publish(ctx, event)
}

func (e *Engine) publish(ctx context.Context, event *events.JobEvent) {
	if err := e.bus.Publish(ctx, event); err != nil && !errors.Is(err, events.ErrBusClosed) {
		logging.FromContext(ctx).Warn("发布事件失败", "event_type", event.Type, "error", err)
	}
}

// SaveJob 保存Job定义到目录，保存前按默认策略校验（循环依赖等错误直接返回）
func (e *Engine) SaveJob(ctx context.Context, def *storage.JobDefinition) (*storage.JobDefinition, error) {
	if e.catalog == nil {
		return nil, ErrCatalogDisabled
	}
	if def == nil || def.Name == "" {
		return nil, ErrInvalidJobName
	}
	// 只校验能否排序，不写缓存也不发布事件
	if err := e.checkSize(def.Job()); err != nil {
		return nil, err
	}
	if _, err := dag.SortTasks(def.Tasks, dag.WithUnknownDependencyPolicy(e.policy)); err != nil {
		return nil, err
	}
	if err := e.catalog.SaveJob(ctx, def); err != nil {
		return nil, err
	}
	return e.catalog.GetJob(ctx, def.Name)
}

// GetJob 获取Job定义
func (e *Engine) GetJob(ctx context.Context, name string) (*storage.JobDefinition, error) {
	if e.catalog == nil {
		return nil, ErrCatalogDisabled
	}
	return e.catalog.GetJob(ctx, name)
}

// ListJobs 分页列出Job定义
func (e *Engine) ListJobs(ctx context.Context, limit, offset int) ([]*storage.JobDefinition, int, error) {
	if e.catalog == nil {
		return nil, 0, ErrCatalogDisabled
	}
	return e.catalog.ListJobs(ctx, limit, offset)
}

// DeleteJob 删除Job定义
func (e *Engine) DeleteJob(ctx context.Context, name string) error {
	if e.catalog == nil {
		return ErrCatalogDisabled
	}
	return e.catalog.DeleteJob(ctx, name)
}

// OrderStoredJob 排序目录中已保存的Job
func (e *Engine) OrderStoredJob(ctx context.Context, name string, policy dag.UnknownDependencyPolicy) ([]task.Task, error) {
	def, err := e.GetJob(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.orderJob(ctx, def.Name, def.Job(), policy)
}

// Ready 检查依赖是否就绪（目录数据库可连接）
func (e *Engine) Ready(ctx context.Context) error {
	if e.catalog == nil {
		return nil
	}
	return e.catalog.Ping(ctx)
}

// Logger 获取引擎Logger
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Config 获取框架配置
func (e *Engine) Config() *config.EngineConfig {
	return e.cfg
}

// CatalogEnabled 是否启用Job定义目录
func (e *Engine) CatalogEnabled() bool {
	return e.catalog != nil
}

// Bus 获取事件总线，未启用时返回nil
func (e *Engine) Bus() *events.Bus {
	return e.bus
}

// DefaultPolicy 引擎默认的未知依赖策略
func (e *Engine) DefaultPolicy() dag.UnknownDependencyPolicy {
	return e.policy
}

// 确保实现接口
var _ Processor = (*Engine)(nil)
