package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/LENAX/job-processing/pkg/core/dag"
	"github.com/LENAX/job-processing/pkg/core/task"
	"github.com/LENAX/job-processing/pkg/logging"
)

// loggingProcessor 记录方法调用的参数、结果和耗时
type loggingProcessor struct {
	next   Processor
	logger *slog.Logger
}

// WithCallLogging 为Processor添加调用日志（对外导出）
// context中有Logger时优先使用，便于带上请求ID
func WithCallLogging(next Processor, logger *slog.Logger) Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingProcessor{next: next, logger: logger}
}

func (p *loggingProcessor) loggerFor(ctx context.Context) *slog.Logger {
	if logger, ok := logging.Lookup(ctx); ok {
		return logger
	}
	return p.logger
}

// OrderTasks 排序并记录调用日志
func (p *loggingProcessor) OrderTasks(ctx context.Context, job task.Job, policy dag.UnknownDependencyPolicy) ([]task.Task, error) {
	logger := p.loggerFor(ctx).With("method", "OrderTasks")
	logger.Info("Entering method", "tasks", job.Names(), "policy", policy)

	start := time.Now()
	ordered, err := p.next.OrderTasks(ctx, job, policy)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("Exception in method", "error", err, "elapsed_ms", elapsed.Milliseconds())
		return nil, err
	}
	logger.Info("Exiting method", "result", task.NamesOf(ordered), "elapsed_ms", elapsed.Milliseconds())
	return ordered, nil
}

// GenerateScript 渲染脚本并记录调用日志
func (p *loggingProcessor) GenerateScript(ctx context.Context, ordered []task.Task) string {
	logger := p.loggerFor(ctx).With("method", "GenerateScript")
	logger.Info("Entering method", "tasks", task.NamesOf(ordered))

	start := time.Now()
	out := p.next.GenerateScript(ctx, ordered)

	logger.Info("Exiting method", "bytes", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out
}
