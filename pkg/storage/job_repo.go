package storage

import (
	"context"
	"errors"
	"time"

	"github.com/LENAX/job-processing/pkg/core/task"
)

// ErrJobNotFound Job定义不存在
var ErrJobNotFound = errors.New("job definition not found")

// JobDefinition 持久化的Job定义（对外导出）
// 只保存声明，排序结果每次重新计算
type JobDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Tasks       []task.Task `json:"tasks"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Job 转换为可排序的Job
func (d *JobDefinition) Job() task.Job {
	return task.NewJob(task.CloneAll(d.Tasks)...)
}

// JobRepository Job定义存储接口（对外导出）
type JobRepository interface {
	// SaveJob 保存Job定义，已存在时更新（create_time保持不变）
	SaveJob(ctx context.Context, def *JobDefinition) error

	// GetJob 按名称获取Job定义，不存在时返回 ErrJobNotFound
	GetJob(ctx context.Context, name string) (*JobDefinition, error)

	// ListJobs 按名称排序分页列出Job定义，返回当前页和总数
	ListJobs(ctx context.Context, limit, offset int) ([]*JobDefinition, int, error)

	// DeleteJob 删除Job定义，不存在时返回 ErrJobNotFound
	DeleteJob(ctx context.Context, name string) error

	// Ping 检查数据库连接
	Ping(ctx context.Context) error

	// Close 关闭数据库连接
	Close() error
}

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}
