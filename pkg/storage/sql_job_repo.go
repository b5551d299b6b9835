package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/LENAX/job-processing/pkg/core/task"
	"github.com/LENAX/job-processing/pkg/storage/dao"
)

const jobDefinitionTable = "job_definition"

// jobDefinitionSchema 通用DDL，由Dialect转换为具体数据库的DDL
const jobDefinitionSchema = `
	CREATE TABLE IF NOT EXISTS job_definition (
		name VARCHAR(255) NOT NULL PRIMARY KEY,
		description TEXT,
		tasks TEXT NOT NULL,
		task_count INTEGER NOT NULL DEFAULT 0,
		create_time DATETIME NOT NULL,
		update_time DATETIME NOT NULL
	)
	`

var (
	jobDefinitionColumns = []string{"name", "description", "tasks", "task_count", "create_time", "update_time"}
	jobDefinitionUpdates = []string{"description", "tasks", "task_count", "update_time"}
)

// SQLJobRepository 基于sqlx的Job定义存储实现（对外导出）
// 三种数据库共用一份实现，差异由Dialect封装
type SQLJobRepository struct {
	db      *sqlx.DB
	dialect Dialect
	now     func() time.Time
}

// NewSQLJobRepository 创建Job定义存储实例并初始化表结构（对外导出）
func NewSQLJobRepository(db *sqlx.DB, dialect Dialect) (*SQLJobRepository, error) {
	repo := &SQLJobRepository{db: db, dialect: dialect, now: time.Now}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}
	return repo, nil
}

// OpenSQLJobRepository 通过DSN打开数据库并创建Job定义存储实例（对外导出）
func OpenSQLJobRepository(dialect Dialect, dsn string, pool PoolConfig) (*SQLJobRepository, error) {
	normalized, err := dialect.NormalizeDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("无效的%s DSN: %w", dialect.Name(), err)
	}

	db, err := sqlx.Open(dialect.DriverName(), normalized)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	applyPool(db, pool)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	for _, stmt := range dialect.ConfigureDB() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("配置%s失败: %w", dialect.Name(), err)
		}
	}

	repo, err := NewSQLJobRepository(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func applyPool(db *sqlx.DB, pool PoolConfig) {
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}
}

func (r *SQLJobRepository) initSchema() error {
	_, err := r.db.Exec(r.dialect.CreateTableSQL(jobDefinitionSchema))
	return err
}

// GetDB 获取底层数据库连接（对外导出）
func (r *SQLJobRepository) GetDB() *sqlx.DB {
	return r.db
}

// Dialect 返回当前方言
func (r *SQLJobRepository) Dialect() Dialect {
	return r.dialect
}

// SaveJob 保存Job定义
func (r *SQLJobRepository) SaveJob(ctx context.Context, def *JobDefinition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("job name is required")
	}

	tasksJSON, err := json.Marshal(def.Tasks)
	if err != nil {
		return fmt.Errorf("序列化Tasks失败: %w", err)
	}

	now := r.now().UTC().Truncate(time.Second)
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}
	def.UpdatedAt = now

	row := dao.JobDefinitionDAO{
		Name:        def.Name,
		Description: sql.NullString{String: def.Description, Valid: def.Description != ""},
		Tasks:       string(tasksJSON),
		TaskCount:   len(def.Tasks),
		CreateTime:  def.CreatedAt,
		UpdateTime:  def.UpdatedAt,
	}

	query := r.dialect.UpsertSQL(jobDefinitionTable, jobDefinitionColumns, "name", jobDefinitionUpdates)
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("保存Job定义失败: %w", err)
	}
	return nil
}

// GetJob 按名称获取Job定义
func (r *SQLJobRepository) GetJob(ctx context.Context, name string) (*JobDefinition, error) {
	query := r.db.Rebind(`SELECT name, description, tasks, task_count, create_time, update_time
		FROM job_definition WHERE name = ?`)

	var row dao.JobDefinitionDAO
	if err := r.db.GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
		}
		return nil, fmt.Errorf("查询Job定义失败: %w", err)
	}
	return fromDAO(&row)
}

// ListJobs 分页列出Job定义
func (r *SQLJobRepository) ListJobs(ctx context.Context, limit, offset int) ([]*JobDefinition, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM job_definition`); err != nil {
		return nil, 0, fmt.Errorf("统计Job定义失败: %w", err)
	}

	query := r.db.Rebind(`SELECT name, description, tasks, task_count, create_time, update_time
		FROM job_definition ORDER BY name LIMIT ? OFFSET ?`)
	var rows []dao.JobDefinitionDAO
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("查询Job定义列表失败: %w", err)
	}

	defs := make([]*JobDefinition, 0, len(rows))
	for i := range rows {
		def, err := fromDAO(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		defs = append(defs, def)
	}
	return defs, total, nil
}

// DeleteJob 删除Job定义
func (r *SQLJobRepository) DeleteJob(ctx context.Context, name string) error {
	query := r.db.Rebind(`DELETE FROM job_definition WHERE name = ?`)
	result, err := r.db.ExecContext(ctx, query, name)
	if err != nil {
		return fmt.Errorf("删除Job定义失败: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("删除Job定义失败: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return nil
}

// Ping 检查数据库连接
func (r *SQLJobRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close 关闭数据库连接（对外导出）
func (r *SQLJobRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func fromDAO(row *dao.JobDefinitionDAO) (*JobDefinition, error) {
	var tasks []task.Task
	if err := json.Unmarshal([]byte(row.Tasks), &tasks); err != nil {
		return nil, fmt.Errorf("解析Job %s 的Tasks失败: %w", row.Name, err)
	}
	return &JobDefinition{
		Name:        row.Name,
		Description: row.Description.String,
		Tasks:       tasks,
		CreatedAt:   row.CreateTime.UTC(),
		UpdatedAt:   row.UpdateTime.UTC(),
	}, nil
}

// 确保实现接口
var _ JobRepository = (*SQLJobRepository)(nil)
