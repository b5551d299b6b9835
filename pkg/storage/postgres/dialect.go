package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/LENAX/job-processing/pkg/storage"
)

// PostgresDialect PostgreSQL方言实现（对外导出）
type PostgresDialect struct{}

// NewPostgresDialect 创建PostgreSQL方言实例
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

// Name 返回方言名称
func (d *PostgresDialect) Name() string {
	return "postgres"
}

// DriverName 返回驱动名称
func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// NormalizeDSN URL形式的DSN转换为key=value形式
func (d *PostgresDialect) NormalizeDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return pq.ParseURL(dsn)
	}
	if dsn == "" {
		return "", fmt.Errorf("postgres dsn is empty")
	}
	return dsn, nil
}

// UpsertSQL 返回PostgreSQL的UPSERT语句（使用ON CONFLICT DO UPDATE）
// 注意：sqlx的NamedExec会把:name转换为$1, $2, ...
func (d *PostgresDialect) UpsertSQL(tableName string, columns []string, conflictColumn string, updateColumns []string) string {
	namedPlaceholders := make([]string, len(columns))
	for i, col := range columns {
		namedPlaceholders[i] = ":" + col
	}

	// 构建ON CONFLICT DO UPDATE子句
	updateParts := make([]string, len(updateColumns))
	for i, col := range updateColumns {
		updateParts[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(namedPlaceholders, ", "),
		conflictColumn,
		strings.Join(updateParts, ", "),
	)
}

// CreateTableSQL 转换DDL为PostgreSQL兼容格式
func (d *PostgresDialect) CreateTableSQL(schema string) string {
	// 替换DATETIME为TIMESTAMP
	return strings.ReplaceAll(schema, "DATETIME", "TIMESTAMP")
}

// ConfigureDB PostgreSQL无需额外配置
func (d *PostgresDialect) ConfigureDB() []string {
	return nil
}

// NewJobRepoFromDSN 通过DSN创建PostgreSQL Job定义存储（对外导出）
func NewJobRepoFromDSN(dsn string, pool storage.PoolConfig) (*storage.SQLJobRepository, error) {
	return storage.OpenSQLJobRepository(NewPostgresDialect(), dsn, pool)
}

// 确保实现接口
var _ storage.Dialect = (*PostgresDialect)(nil)
