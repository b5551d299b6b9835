package storage

import (
	"fmt"

	"github.com/LENAX/job-processing/pkg/storage"
	"github.com/LENAX/job-processing/pkg/storage/mysql"
	"github.com/LENAX/job-processing/pkg/storage/postgres"
	pkgsqlite "github.com/LENAX/job-processing/pkg/storage/sqlite"
)

// NewJobRepository 按数据库类型创建Job定义存储（内部方法）
// dbType: 数据库类型（sqlite/mysql/postgres）
// dsn: 数据库连接字符串
func NewJobRepository(dbType, dsn string, pool storage.PoolConfig) (storage.JobRepository, error) {
	var (
		repo *storage.SQLJobRepository
		err  error
	)
	switch dbType {
	case "sqlite", "sqlite3":
		repo, err = pkgsqlite.NewJobRepoFromDSN(dsn, pool)
	case "mysql":
		repo, err = mysql.NewJobRepoFromDSN(dsn, pool)
	case "postgres", "postgresql":
		repo, err = postgres.NewJobRepoFromDSN(dsn, pool)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s repository failed: %w", dbType, err)
	}
	return repo, nil
}
