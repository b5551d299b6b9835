package dao

import (
	"database/sql"
	"time"
)

// JobDefinitionDAO job_definition表的数据访问对象（内部使用）
type JobDefinitionDAO struct {
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Tasks       string         `db:"tasks"` // JSON格式存储
	TaskCount   int            `db:"task_count"`
	CreateTime  time.Time      `db:"create_time"`
	UpdateTime  time.Time      `db:"update_time"`
}
