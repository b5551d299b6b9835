package dto

import (
	"github.com/LENAX/job-processing/pkg/core/task"
	"github.com/LENAX/job-processing/pkg/storage"
)

// UpsertJobRequest 保存Job定义请求
type UpsertJobRequest struct {
	Name        string      `json:"name" binding:"required"`
	Description string      `json:"description"`
	Tasks       []task.Task `json:"tasks" binding:"required"`
}

// Definition 转换为Job定义
func (r *UpsertJobRequest) Definition() *storage.JobDefinition {
	return &storage.JobDefinition{
		Name:        r.Name,
		Description: r.Description,
		Tasks:       r.Tasks,
	}
}

// OrderQueryRequest 排序查询参数
type OrderQueryRequest struct {
	Format  string `form:"format" binding:"omitempty,oneof=json script"`
	Unknown string `form:"unknown" binding:"omitempty,oneof=ignore reject"`
}

// ListQueryRequest 通用列表查询请求
type ListQueryRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// GetDefaultLimit 获取默认limit
func (r *ListQueryRequest) GetDefaultLimit() int {
	if r.Limit <= 0 {
		return 20
	}
	return r.Limit
}
