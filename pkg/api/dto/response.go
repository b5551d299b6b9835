package dto

import (
	"time"

	"github.com/LENAX/job-processing/pkg/codec"
	"github.com/LENAX/job-processing/pkg/core/task"
	"github.com/LENAX/job-processing/pkg/storage"
)

// APIResponse 通用API响应结构
type APIResponse[T any] struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    T              `json:"data,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
	}
}

// NewErrorResponseWithDetails 创建带诊断信息的错误响应
func NewErrorResponseWithDetails(code int, message string, details map[string]any) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// OrderedTask 排序结果中的Task（不包含requires）
type OrderedTask = codec.OrderedTask

// OrderResponse 排序响应
type OrderResponse struct {
	JobName string        `json:"job_name,omitempty"`
	Count   int           `json:"count"`
	Tasks   []OrderedTask `json:"tasks"`
}

// NewOrderResponse 创建排序响应
func NewOrderResponse(jobName string, ordered []task.Task) OrderResponse {
	return OrderResponse{
		JobName: jobName,
		Count:   len(ordered),
		Tasks:   codec.ToOrderedTasks(ordered),
	}
}

// JobSummary Job定义摘要信息
type JobSummary struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TaskCount   int       `json:"task_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JobDetail Job定义详细信息
type JobDetail struct {
	JobSummary
	Tasks []task.Task `json:"tasks"`
}

// NewJobSummary 从Job定义创建摘要
func NewJobSummary(def *storage.JobDefinition) JobSummary {
	return JobSummary{
		Name:        def.Name,
		Description: def.Description,
		TaskCount:   len(def.Tasks),
		CreatedAt:   def.CreatedAt,
		UpdatedAt:   def.UpdatedAt,
	}
}

// NewJobDetail 从Job定义创建详情
func NewJobDetail(def *storage.JobDefinition) JobDetail {
	return JobDetail{
		JobSummary: NewJobSummary(def),
		Tasks:      def.Tasks,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// ListResponse 列表响应
type ListResponse[T any] struct {
	Total   int  `json:"total"`
	Items   []T  `json:"items"`
	HasMore bool `json:"has_more"`
}
