// Package events 提供Job排序结果的事件发布与订阅
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType 事件类型
type EventType string

const (
	EventJobOrdered EventType = "job.ordered" // 排序成功
	EventJobFailed  EventType = "job.failed"  // 排序失败（循环依赖、非法Task等）
)

// AllEventTypes 所有事件类型
var AllEventTypes = []EventType{EventJobOrdered, EventJobFailed}

// JobEvent 排序事件
type JobEvent struct {
	ID            string    `json:"id"`                       // 事件ID（UUID）
	Type          EventType `json:"type"`                     // 事件类型
	JobName       string    `json:"job_name,omitempty"`       // 目录中的Job名称，临时提交的Job为空
	TaskCount     int       `json:"task_count"`               // Task数量
	Order         []string  `json:"order,omitempty"`          // 排序后的Task名称
	Cycle         []string  `json:"cycle,omitempty"`          // 循环路径
	Error         string    `json:"error,omitempty"`          // 错误信息
	CacheHit      bool      `json:"cache_hit"`                // 是否命中缓存
	Timestamp     time.Time `json:"timestamp"`                // 事件时间
	CorrelationID string    `json:"correlation_id,omitempty"` // 关联ID（请求ID）
}

// NewJobEvent 创建排序事件
func NewJobEvent(eventType EventType, taskCount int) *JobEvent {
	return &JobEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		TaskCount: taskCount,
		Timestamp: time.Now(),
	}
}

// WithJobName 设置Job名称
func (e *JobEvent) WithJobName(name string) *JobEvent {
	e.JobName = name
	return e
}

// WithCorrelationID 设置关联ID
func (e *JobEvent) WithCorrelationID(correlationID string) *JobEvent {
	e.CorrelationID = correlationID
	return e
}
