package dag

import (
	"github.com/LENAX/job-processing/pkg/core/task"
)

// UnknownDependencyPolicy 对Job中不存在的前置Task的处理策略
type UnknownDependencyPolicy string

const (
	// IgnoreUnknown 忽略不存在的前置Task（默认，不产生边也不计入入度）
	IgnoreUnknown UnknownDependencyPolicy = "ignore"
	// RejectUnknown 构建图时遇到不存在的前置Task直接失败
	RejectUnknown UnknownDependencyPolicy = "reject"
)

// ParseUnknownDependencyPolicy 解析策略字符串，空字符串返回IgnoreUnknown
func ParseUnknownDependencyPolicy(s string) (UnknownDependencyPolicy, bool) {
	switch UnknownDependencyPolicy(s) {
	case "", IgnoreUnknown:
		return IgnoreUnknown, true
	case RejectUnknown:
		return RejectUnknown, true
	default:
		return "", false
	}
}

// Graph 依赖图（对外导出）
// 构建完成后只读，TopologicalSort 不会修改它，可以被并发读取
type Graph struct {
	// Tasks Task名称 -> Task
	Tasks map[string]task.Task
	// Dependents 前置Task -> 依赖它的Task列表（按Job顺序，无重复）
	Dependents map[string][]string
	// InDegree Task -> Job内实际存在的前置Task数量
	InDegree map[string]int
	// Order Job中的Task名称顺序
	Order []string
	// Unresolved Task -> 不存在于Job中的前置Task名称（仅用于诊断）
	Unresolved map[string][]string

	// position Task名称 -> 在Job中的下标
	position map[string]int
}

// Len 返回Task数量
func (g *Graph) Len() int {
	return len(g.Order)
}

// TaskInfo 单个Task的检查信息
type TaskInfo struct {
	Name          string   `json:"name"`
	Command       string   `json:"command"`
	InDegree      int      `json:"in_degree"`
	Prerequisites []string `json:"prerequisites"`
	Dependents    []string `json:"dependents"`
	Unresolved    []string `json:"unresolved,omitempty"`
}

// Inspection 依赖图检查结果（对外导出）
type Inspection struct {
	Roots      []string            `json:"roots"`
	Leaves     []string            `json:"leaves"`
	Tasks      []TaskInfo          `json:"tasks"`
	Unresolved map[string][]string `json:"unresolved,omitempty"`
}
