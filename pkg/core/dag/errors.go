package dag

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCircularDependency 任务集合中存在循环依赖
	ErrCircularDependency = errors.New("Circular dependency detected")
	// ErrInvalidTask Task声明不合法（名称为空或重复）
	ErrInvalidTask = errors.New("invalid task")
	// ErrUnresolvedDependency 前置Task不存在于Job中（仅在RejectUnknown策略下返回）
	ErrUnresolvedDependency = errors.New("unresolved dependency")
)

// CircularDependencyError 循环依赖错误（对外导出）
// Error() 固定返回 "Circular dependency detected"，具体的环通过字段获取
type CircularDependencyError struct {
	// Unresolved 排序结束后仍未就绪的Task（按Job顺序）
	Unresolved []string
	// Cycle 其中一个具体的环，首尾相同，如 [A B A]
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return ErrCircularDependency.Error()
}

func (e *CircularDependencyError) Unwrap() error { return ErrCircularDependency }

// CyclePath 以 "A -> B -> A" 的形式返回环
func (e *CircularDependencyError) CyclePath() string {
	return strings.Join(e.Cycle, " -> ")
}

// InvalidTaskError Task声明错误
type InvalidTaskError struct {
	Index  int
	Name   string
	Reason string
}

func (e *InvalidTaskError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s at index %d: %s", ErrInvalidTask, e.Index, e.Reason)
	}
	return fmt.Sprintf("%s %q at index %d: %s", ErrInvalidTask, e.Name, e.Index, e.Reason)
}

func (e *InvalidTaskError) Unwrap() error { return ErrInvalidTask }

// UnresolvedDependencyError 前置Task不存在
type UnresolvedDependencyError struct {
	Task    string
	Missing string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("%s: task %q requires unknown task %q", ErrUnresolvedDependency, e.Task, e.Missing)
}

func (e *UnresolvedDependencyError) Unwrap() error { return ErrUnresolvedDependency }
