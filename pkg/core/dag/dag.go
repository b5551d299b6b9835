package dag

import (
	"github.com/LENAX/job-processing/pkg/core/task"
)

// buildOptions 构建选项（内部使用）
type buildOptions struct {
	unknownPolicy UnknownDependencyPolicy
}

// Option 构建依赖图的选项
type Option func(*buildOptions)

// WithUnknownDependencyPolicy 设置不存在前置Task的处理策略
func WithUnknownDependencyPolicy(policy UnknownDependencyPolicy) Option {
	return func(o *buildOptions) {
		if policy != "" {
			o.unknownPolicy = policy
		}
	}
}

// BuildGraph 从Task列表构建依赖图（对外导出）
// 1. 名称 -> Task 映射（名称为空或重复时返回 InvalidTaskError）
// 2. 正向邻接表：前置Task -> 依赖它的Task，按依赖方在Job中的顺序
// 3. 入度：每个Task在Job内实际存在的、去重后的前置Task数量
// 不存在的前置Task默认被忽略，RejectUnknown策略下返回 UnresolvedDependencyError
func BuildGraph(tasks []task.Task, opts ...Option) (*Graph, error) {
	options := buildOptions{unknownPolicy: IgnoreUnknown}
	for _, opt := range opts {
		opt(&options)
	}

	g := &Graph{
		Tasks:      make(map[string]task.Task, len(tasks)),
		Dependents: make(map[string][]string, len(tasks)),
		InDegree:   make(map[string]int, len(tasks)),
		Order:      make([]string, 0, len(tasks)),
		Unresolved: make(map[string][]string),
		position:   make(map[string]int, len(tasks)),
	}

	// 1. 名称映射，同时初始化邻接表和入度
	for i, t := range tasks {
		if t.Name == "" {
			return nil, &InvalidTaskError{Index: i, Reason: "name is required"}
		}
		if _, exists := g.Tasks[t.Name]; exists {
			return nil, &InvalidTaskError{Index: i, Name: t.Name, Reason: "duplicate task name"}
		}
		g.Tasks[t.Name] = t.Clone()
		g.Dependents[t.Name] = make([]string, 0)
		g.InDegree[t.Name] = 0
		g.position[t.Name] = i
		g.Order = append(g.Order, t.Name)
	}

	// 2. 按依赖方的Job顺序添加边：前置Task -> 依赖方
	for _, t := range tasks {
		seen := make(map[string]bool, len(t.Requires))
		for _, req := range t.Requires {
			if seen[req] {
				continue
			}
			seen[req] = true

			if _, exists := g.Tasks[req]; !exists {
				if options.unknownPolicy == RejectUnknown {
					return nil, &UnresolvedDependencyError{Task: t.Name, Missing: req}
				}
				g.Unresolved[t.Name] = append(g.Unresolved[t.Name], req)
				continue
			}

			g.Dependents[req] = append(g.Dependents[req], t.Name)
			// 3. 每条边的终点入度+1
			g.InDegree[t.Name]++
		}
	}

	return g, nil
}
