package dag

import (
	"crypto/sha256"
	"fmt"
	"sort"

	godag "github.com/begmaroman/go-dag"
)

// vertex go-dag 节点
type vertex struct {
	name string
}

// ID 实现 Identifiable 接口
func (v *vertex) ID() string {
	return v.name
}

// Hash 实现 godag.Hashable，按名称区分节点
// 字段未导出，默认的JSON哈希会让所有节点得到相同的值
func (v *vertex) Hash() (godag.VHash, error) {
	return sha256.Sum256([]byte(v.name)), nil
}

// Inspect 检查依赖图（对外导出）
// 先做一次拓扑排序，存在环时返回与排序相同的 CircularDependencyError；
// 然后把图加载到 go-dag 中，计算根节点、叶子节点和每个Task的上下游
func (g *Graph) Inspect() (*Inspection, error) {
	if _, err := g.TopologicalSort(); err != nil {
		return nil, err
	}

	d := godag.NewDAG[*vertex]()
	for _, name := range g.Order {
		if err := d.AddVertexByID(name, &vertex{name: name}); err != nil {
			return nil, fmt.Errorf("add vertex %s failed: %w", name, err)
		}
	}
	for _, name := range g.Order {
		for _, dependent := range g.Dependents[name] {
			// 边：前置Task -> 依赖方
			if err := d.AddEdge(name, dependent); err != nil {
				return nil, fmt.Errorf("add edge %s -> %s failed: %w", name, dependent, err)
			}
		}
	}

	roots := d.GetRoots()
	result := &Inspection{
		Roots:  make([]string, 0, len(roots)),
		Leaves: make([]string, 0),
		Tasks:  make([]TaskInfo, 0, len(g.Order)),
	}
	if len(g.Unresolved) > 0 {
		result.Unresolved = make(map[string][]string, len(g.Unresolved))
		for name, missing := range g.Unresolved {
			result.Unresolved[name] = append([]string(nil), missing...)
		}
	}

	for _, name := range g.Order {
		parents, err := d.GetParents(name)
		if err != nil {
			return nil, fmt.Errorf("get parents of %s failed: %w", name, err)
		}
		children, err := d.GetChildren(name)
		if err != nil {
			return nil, fmt.Errorf("get children of %s failed: %w", name, err)
		}

		if _, isRoot := roots[name]; isRoot {
			result.Roots = append(result.Roots, name)
		}
		if len(children) == 0 {
			result.Leaves = append(result.Leaves, name)
		}

		info := TaskInfo{
			Name:          name,
			Command:       g.Tasks[name].Command,
			InDegree:      g.InDegree[name],
			Prerequisites: g.inJobOrder(keysOf(parents)),
			Dependents:    g.inJobOrder(keysOf(children)),
		}
		if missing := g.Unresolved[name]; len(missing) > 0 {
			info.Unresolved = append([]string(nil), missing...)
		}
		result.Tasks = append(result.Tasks, info)
	}

	return result, nil
}

// inJobOrder 按Task在Job中的下标排序
func (g *Graph) inJobOrder(names []string) []string {
	sort.SliceStable(names, func(i, j int) bool {
		return g.position[names[i]] < g.position[names[j]]
	})
	return names
}

func keysOf[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
