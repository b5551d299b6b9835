package dag

import (
	"github.com/emirpasic/gods/queues/linkedlistqueue"

	"github.com/LENAX/job-processing/pkg/core/task"
)

// SortTasks 构建依赖图并执行拓扑排序（对外导出）
func SortTasks(tasks []task.Task, opts ...Option) ([]task.Task, error) {
	g, err := BuildGraph(tasks, opts...)
	if err != nil {
		return nil, err
	}
	return g.TopologicalSort()
}

// TopologicalSort 使用 Kahn 算法执行拓扑排序（对外导出）
// 入度为0的Task按Job顺序入队（FIFO），同时就绪的Task先按就绪先后、再按Job顺序输出。
// 存在循环依赖时返回 CircularDependencyError，不返回部分结果
func (g *Graph) TopologicalSort() ([]task.Task, error) {
	// 在副本上递减入度，保证Graph可以重复排序
	inDegree := make(map[string]int, len(g.InDegree))
	for name, degree := range g.InDegree {
		inDegree[name] = degree
	}

	// 1. 按Job顺序找出所有入度为0的Task
	queue := linkedlistqueue.New()
	for _, name := range g.Order {
		if inDegree[name] == 0 {
			queue.Enqueue(name)
		}
	}

	// 2. 不断出队，并递减其下游Task的入度
	sorted := make([]task.Task, 0, len(g.Order))
	for !queue.Empty() {
		value, _ := queue.Dequeue()
		name := value.(string)
		sorted = append(sorted, g.Tasks[name].Clone())

		for _, dependent := range g.Dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue.Enqueue(dependent)
			}
		}
	}

	// 3. 还有Task未输出，说明剩余Task之间存在环
	if len(sorted) != len(g.Order) {
		unresolved := make([]string, 0, len(g.Order)-len(sorted))
		for _, name := range g.Order {
			if inDegree[name] > 0 {
				unresolved = append(unresolved, name)
			}
		}
		return nil, &CircularDependencyError{
			Unresolved: unresolved,
			Cycle:      g.findCycle(unresolved),
		}
	}

	return sorted, nil
}

// findCycle 在未就绪的子图上用DFS找出一个具体的环
// 三色标记：0=未访问，1=访问中，2=已完成；按Job顺序和邻接表顺序遍历，结果是确定的
func (g *Graph) findCycle(unresolved []string) []string {
	inSubgraph := make(map[string]bool, len(unresolved))
	for _, name := range unresolved {
		inSubgraph[name] = true
	}

	color := make(map[string]int, len(unresolved))
	stack := make([]string, 0, len(unresolved))
	var cycle []string

	var dfs func(name string) bool
	dfs = func(name string) bool {
		color[name] = 1
		stack = append(stack, name)

		for _, child := range g.Dependents[name] {
			if !inSubgraph[child] {
				continue
			}
			switch color[child] {
			case 0:
				if dfs(child) {
					return true
				}
			case 1:
				// 后向边：从栈中child的位置截取到当前节点，再闭合
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == child {
						cycle = append(append([]string(nil), stack[i:]...), child)
						return true
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = 2
		return false
	}

	for _, name := range unresolved {
		if color[name] == 0 && dfs(name) {
			return cycle
		}
	}
	return nil
}
