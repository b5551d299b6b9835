package task

// Task 任务声明（对外导出）
// Name 在同一个Job内必须唯一；Command 对排序引擎是不透明的；
// Requires 是前置Task名称列表，可为空，名称不在声明时校验
type Task struct {
	Name     string   `json:"name" yaml:"name"`
	Command  string   `json:"command" yaml:"command"`
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// Job 一组待排序的Task（对外导出）
// Tasks 的顺序决定同时就绪的Task之间的先后（tie-break）
type Job struct {
	Tasks []Task `json:"tasks" yaml:"tasks"`
}

// NewJob 创建Job
func NewJob(tasks ...Task) Job {
	return Job{Tasks: tasks}
}

// Names 按Job顺序返回所有Task名称
func (j Job) Names() []string {
	names := make([]string, 0, len(j.Tasks))
	for _, t := range j.Tasks {
		names = append(names, t.Name)
	}
	return names
}

// Len 返回Task数量
func (j Job) Len() int {
	return len(j.Tasks)
}

// Clone 深拷贝Task，避免调用方和引擎共享Requires切片
func (t Task) Clone() Task {
	c := Task{Name: t.Name, Command: t.Command}
	if t.Requires != nil {
		c.Requires = append([]string(nil), t.Requires...)
	}
	return c
}

// CloneAll 深拷贝Task列表
func CloneAll(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// NamesOf 返回Task列表的名称
func NamesOf(tasks []Task) []string {
	return Job{Tasks: tasks}.Names()
}
