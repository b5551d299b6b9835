package dag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/job-processing/pkg/core/task"
)

func TestBuildGraph(t *testing.T) {
	tasks := []task.Task{
		{Name: "task-1", Command: "touch /tmp/file1"},
		{Name: "task-2", Command: "cat /tmp/file1", Requires: []string{"task-3"}},
		{Name: "task-3", Command: "echo 'Hello World!' > /tmp/file1", Requires: []string{"task-1"}},
		{Name: "task-4", Command: "rm /tmp/file1", Requires: []string{"task-2", "task-3"}},
	}

	g, err := BuildGraph(tasks)
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, []string{"task-1", "task-2", "task-3", "task-4"}, g.Order)

	// 邻接表：前置Task -> 依赖方，按依赖方的Job顺序
	assert.Equal(t, []string{"task-3"}, g.Dependents["task-1"])
	assert.Equal(t, []string{"task-4"}, g.Dependents["task-2"])
	assert.Equal(t, []string{"task-2", "task-4"}, g.Dependents["task-3"])
	assert.Empty(t, g.Dependents["task-4"])

	assert.Equal(t, map[string]int{"task-1": 0, "task-2": 1, "task-3": 1, "task-4": 2}, g.InDegree)
	assert.Empty(t, g.Unresolved)
}

func TestBuildGraph_UnknownDependencyIgnored(t *testing.T) {
	tasks := []task.Task{
		{Name: "a", Command: "a", Requires: []string{"ghost"}},
		{Name: "b", Command: "b", Requires: []string{"a", "phantom", "ghost"}},
	}

	g, err := BuildGraph(tasks)
	require.NoError(t, err)

	// 不存在的前置Task不计入入度
	assert.Equal(t, 0, g.InDegree["a"])
	assert.Equal(t, 1, g.InDegree["b"])
	assert.Equal(t, []string{"ghost"}, g.Unresolved["a"])
	assert.Equal(t, []string{"phantom", "ghost"}, g.Unresolved["b"])
}

func TestBuildGraph_RejectUnknown(t *testing.T) {
	tasks := []task.Task{
		{Name: "a", Command: "a"},
		{Name: "b", Command: "b", Requires: []string{"a", "ghost"}},
	}

	_, err := BuildGraph(tasks, WithUnknownDependencyPolicy(RejectUnknown))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedDependency))

	var unresolved *UnresolvedDependencyError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "b", unresolved.Task)
	assert.Equal(t, "ghost", unresolved.Missing)
}

func TestBuildGraph_EmptyPolicyKeepsDefault(t *testing.T) {
	tasks := []task.Task{{Name: "a", Requires: []string{"ghost"}}}

	g, err := BuildGraph(tasks, WithUnknownDependencyPolicy(""))
	require.NoError(t, err)
	assert.Equal(t, 0, g.InDegree["a"])
}

func TestBuildGraph_DuplicateName(t *testing.T) {
	tasks := []task.Task{
		{Name: "a", Command: "first"},
		{Name: "b", Command: "b"},
		{Name: "a", Command: "second"},
	}

	_, err := BuildGraph(tasks)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTask))

	var invalid *InvalidTaskError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 2, invalid.Index)
	assert.Equal(t, "a", invalid.Name)
}

func TestBuildGraph_EmptyName(t *testing.T) {
	_, err := BuildGraph([]task.Task{{Name: "a"}, {Command: "echo nameless"}})

	var invalid *InvalidTaskError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, invalid.Index)
	assert.Contains(t, err.Error(), "name is required")
}

func TestBuildGraph_DuplicateRequiresCollapse(t *testing.T) {
	tasks := []task.Task{
		{Name: "a"},
		{Name: "b", Requires: []string{"a", "a", "a"}},
	}

	g, err := BuildGraph(tasks)
	require.NoError(t, err)

	// 重复声明只产生一条边
	assert.Equal(t, []string{"b"}, g.Dependents["a"])
	assert.Equal(t, 1, g.InDegree["b"])
}

func TestBuildGraph_DoesNotAliasInput(t *testing.T) {
	requires := []string{"a"}
	tasks := []task.Task{{Name: "a"}, {Name: "b", Requires: requires}}

	g, err := BuildGraph(tasks)
	require.NoError(t, err)

	requires[0] = "mutated"
	assert.Equal(t, []string{"a"}, g.Tasks["b"].Requires)
}

func TestParseUnknownDependencyPolicy(t *testing.T) {
	cases := map[string]struct {
		want UnknownDependencyPolicy
		ok   bool
	}{
		"":       {IgnoreUnknown, true},
		"ignore": {IgnoreUnknown, true},
		"reject": {RejectUnknown, true},
		"strict": {"", false},
	}
	for input, tc := range cases {
		got, ok := ParseUnknownDependencyPolicy(input)
		assert.Equal(t, tc.ok, ok, input)
		assert.Equal(t, tc.want, got, input)
	}
}
