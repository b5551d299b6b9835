package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/job-processing/pkg/api"
	"github.com/LENAX/job-processing/pkg/api/dto"
	"github.com/LENAX/job-processing/pkg/cli/jobclient"
	"github.com/LENAX/job-processing/pkg/codec"
	"github.com/LENAX/job-processing/pkg/config"
	"github.com/LENAX/job-processing/pkg/core/dag"
	"github.com/LENAX/job-processing/pkg/core/engine"
	"github.com/LENAX/job-processing/pkg/logging"
)

func init() {
	color.NoColor = true
}

const exampleJobJSON = `{
  "tasks": [
    {"name": "task-1", "command": "touch /tmp/file1"},
    {"name": "task-2", "command": "cat /tmp/file1", "requires": ["task-3"]},
    {"name": "task-3", "command": "echo 'Hello World!' > /tmp/file1", "requires": ["task-1"]},
    {"name": "task-4", "command": "rm /tmp/file1", "requires": ["task-2", "task-3"]}
  ]
}`

const exampleScript = "#!/usr/bin/env bash\n" +
	"touch /tmp/file1\n" +
	"echo 'Hello World!' > /tmp/file1\n" +
	"cat /tmp/file1\n" +
	"rm /tmp/file1\n"

const exampleJobYAML = `tasks:
  - name: build
    command: make
    requires: [deps]
  - name: deps
    command: go mod download
`

const cyclicJobJSON = `{"tasks":[{"name":"A","command":"a","requires":["B"]},{"name":"B","command":"b","requires":["A"]}]}`

// runCmd 执行命令并返回stdout和stderr
func runCmd(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := runCmd(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Job Processing CLI")
	assert.Contains(t, stdout, Version)
}

// TestOrderCmd 测试本地排序命令
func TestOrderCmd(t *testing.T) {
	jobFile := writeFile(t, "job.json", exampleJobJSON)

	t.Run("默认输出表格", func(t *testing.T) {
		stdout, _, err := runCmd(t, "", "order", jobFile)
		require.NoError(t, err)

		i1 := strings.Index(stdout, "task-1")
		i3 := strings.Index(stdout, "task-3")
		i2 := strings.Index(stdout, "task-2")
		i4 := strings.Index(stdout, "task-4")
		require.True(t, i1 > 0 && i3 > 0 && i2 > 0 && i4 > 0, stdout)
		assert.True(t, i1 < i3 && i3 < i2 && i2 < i4, "表格顺序错误: %s", stdout)
	})

	t.Run("--script 输出bash脚本", func(t *testing.T) {
		stdout, _, err := runCmd(t, "", "order", jobFile, "--script")
		require.NoError(t, err)
		assert.Equal(t, exampleScript, stdout)
	})

	t.Run("--json 输出JSON", func(t *testing.T) {
		stdout, _, err := runCmd(t, "", "order", jobFile, "--json")
		require.NoError(t, err)

		var got []codec.OrderedTask
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		require.Len(t, got, 4)
		assert.Equal(t, "task-3", got[1].Name)
	})

	t.Run("从标准输入读取YAML", func(t *testing.T) {
		stdout, _, err := runCmd(t, exampleJobYAML, "order", "-", "--input-format", "yaml", "--script")
		require.NoError(t, err)
		assert.Equal(t, "#!/usr/bin/env bash\ngo mod download\nmake\n", stdout)
	})

	t.Run("HCL文件", func(t *testing.T) {
		hclFile := writeFile(t, "job.hcl", `
task "build" {
  command  = "make"
  requires = ["deps"]
}

task "deps" {
  command = "go mod download"
}
`)
		stdout, _, err := runCmd(t, "", "order", hclFile, "--script")
		require.NoError(t, err)
		assert.Equal(t, "#!/usr/bin/env bash\ngo mod download\nmake\n", stdout)
	})

	t.Run("--output 写入脚本文件", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "run.sh")
		stdout, _, err := runCmd(t, "", "order", jobFile, "--output", target)
		require.NoError(t, err)
		assert.Contains(t, stdout, "run.sh")

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, exampleScript, string(data))

		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0o100, "脚本应可执行")
	})

	t.Run("循环依赖返回错误并输出环", func(t *testing.T) {
		cyclic := writeFile(t, "cyclic.json", cyclicJobJSON)
		_, stderr, err := runCmd(t, "", "order", cyclic)
		require.ErrorIs(t, err, dag.ErrCircularDependency)
		assert.Contains(t, stderr, "Circular dependency detected")
		assert.Contains(t, stderr, "环: ")
	})

	t.Run("--strict 拒绝未知依赖", func(t *testing.T) {
		unknown := writeFile(t, "unknown.json", `{"tasks":[{"name":"a","command":"a","requires":["ghost"]}]}`)

		_, _, err := runCmd(t, "", "order", unknown)
		require.NoError(t, err)

		_, _, err = runCmd(t, "", "order", unknown, "--strict")
		require.ErrorIs(t, err, dag.ErrUnresolvedDependency)
	})

	t.Run("不支持的扩展名", func(t *testing.T) {
		txt := writeFile(t, "job.txt", exampleJobJSON)
		_, _, err := runCmd(t, "", "order", txt)
		require.ErrorIs(t, err, codec.ErrUnsupportedFormat)
	})

	t.Run("使用配置文件中的默认策略", func(t *testing.T) {
		cfgFile := writeFile(t, "engine.yaml", "job-processing:\n  ordering:\n    unknown_dependency: reject\n")
		unknown := writeFile(t, "unknown.json", `{"tasks":[{"name":"a","command":"a","requires":["ghost"]}]}`)

		_, _, err := runCmd(t, "", "--config", cfgFile, "order", unknown)
		require.ErrorIs(t, err, dag.ErrUnresolvedDependency)
	})
}

func TestInspectCmd(t *testing.T) {
	jobFile := writeFile(t, "job.json", exampleJobJSON)

	t.Run("JSON输出", func(t *testing.T) {
		stdout, _, err := runCmd(t, "", "inspect", jobFile, "--json")
		require.NoError(t, err)

		var inspection dag.Inspection
		require.NoError(t, json.Unmarshal([]byte(stdout), &inspection))
		assert.Equal(t, []string{"task-1"}, inspection.Roots)
		assert.Equal(t, []string{"task-4"}, inspection.Leaves)
	})

	t.Run("表格输出", func(t *testing.T) {
		stdout, _, err := runCmd(t, "", "inspect", jobFile)
		require.NoError(t, err)
		assert.Contains(t, stdout, "IN_DEGREE")
		assert.Contains(t, stdout, "Roots: task-1")
		assert.Contains(t, stdout, "Leaves: task-4")
	})
}

// newTestServer 启动带sqlite内存目录的测试服务
func newTestServer(t *testing.T) string {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.JobProcessing.Events.Enabled = false
	cfg.JobProcessing.Storage.Database.Type = "sqlite"
	cfg.JobProcessing.Storage.Database.DSN = ":memory:"

	eng, err := engine.NewEngineBuilder("").
		WithConfig(cfg).
		WithLogger(logging.Discard()).
		Build()
	require.NoError(t, err)
	t.Cleanup(eng.Stop)

	server := httptest.NewServer(api.SetupRouter(eng, "test"))
	t.Cleanup(server.Close)
	return server.URL
}

// TestJobCmd 测试服务端Job定义管理命令
func TestJobCmd(t *testing.T) {
	serverURL := newTestServer(t)
	jobFile := writeFile(t, "nightly.yaml", exampleJobYAML)

	t.Run("push 以文件名作为Job名称", func(t *testing.T) {
		stdout, _, err := runCmd(t, "", "-s", serverURL, "job", "push", jobFile, "--description", "nightly build")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Job定义已保存: nightly")
	})

	t.Run("push 循环依赖被拒绝", func(t *testing.T) {
		cyclic := writeFile(t, "broken.json", cyclicJobJSON)
		_, stderr, err := runCmd(t, "", "-s", serverURL, "job", "push", cyclic)
		require.Error(t, err)
		assert.Contains(t, stderr, "Circular dependency detected")

		var apiErr *jobclient.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 422, apiErr.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		stdout, _, err := runCmd(t, "", "-s", serverURL, "job", "list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "nightly")
		assert.Contains(t, stdout, "总计: 1 条记录")

		jsonOut, _, err := runCmd(t, "", "-s", serverURL, "job", "list", "--json")
		require.NoError(t, err)
		var list dto.ListResponse[dto.JobSummary]
		require.NoError(t, json.Unmarshal([]byte(jsonOut), &list))
		assert.Equal(t, 1, list.Total)
	})

	t.Run("get", func(t *testing.T) {
		stdout, _, err := runCmd(t, "", "-s", serverURL, "job", "get", "nightly")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Description: nightly build")
		assert.Contains(t, stdout, "go mod download")
	})

	t.Run("order", func(t *testing.T) {
		stdout, _, err := runCmd(t, "", "-s", serverURL, "job", "order", "nightly", "--script")
		require.NoError(t, err)
		assert.Equal(t, "#!/usr/bin/env bash\ngo mod download\nmake\n", stdout)

		jsonOut, _, err := runCmd(t, "", "-s", serverURL, "-j", "job", "order", "nightly")
		require.NoError(t, err)
		var tasks []codec.OrderedTask
		require.NoError(t, json.Unmarshal([]byte(jsonOut), &tasks))
		assert.Equal(t, "deps", tasks[0].Name)
	})

	t.Run("delete", func(t *testing.T) {
		_, _, err := runCmd(t, "", "-s", serverURL, "job", "delete", "nightly")
		require.NoError(t, err)

		_, _, err = runCmd(t, "", "-s", serverURL, "job", "get", "nightly")
		assert.True(t, jobclient.IsNotFound(err))
	})
}

func TestReadJobFile(t *testing.T) {
	t.Run("标准输入默认JSON", func(t *testing.T) {
		job, err := readJobFile(strings.NewReader(exampleJobJSON), "-", "")
		require.NoError(t, err)
		assert.Equal(t, 4, job.Len())
	})

	t.Run("--input-format 覆盖扩展名", func(t *testing.T) {
		path := writeFile(t, "job.txt", exampleJobYAML)
		job, err := readJobFile(io.MultiReader(), path, "yml")
		require.NoError(t, err)
		assert.Equal(t, []string{"build", "deps"}, job.Names())
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := readJobFile(nil, filepath.Join(t.TempDir(), "missing.json"), "")
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestJobNameFromPath(t *testing.T) {
	assert.Equal(t, "nightly", jobNameFromPath("/tmp/jobs/nightly.yaml"))
	assert.Equal(t, "", jobNameFromPath("-"))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
}
