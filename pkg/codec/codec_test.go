package codec

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/job-processing/pkg/core/task"
)

var wantJob = task.Job{Tasks: []task.Task{
	{Name: "task-1", Command: "touch /tmp/file1"},
	{Name: "task-2", Command: "cat /tmp/file1", Requires: []string{"task-3"}},
	{Name: "task-3", Command: "echo 'Hello World!' > /tmp/file1", Requires: []string{"task-1"}},
}}

func TestDecodeJob(t *testing.T) {
	cases := []struct {
		name   string
		format Format
		data   string
	}{
		{
			name:   "JSON",
			format: FormatJSON,
			data: `{"tasks":[
				{"name":"task-1","command":"touch /tmp/file1"},
				{"name":"task-2","command":"cat /tmp/file1","requires":["task-3"]},
				{"name":"task-3","command":"echo 'Hello World!' > /tmp/file1","requires":["task-1"]}
			]}`,
		},
		{
			name:   "YAML",
			format: FormatYAML,
			data: `tasks:
  - name: task-1
    command: touch /tmp/file1
  - name: task-2
    command: cat /tmp/file1
    requires: [task-3]
  - name: task-3
    command: "echo 'Hello World!' > /tmp/file1"
    requires:
      - task-1
`,
		},
		{
			name:   "HCL",
			format: FormatHCL,
			data: `
task "task-1" {
  command = "touch /tmp/file1"
}

task "task-2" {
  command  = "cat /tmp/file1"
  requires = ["task-3"]
}

task "task-3" {
  command  = "echo 'Hello World!' > /tmp/file1"
  requires = ["task-1"]
}
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job, err := DecodeJob([]byte(tc.data), tc.format, "job."+string(tc.format))
			require.NoError(t, err)
			if diff := cmp.Diff(wantJob, job); diff != "" {
				t.Fatalf("解码结果不一致 (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeJob_Errors(t *testing.T) {
	_, err := DecodeJob([]byte(`{"tasks":`), FormatJSON, "")
	assert.Error(t, err)

	_, err = DecodeJob([]byte(`task "a" {}`), FormatHCL, "")
	assert.Error(t, err, "缺少command应返回错误")

	_, err = DecodeJob([]byte(`x`), Format("toml"), "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatDetection(t *testing.T) {
	f, err := FormatFromPath("jobs/build.yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = FormatFromPath("build.HCL")
	require.NoError(t, err)
	assert.Equal(t, FormatHCL, f)

	_, err = FormatFromPath("Makefile")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	f, err = FormatFromContentType("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = FormatFromContentType("application/yaml; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = FormatFromContentType("application/hcl")
	require.NoError(t, err)
	assert.Equal(t, FormatHCL, f)

	_, err = FormatFromContentType("text/html")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestEncodeOrdered(t *testing.T) {
	ordered := []task.Task{
		{Name: "task-1", Command: "touch /tmp/file1"},
		{Name: "task-3", Command: "echo hi", Requires: []string{"task-1"}},
	}

	data, err := EncodeOrdered(ordered, FormatJSON)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "requires")

	var items []OrderedTask
	require.NoError(t, json.Unmarshal(data, &items))
	assert.Equal(t, []OrderedTask{
		{Name: "task-1", Command: "touch /tmp/file1"},
		{Name: "task-3", Command: "echo hi"},
	}, items)

	yamlData, err := EncodeOrdered(ordered, FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(yamlData), "name: task-3")
	assert.NotContains(t, string(yamlData), "requires")

	_, err = EncodeOrdered(ordered, FormatHCL)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
