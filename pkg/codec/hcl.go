package codec

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/LENAX/job-processing/pkg/core/task"
)

// hclJobFile HCL Job文件顶层结构
//
//	task "build" {
//	  command  = "make"
//	  requires = ["fetch"]
//	}
type hclJobFile struct {
	Tasks []*hclTask `hcl:"task,block"`
}

type hclTask struct {
	Name     string   `hcl:"name,label"`
	Command  string   `hcl:"command"`
	Requires []string `hcl:"requires,optional"`
}

func decodeHCLJob(data []byte, filename string) (task.Job, error) {
	if filename == "" {
		filename = "job.hcl"
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return task.Job{}, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclJobFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return task.Job{}, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	tasks := make([]task.Task, 0, len(parsed.Tasks))
	for _, t := range parsed.Tasks {
		tasks = append(tasks, task.Task{Name: t.Name, Command: t.Command, Requires: t.Requires})
	}
	return task.NewJob(tasks...), nil
}
