// Package codec 负责Job文件（JSON/YAML/HCL）的解码和排序结果的编码
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/LENAX/job-processing/pkg/core/task"
)

// Format Job文件格式
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// ErrUnsupportedFormat 不支持的格式
var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat 解析格式名称（大小写不敏感，yml视为yaml）
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath 根据文件扩展名推断格式
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: file %s has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// FormatFromContentType 根据HTTP Content-Type推断格式，空值视为JSON
func FormatFromContentType(contentType string) (Format, error) {
	if contentType == "" {
		return FormatJSON, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	switch mediaType {
	case "application/json", "text/json":
		return FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, nil
	case "application/hcl", "text/hcl", "application/x-hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediaType)
	}
}

// DecodeJob 按格式解码Job
// filename 仅用于HCL诊断信息中的位置
func DecodeJob(data []byte, format Format, filename string) (task.Job, error) {
	var job task.Job
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &job); err != nil {
			return task.Job{}, fmt.Errorf("decode json job: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &job); err != nil {
			return task.Job{}, fmt.Errorf("decode yaml job: %w", err)
		}
	case FormatHCL:
		decoded, err := decodeHCLJob(data, filename)
		if err != nil {
			return task.Job{}, err
		}
		job = decoded
	default:
		return task.Job{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return job, nil
}

// OrderedTask 排序结果中的单个Task，不包含Requires
type OrderedTask struct {
	Name    string `json:"name" yaml:"name"`
	Command string `json:"command" yaml:"command"`
}

// ToOrderedTasks 去掉Requires，只保留名称和命令
func ToOrderedTasks(ordered []task.Task) []OrderedTask {
	out := make([]OrderedTask, 0, len(ordered))
	for _, t := range ordered {
		out = append(out, OrderedTask{Name: t.Name, Command: t.Command})
	}
	return out
}

// EncodeOrdered 把排序结果编码为JSON或YAML
func EncodeOrdered(ordered []task.Task, format Format) ([]byte, error) {
	items := ToOrderedTasks(ordered)
	switch format {
	case FormatJSON:
		return json.MarshalIndent(items, "", "  ")
	case FormatYAML:
		return yaml.Marshal(items)
	default:
		return nil, fmt.Errorf("%w: cannot encode %q", ErrUnsupportedFormat, format)
	}
}
