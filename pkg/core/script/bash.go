package script

import (
	"strings"

	"github.com/LENAX/job-processing/pkg/core/task"
)

// Shebang bash脚本首行
const Shebang = "#!/usr/bin/env bash"

// RenderBash 把已排序的Task渲染为bash脚本（对外导出）
// 首行为 Shebang，之后每个Task一行 Command，按输入顺序，每行以换行结尾。
// 不做任何转义或校验
func RenderBash(ordered []task.Task) string {
	var b strings.Builder
	b.WriteString(Shebang)
	b.WriteByte('\n')
	for _, t := range ordered {
		b.WriteString(t.Command)
		b.WriteByte('\n')
	}
	return b.String()
}
