package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LENAX/job-processing/pkg/cli/output"
	"github.com/LENAX/job-processing/pkg/codec"
	"github.com/LENAX/job-processing/pkg/core/dag"
	"github.com/LENAX/job-processing/pkg/core/engine"
	"github.com/LENAX/job-processing/pkg/core/task"
	"github.com/LENAX/job-processing/pkg/logging"
)

// orderOptions order/inspect命令参数
type orderOptions struct {
	script      bool
	outputPath  string
	strict      bool
	inputFormat string
}

// newOrderCmd 本地排序Job文件
func newOrderCmd(root *rootOptions) *cobra.Command {
	opts := &orderOptions{}

	cmd := &cobra.Command{
		Use:   "order <file>",
		Short: "按依赖关系排序Job文件中的Task",
		Long: `在本地排序Job文件中的Task，不需要连接服务端。

文件格式按扩展名识别（.json/.yaml/.yml/.hcl），"-" 表示从标准输入读取（配合 --input-format）。

示例：
  jobctl order job.yaml
  jobctl order job.json --script
  cat job.hcl | jobctl order - --input-format hcl --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := readJobFile(cmd.InOrStdin(), args[0], opts.inputFormat)
			if err != nil {
				output.Error(cmd.ErrOrStderr(), "读取Job文件失败: %v", err)
				return err
			}

			eng, err := newLocalEngine(cmd, root)
			if err != nil {
				return err
			}
			defer eng.Stop()

			if opts.outputPath != "" {
				return writeOutputFile(cmd, eng, job, root.outputJSON, opts)
			}

			processor := engine.WithCallLogging(eng, eng.Logger())
			ordered, err := processor.OrderTasks(cmd.Context(), job, policyFor(opts.strict))
			if err != nil {
				reportOrderError(cmd.ErrOrStderr(), err)
				return err
			}

			return writeOrdered(cmd.Context(), cmd.OutOrStdout(), processor, ordered, root.outputJSON, opts.script)
		},
	}

	cmd.Flags().BoolVar(&opts.script, "script", false, "输出bash脚本")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "写入文件（默认写入bash脚本，配合--json写入JSON）")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "前置Task不存在时报错")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "输入格式 json|yaml|hcl（默认按扩展名识别）")

	return cmd
}

// newInspectCmd 检查Job依赖图
func newInspectCmd(root *rootOptions) *cobra.Command {
	opts := &orderOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "检查Job文件的依赖图结构",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := readJobFile(cmd.InOrStdin(), args[0], opts.inputFormat)
			if err != nil {
				output.Error(cmd.ErrOrStderr(), "读取Job文件失败: %v", err)
				return err
			}

			eng, err := newLocalEngine(cmd, root)
			if err != nil {
				return err
			}
			defer eng.Stop()

			inspection, err := eng.Inspect(cmd.Context(), job, policyFor(opts.strict))
			if err != nil {
				reportOrderError(cmd.ErrOrStderr(), err)
				return err
			}

			out := cmd.OutOrStdout()
			if root.outputJSON {
				return output.PrintJSON(out, inspection)
			}

			table := output.NewTable([]string{"NAME", "IN_DEGREE", "PREREQUISITES", "DEPENDENTS", "UNRESOLVED"})
			for _, info := range inspection.Tasks {
				table.AddRow([]string{
					info.Name,
					strconv.Itoa(info.InDegree),
					joinOrDash(info.Prerequisites),
					joinOrDash(info.Dependents),
					joinOrDash(info.Unresolved),
				})
			}
			table.Render(out)
			fmt.Fprintf(out, "\nRoots: %s\nLeaves: %s\n", joinOrDash(inspection.Roots), joinOrDash(inspection.Leaves))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "前置Task不存在时报错")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "输入格式 json|yaml|hcl（默认按扩展名识别）")

	return cmd
}

// readJobFile 读取并解码Job文件，path为"-"时从in读取
func readJobFile(in io.Reader, path, inputFormat string) (task.Job, error) {
	var (
		format codec.Format
		data   []byte
		err    error
	)
	if inputFormat != "" {
		if format, err = codec.ParseFormat(inputFormat); err != nil {
			return task.Job{}, err
		}
	}

	if path == "-" {
		if format == "" {
			format = codec.FormatJSON
		}
		data, err = io.ReadAll(in)
		path = "stdin." + string(format)
	} else {
		if format == "" {
			if format, err = codec.FormatFromPath(path); err != nil {
				return task.Job{}, err
			}
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return task.Job{}, err
	}
	return codec.DecodeJob(data, format, path)
}

// newLocalEngine 创建本地排序引擎（不连接Job目录，不发布事件）
func newLocalEngine(cmd *cobra.Command, root *rootOptions) (*engine.Engine, error) {
	eng, err := engine.NewEngineBuilder(root.configPath).
		WithLogger(logging.New("warn", "text", cmd.ErrOrStderr())).
		DisableCatalog().
		DisableEvents().
		Build()
	if err != nil {
		output.Error(cmd.ErrOrStderr(), "创建引擎失败: %v", err)
		return nil, err
	}
	return eng, nil
}

func policyFor(strict bool) dag.UnknownDependencyPolicy {
	if strict {
		return dag.RejectUnknown
	}
	return ""
}

// writeOutputFile 排序并写入文件：默认写入可执行的bash脚本，asJSON时写入JSON
func writeOutputFile(cmd *cobra.Command, eng *engine.Engine, job task.Job, asJSON bool, opts *orderOptions) error {
	format, mode := engine.OutputScript, os.FileMode(0o755)
	if asJSON {
		format, mode = engine.OutputJSON, 0o644
	}

	content, err := eng.Process(cmd.Context(), job, policyFor(opts.strict), format)
	if err != nil {
		reportOrderError(cmd.ErrOrStderr(), err)
		return err
	}
	if err := os.WriteFile(opts.outputPath, content, mode); err != nil {
		output.Error(cmd.ErrOrStderr(), "写入文件失败: %v", err)
		return err
	}
	output.Success(cmd.OutOrStdout(), "已写入 %s（%d 个Task）", opts.outputPath, job.Len())
	return nil
}

// writeOrdered 输出排序结果：表格、JSON或bash脚本
func writeOrdered(ctx context.Context, out io.Writer, processor engine.Processor, ordered []task.Task, asJSON, asScript bool) error {
	switch {
	case asScript:
		_, err := io.WriteString(out, processor.GenerateScript(ctx, ordered))
		return err
	case asJSON:
		return output.PrintJSON(out, codec.ToOrderedTasks(ordered))
	default:
		printOrderedTable(out, ordered)
		return nil
	}
}

func printOrderedTable(w io.Writer, ordered []task.Task) {
	table := output.NewTable([]string{"#", "NAME", "COMMAND"})
	for i, t := range ordered {
		table.AddRow([]string{strconv.Itoa(i + 1), t.Name, t.Command})
	}
	table.Render(w)
}

// reportOrderError 输出排序错误，循环依赖时附带具体的环
func reportOrderError(w io.Writer, err error) {
	output.Error(w, "排序失败: %v", err)

	var cycleErr *dag.CircularDependencyError
	if errors.As(err, &cycleErr) && len(cycleErr.Cycle) > 0 {
		output.Warning(w, "环: %s", cycleErr.CyclePath())
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}
