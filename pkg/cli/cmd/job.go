package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LENAX/job-processing/pkg/api/dto"
	"github.com/LENAX/job-processing/pkg/cli/jobclient"
	"github.com/LENAX/job-processing/pkg/cli/output"
)

// newJobCmd job子命令（服务端Job定义目录）
func newJobCmd(root *rootOptions) *cobra.Command {
	jobCmd := &cobra.Command{
		Use:   "job",
		Short: "Job定义管理命令",
		Long:  `管理服务端保存的Job定义，包括保存、列出、查看、删除和排序。`,
	}

	jobCmd.AddCommand(newJobPushCmd(root))
	jobCmd.AddCommand(newJobListCmd(root))
	jobCmd.AddCommand(newJobGetCmd(root))
	jobCmd.AddCommand(newJobDeleteCmd(root))
	jobCmd.AddCommand(newJobOrderCmd(root))

	return jobCmd
}

// newJobPushCmd 保存Job定义
func newJobPushCmd(root *rootOptions) *cobra.Command {
	var name, description, inputFormat string

	cmd := &cobra.Command{
		Use:   "push <file>",
		Short: "保存Job定义（默认以文件名作为Job名称）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := readJobFile(cmd.InOrStdin(), args[0], inputFormat)
			if err != nil {
				output.Error(cmd.ErrOrStderr(), "读取Job文件失败: %v", err)
				return err
			}
			if name == "" {
				name = jobNameFromPath(args[0])
			}
			if name == "" {
				err := fmt.Errorf("job name is required, use --name")
				output.Error(cmd.ErrOrStderr(), "%v", err)
				return err
			}

			client := jobclient.New(root.serverURL)
			saved, err := client.PushJob(cmd.Context(), dto.UpsertJobRequest{
				Name:        name,
				Description: description,
				Tasks:       job.Tasks,
			})
			if err != nil {
				output.Error(cmd.ErrOrStderr(), "保存失败: %v", err)
				return err
			}

			if root.outputJSON {
				return output.PrintJSON(cmd.OutOrStdout(), saved)
			}
			output.Success(cmd.OutOrStdout(), "Job定义已保存: %s（%d 个Task）", saved.Name, saved.TaskCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Job名称")
	cmd.Flags().StringVar(&description, "description", "", "Job描述")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "输入格式 json|yaml|hcl（默认按扩展名识别）")

	return cmd
}

// newJobListCmd 列出Job定义
func newJobListCmd(root *rootOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "列出所有Job定义",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := jobclient.New(root.serverURL)
			result, err := client.ListJobs(cmd.Context(), limit, offset)
			if err != nil {
				output.Error(cmd.ErrOrStderr(), "查询失败: %v", err)
				return err
			}

			out := cmd.OutOrStdout()
			if root.outputJSON {
				return output.PrintJSON(out, result)
			}

			if len(result.Items) == 0 {
				output.Info(out, "暂无Job定义")
				return nil
			}

			table := output.NewTable([]string{"NAME", "TASKS", "DESCRIPTION", "UPDATED"})
			for _, job := range result.Items {
				description := "-"
				if job.Description != "" {
					description = truncate(job.Description, 40)
				}
				table.AddRow([]string{
					job.Name,
					strconv.Itoa(job.TaskCount),
					description,
					job.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			table.Render(out)
			fmt.Fprintf(out, "\n总计: %d 条记录\n", result.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "返回记录数量限制")
	cmd.Flags().IntVar(&offset, "offset", 0, "偏移量")

	return cmd
}

// newJobGetCmd 查看Job定义
func newJobGetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "查看Job定义详情",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := jobclient.New(root.serverURL)
			job, err := client.GetJob(cmd.Context(), args[0])
			if err != nil {
				output.Error(cmd.ErrOrStderr(), "查询失败: %v", err)
				return err
			}

			out := cmd.OutOrStdout()
			if root.outputJSON {
				return output.PrintJSON(out, job)
			}

			fmt.Fprintf(out, "Job:         %s\n", job.Name)
			if job.Description != "" {
				fmt.Fprintf(out, "Description: %s\n", job.Description)
			}
			fmt.Fprintf(out, "Tasks:       %d\n", job.TaskCount)
			fmt.Fprintf(out, "Created:     %s\n", job.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Updated:     %s\n\n", job.UpdatedAt.Local().Format("2006-01-02 15:04:05"))

			table := output.NewTable([]string{"NAME", "REQUIRES", "COMMAND"})
			for _, t := range job.Tasks {
				table.AddRow([]string{t.Name, joinOrDash(t.Requires), t.Command})
			}
			table.Render(out)
			return nil
		},
	}
}

// newJobDeleteCmd 删除Job定义
func newJobDeleteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "删除Job定义",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := jobclient.New(root.serverURL)
			if err := client.DeleteJob(cmd.Context(), args[0]); err != nil {
				output.Error(cmd.ErrOrStderr(), "删除失败: %v", err)
				return err
			}
			output.Success(cmd.OutOrStdout(), "Job定义已删除: %s", args[0])
			return nil
		},
	}
}

// newJobOrderCmd 排序服务端保存的Job定义
func newJobOrderCmd(root *rootOptions) *cobra.Command {
	var script, strict bool

	cmd := &cobra.Command{
		Use:   "order <name>",
		Short: "排序服务端保存的Job定义",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := jobclient.New(root.serverURL)
			out := cmd.OutOrStdout()

			if script {
				text, err := client.OrderJobScript(cmd.Context(), args[0], policyFor(strict))
				if err != nil {
					output.Error(cmd.ErrOrStderr(), "排序失败: %v", err)
					return err
				}
				_, err = io.WriteString(out, text)
				return err
			}

			result, err := client.OrderJob(cmd.Context(), args[0], policyFor(strict))
			if err != nil {
				output.Error(cmd.ErrOrStderr(), "排序失败: %v", err)
				return err
			}
			if root.outputJSON {
				return output.PrintJSON(out, result.Tasks)
			}

			table := output.NewTable([]string{"#", "NAME", "COMMAND"})
			for i, t := range result.Tasks {
				table.AddRow([]string{strconv.Itoa(i + 1), t.Name, t.Command})
			}
			table.Render(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&script, "script", false, "输出bash脚本")
	cmd.Flags().BoolVar(&strict, "strict", false, "前置Task不存在时报错")

	return cmd
}

// jobNameFromPath 以文件名（去掉扩展名）作为Job名称
func jobNameFromPath(path string) string {
	if path == "-" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
