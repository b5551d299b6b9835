package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootOptions 全局参数
type rootOptions struct {
	serverURL  string
	outputJSON bool
	configPath string
}

// NewRootCmd 创建根命令
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "jobctl",
		Short: "Job Processing CLI - Job任务排序命令行工具",
		Long: `jobctl 是一个按依赖关系排序Job任务的命令行工具。

支持的功能：
  - 本地排序Job文件（JSON/YAML/HCL），输出表格、JSON或bash脚本
  - 检查Job依赖图结构
  - 管理服务端Job定义目录（保存、列出、查看、删除、排序）
  - 启动HTTP API服务

使用示例：
  # 排序本地Job文件
  jobctl order job.yaml

  # 生成bash脚本
  jobctl order job.json --script --output run.sh

  # 保存Job定义到服务端
  jobctl job push nightly.hcl --name nightly

  # 启动HTTP服务
  jobctl server start --port 8080`,
		SilenceUsage: true,
	}

	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&opts.serverURL, "server", "s", "http://localhost:8080", "Job Processing服务器地址")
	rootCmd.PersistentFlags().BoolVarP(&opts.outputJSON, "json", "j", false, "使用JSON格式输出")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "引擎配置文件路径")

	// 添加子命令
	rootCmd.AddCommand(newOrderCmd(opts))
	rootCmd.AddCommand(newInspectCmd(opts))
	rootCmd.AddCommand(newJobCmd(opts))
	rootCmd.AddCommand(newServerCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute 执行根命令
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
