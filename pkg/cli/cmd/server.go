package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LENAX/job-processing/pkg/api"
	"github.com/LENAX/job-processing/pkg/cli/output"
	"github.com/LENAX/job-processing/pkg/core/engine"
)

// defaultConfigPaths 未指定 --config 时依次查找的配置文件
var defaultConfigPaths = []string{
	"./configs/engine.yaml",
	"./config/engine.yaml",
	"./engine.yaml",
}

// newServerCmd server子命令
func newServerCmd(root *rootOptions) *cobra.Command {
	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "服务管理命令",
		Long:  `管理Job Processing HTTP API服务。`,
	}
	serverCmd.AddCommand(newServerStartCmd(root))
	return serverCmd
}

// newServerStartCmd 启动服务
func newServerStartCmd(root *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "启动HTTP API服务",
		Long: `启动Job Processing HTTP API服务。

示例：
  # 使用默认配置启动
  jobctl server start

  # 指定端口启动
  jobctl server start --port 8080

  # 指定配置文件启动
  jobctl server start --config ./configs/engine.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			configPath := root.configPath
			if configPath == "" {
				configPath = findConfig()
			}
			if configPath != "" {
				output.Info(out, "使用配置文件: %s", configPath)
			} else {
				output.Warning(out, "未找到配置文件，使用默认配置")
			}

			// 创建Engine
			eng, err := engine.NewEngineBuilder(configPath).Build()
			if err != nil {
				output.Error(cmd.ErrOrStderr(), "创建Engine失败: %v", err)
				return err
			}

			// 启动Engine
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := eng.Start(ctx); err != nil {
				output.Error(cmd.ErrOrStderr(), "启动Engine失败: %v", err)
				return err
			}
			defer eng.Stop()

			// 命令行参数覆盖配置文件
			serverConfig := api.ServerConfigFrom(eng.Config())
			if cmd.Flags().Changed("host") {
				serverConfig.Host = host
			}
			if cmd.Flags().Changed("port") {
				serverConfig.Port = port
			}

			apiServer := api.NewAPIServer(eng, serverConfig, Version)

			errCh := make(chan error, 1)
			go func() {
				errCh <- apiServer.Start()
			}()

			output.Success(out, "Job Processing Server started on %s", apiServer.Addr())

			// 等待中断信号或服务器退出
			select {
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil {
					output.Error(cmd.ErrOrStderr(), "API服务器错误: %v", err)
					return err
				}
				return nil
			}

			output.Info(out, "正在关闭服务...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.WriteTimeout)
			defer cancel()
			if err := apiServer.Shutdown(shutdownCtx); err != nil {
				output.Error(cmd.ErrOrStderr(), "关闭API服务器失败: %v", err)
				return fmt.Errorf("shutdown: %w", err)
			}

			output.Success(out, "服务已停止")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "监听端口（覆盖配置文件）")
	cmd.Flags().StringVarP(&host, "host", "H", "0.0.0.0", "监听地址（覆盖配置文件）")

	return cmd
}

func findConfig() string {
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
