package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/LENAX/job-processing/pkg/api"
	"github.com/LENAX/job-processing/pkg/core/engine"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	// 命令行参数（host/port未指定时使用配置文件）
	configPath := flag.String("config", "./configs/engine.yaml", "引擎配置文件路径")
	host := flag.String("host", "", "监听地址")
	port := flag.Int("port", 0, "监听端口")
	flag.Parse()

	log.Printf("Job Processing Server v%s (commit %s, built %s)", Version, GitCommit, BuildTime)
	log.Printf("配置文件: %s", *configPath)

	// 1. 构建Engine
	eng, err := engine.NewEngineBuilder(*configPath).Build()
	if err != nil {
		log.Fatalf("创建Engine失败: %v", err)
	}

	// 2. 启动Engine
	ctx := context.Background()
	if err := eng.Start(ctx); err != nil {
		log.Fatalf("启动Engine失败: %v", err)
	}

	// 3. 创建API服务器
	config := api.ServerConfigFrom(eng.Config())
	if *host != "" {
		config.Host = *host
	}
	if *port > 0 {
		config.Port = *port
	}

	apiServer := api.NewAPIServer(eng, config, Version)

	// 4. 在goroutine中启动API服务器
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API服务器错误: %v", err)
		}
	}()

	log.Printf("✅ Job Processing Server started on %s", apiServer.Addr())

	// 5. 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 6. 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.WriteTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("关闭API服务器失败: %v", err)
	}

	eng.Stop()
	log.Println("✅ 服务已停止")
}
