package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEngineConfig(t *testing.T) {
	// 创建临时配置文件
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")
	configContent := `
job-processing:
  general:
    instance_name: "test-engine"
    log_level: "debug"
    log_format: "json"
    env: "test"
  server:
    port: 9090
    read_timeout: "5s"
    max_body_bytes: 2048
  storage:
    database:
      type: "sqlite"
      dsn: "./test.db"
      max_open_conns: 5
      max_idle_conns: 2
      conn_max_lifetime: "1h"
      conn_max_idle_time: "30m"
    cache:
      enabled: false
      default_ttl: "2h"
      clean_cron: "@every 1h"
  ordering:
    unknown_dependency: "reject"
    max_tasks: 50
  events:
    enabled: false
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("创建测试配置文件失败: %v", err)
	}

	// 测试加载配置
	cfg, err := LoadEngineConfig(configPath)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	jp := cfg.JobProcessing
	if jp.General.InstanceName != "test-engine" {
		t.Errorf("期望instance_name为test-engine，实际为%s", jp.General.InstanceName)
	}
	if jp.General.LogFormat != "json" {
		t.Errorf("期望log_format为json，实际为%s", jp.General.LogFormat)
	}
	if jp.Server.Port != 9090 || jp.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server配置解析错误: %+v", jp.Server)
	}
	if jp.Server.MaxBodyBytes != 2048 {
		t.Errorf("期望max_body_bytes为2048，实际为%d", jp.Server.MaxBodyBytes)
	}
	if cfg.GetDatabaseType() != "sqlite" || !cfg.CatalogEnabled() {
		t.Errorf("期望database.type为sqlite，实际为%s", cfg.GetDatabaseType())
	}
	if jp.Storage.Cache.Enabled {
		t.Error("期望cache.enabled为false")
	}
	if jp.Storage.Cache.DefaultTTL != 2*time.Hour {
		t.Errorf("期望default_ttl为2h，实际为%v", jp.Storage.Cache.DefaultTTL)
	}
	if jp.Ordering.UnknownDependency != "reject" || cfg.GetMaxTasks() != 50 {
		t.Errorf("ordering配置解析错误: %+v", jp.Ordering)
	}
	if jp.Events.Enabled {
		t.Error("期望events.enabled为false")
	}
}

func TestLoadEngineConfig_WithDefaults(t *testing.T) {
	// 创建最小配置文件（测试默认值填充）
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "minimal.yaml")
	configContent := `
job-processing:
  general:
    env: "test"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("创建测试配置文件失败: %v", err)
	}

	cfg, err := LoadEngineConfig(configPath)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	// 验证默认值
	jp := cfg.JobProcessing
	if jp.General.InstanceName != DefaultInstanceName {
		t.Errorf("期望instance_name默认为%s，实际为%s", DefaultInstanceName, jp.General.InstanceName)
	}
	if jp.Server.Port != DefaultPort {
		t.Errorf("期望port默认为%d，实际为%d", DefaultPort, jp.Server.Port)
	}
	if jp.Server.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Errorf("期望max_body_bytes默认为1MiB，实际为%d", jp.Server.MaxBodyBytes)
	}
	if !jp.Storage.Cache.Enabled || jp.Storage.Cache.CleanCron != DefaultCleanCron {
		t.Errorf("期望缓存默认启用且clean_cron为%s", DefaultCleanCron)
	}
	if jp.Ordering.UnknownDependency != "ignore" {
		t.Errorf("期望unknown_dependency默认为ignore，实际为%s", jp.Ordering.UnknownDependency)
	}
	if cfg.GetMaxTasks() != DefaultMaxTasks {
		t.Errorf("期望max_tasks默认为%d，实际为%d", DefaultMaxTasks, cfg.GetMaxTasks())
	}
	if cfg.CatalogEnabled() {
		t.Error("未配置database.type时不应启用Job目录")
	}
	if !jp.Events.Enabled {
		t.Error("期望events默认启用")
	}
}

func TestLoadEngineConfig_WithEnvVars(t *testing.T) {
	// 设置环境变量
	t.Setenv("TEST_ENV", "test-value")
	t.Setenv("TEST_DB_PATH", "/tmp/test.db")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "env-test.yaml")
	configContent := `
job-processing:
  general:
    instance_name: "${TEST_ENV}"
    env: "${TEST_ENV}"
  storage:
    database:
      type: "sqlite"
      dsn: "${TEST_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("创建测试配置文件失败: %v", err)
	}

	cfg, err := LoadEngineConfig(configPath)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	// 验证环境变量替换
	if cfg.JobProcessing.General.InstanceName != "test-value" {
		t.Errorf("期望instance_name为test-value，实际为%s", cfg.JobProcessing.General.InstanceName)
	}
	if cfg.GetDatabaseDSN() != "/tmp/test.db" {
		t.Errorf("期望dsn为/tmp/test.db，实际为%s", cfg.GetDatabaseDSN())
	}
}

func TestLoadEngineConfig_MissingFile(t *testing.T) {
	cfg, err := LoadEngineConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("文件不存在时应返回默认配置: %v", err)
	}
	if cfg.JobProcessing.Server.Port != DefaultPort {
		t.Errorf("期望默认端口%d，实际为%d", DefaultPort, cfg.JobProcessing.Server.Port)
	}
}

func TestLoadEngineConfig_Invalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	configContent := `
job-processing:
  ordering:
    unknown_dependency: "maybe"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("创建测试配置文件失败: %v", err)
	}

	if _, err := LoadEngineConfig(configPath); err == nil {
		t.Fatal("期望非法unknown_dependency返回错误")
	}
}
