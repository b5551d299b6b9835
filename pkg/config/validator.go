package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// ValidateFrameworkConfig 校验框架配置合法性
func ValidateFrameworkConfig(cfg *EngineConfig) error {
	if cfg == nil {
		return fmt.Errorf("配置不能为空")
	}
	jp := &cfg.JobProcessing

	// 校验General
	if jp.General.InstanceName == "" {
		return fmt.Errorf("instance_name不能为空")
	}
	if jp.General.LogLevel != "" {
		validLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[jp.General.LogLevel] {
			return fmt.Errorf("log_level必须是debug/info/warn/error之一")
		}
	}
	if jp.General.LogFormat != "" && jp.General.LogFormat != "text" && jp.General.LogFormat != "json" {
		return fmt.Errorf("log_format必须是text/json之一")
	}

	// 校验Server
	if jp.Server.Port <= 0 || jp.Server.Port > 65535 {
		return fmt.Errorf("server.port必须在1-65535之间")
	}
	if jp.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes不能为负数")
	}

	// 校验Storage.Database，type为空表示不启用Job目录
	if jp.Storage.Database.Type != "" {
		validDBTypes := map[string]bool{
			"sqlite":     true,
			"sqlite3":    true,
			"postgres":   true,
			"postgresql": true,
			"mysql":      true,
		}
		if !validDBTypes[jp.Storage.Database.Type] {
			return fmt.Errorf("database.type必须是sqlite/postgres/mysql之一")
		}
		if jp.Storage.Database.DSN == "" {
			return fmt.Errorf("database.dsn不能为空")
		}
		if jp.Storage.Database.MaxOpenConns <= 0 {
			return fmt.Errorf("database.max_open_conns必须大于0")
		}
		if jp.Storage.Database.MaxIdleConns < 0 {
			return fmt.Errorf("database.max_idle_conns不能为负数")
		}
	}

	// 校验Cache
	if jp.Storage.Cache.Enabled && jp.Storage.Cache.CleanCron != "" {
		if _, err := cron.ParseStandard(jp.Storage.Cache.CleanCron); err != nil {
			return fmt.Errorf("cache.clean_cron无效: %w", err)
		}
	}

	// 校验Ordering
	switch jp.Ordering.UnknownDependency {
	case "", "ignore", "reject":
	default:
		return fmt.Errorf("ordering.unknown_dependency必须是ignore/reject之一")
	}
	if jp.Ordering.MaxTasks < 0 {
		return fmt.Errorf("ordering.max_tasks不能为负数")
	}

	return nil
}
