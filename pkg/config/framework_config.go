package config

import (
	"time"
)

// EngineConfig 服务框架配置（对外导出）
type EngineConfig struct {
	JobProcessing struct {
		General struct {
			InstanceName string `yaml:"instance_name"`
			LogLevel     string `yaml:"log_level"`
			LogFormat    string `yaml:"log_format"`
			Env          string `yaml:"env"`
		} `yaml:"general"`
		Server struct {
			Host         string        `yaml:"host"`
			Port         int           `yaml:"port"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			MaxBodyBytes int64         `yaml:"max_body_bytes"`
		} `yaml:"server"`
		Storage struct {
			Database struct {
				Type            string        `yaml:"type"`
				DSN             string        `yaml:"dsn"`
				MaxOpenConns    int           `yaml:"max_open_conns"`
				MaxIdleConns    int           `yaml:"max_idle_conns"`
				ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
				ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
			} `yaml:"database"`
			Cache struct {
				Enabled    bool          `yaml:"enabled"`
				DefaultTTL time.Duration `yaml:"default_ttl"`
				CleanCron  string        `yaml:"clean_cron"`
			} `yaml:"cache"`
		} `yaml:"storage"`
		Ordering struct {
			UnknownDependency string `yaml:"unknown_dependency"`
			MaxTasks          int    `yaml:"max_tasks"`
		} `yaml:"ordering"`
		Events struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"events"`
	} `yaml:"job-processing"`
}

// 默认值
const (
	DefaultInstanceName = "job-processing"
	DefaultPort         = 8080
	DefaultMaxBodyBytes = 1 << 20
	DefaultMaxTasks     = 10000
	DefaultCleanCron    = "@every 30m"
)

// NewDefaultConfig 创建填充了默认值的配置
func NewDefaultConfig() *EngineConfig {
	cfg := &EngineConfig{}
	cfg.JobProcessing.Storage.Cache.Enabled = true
	cfg.JobProcessing.Events.Enabled = true
	cfg.ApplyDefaults()
	return cfg
}

// GetDatabaseType 获取数据库类型
func (c *EngineConfig) GetDatabaseType() string {
	return c.JobProcessing.Storage.Database.Type
}

// GetDatabaseDSN 获取数据库DSN
func (c *EngineConfig) GetDatabaseDSN() string {
	return c.JobProcessing.Storage.Database.DSN
}

// CatalogEnabled 是否启用Job定义目录（database.type为空时不启用）
func (c *EngineConfig) CatalogEnabled() bool {
	return c.JobProcessing.Storage.Database.Type != ""
}

// GetMaxTasks 获取单个Job允许的最大Task数
func (c *EngineConfig) GetMaxTasks() int {
	maxTasks := c.JobProcessing.Ordering.MaxTasks
	if maxTasks <= 0 {
		return DefaultMaxTasks
	}
	return maxTasks
}

// ApplyDefaults 应用默认值
func (c *EngineConfig) ApplyDefaults() {
	jp := &c.JobProcessing

	// General默认值
	if jp.General.InstanceName == "" {
		jp.General.InstanceName = DefaultInstanceName
	}
	if jp.General.LogLevel == "" {
		jp.General.LogLevel = "info"
	}
	if jp.General.LogFormat == "" {
		jp.General.LogFormat = "text"
	}
	if jp.General.Env == "" {
		jp.General.Env = "dev"
	}

	// Server默认值
	if jp.Server.Host == "" {
		jp.Server.Host = "0.0.0.0"
	}
	if jp.Server.Port <= 0 {
		jp.Server.Port = DefaultPort
	}
	if jp.Server.ReadTimeout <= 0 {
		jp.Server.ReadTimeout = 30 * time.Second
	}
	if jp.Server.WriteTimeout <= 0 {
		jp.Server.WriteTimeout = 30 * time.Second
	}
	if jp.Server.MaxBodyBytes <= 0 {
		jp.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	// Database默认值
	if jp.Storage.Database.MaxOpenConns <= 0 {
		jp.Storage.Database.MaxOpenConns = 10
	}
	if jp.Storage.Database.MaxIdleConns <= 0 {
		jp.Storage.Database.MaxIdleConns = 5
	}
	if jp.Storage.Database.ConnMaxLifetime <= 0 {
		jp.Storage.Database.ConnMaxLifetime = 2 * time.Hour
	}
	if jp.Storage.Database.ConnMaxIdleTime <= 0 {
		jp.Storage.Database.ConnMaxIdleTime = 1 * time.Hour
	}

	// Cache默认值
	if jp.Storage.Cache.DefaultTTL <= 0 {
		jp.Storage.Cache.DefaultTTL = 1 * time.Hour
	}
	if jp.Storage.Cache.CleanCron == "" {
		jp.Storage.Cache.CleanCron = DefaultCleanCron
	}

	// Ordering默认值
	if jp.Ordering.UnknownDependency == "" {
		jp.Ordering.UnknownDependency = "ignore"
	}
	if jp.Ordering.MaxTasks <= 0 {
		jp.Ordering.MaxTasks = DefaultMaxTasks
	}
}
