package config

import (
	"testing"
)

func TestValidateFrameworkConfig(t *testing.T) {
	valid := func() *EngineConfig {
		cfg := NewDefaultConfig()
		cfg.JobProcessing.Storage.Database.Type = "sqlite"
		cfg.JobProcessing.Storage.Database.DSN = "./test.db"
		return cfg
	}

	tests := []struct {
		name    string
		cfg     *EngineConfig
		wantErr bool
	}{
		{
			name:    "有效配置",
			cfg:     valid(),
			wantErr: false,
		},
		{
			name:    "默认配置（不启用Job目录）",
			cfg:     NewDefaultConfig(),
			wantErr: false,
		},
		{
			name:    "空配置",
			cfg:     nil,
			wantErr: true,
		},
		{
			name: "无效的数据库类型",
			cfg: func() *EngineConfig {
				cfg := valid()
				cfg.JobProcessing.Storage.Database.Type = "invalid"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "缺少DSN",
			cfg: func() *EngineConfig {
				cfg := valid()
				cfg.JobProcessing.Storage.Database.DSN = ""
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "无效的日志级别",
			cfg: func() *EngineConfig {
				cfg := valid()
				cfg.JobProcessing.General.LogLevel = "trace"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "无效的日志格式",
			cfg: func() *EngineConfig {
				cfg := valid()
				cfg.JobProcessing.General.LogFormat = "xml"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "无效的端口",
			cfg: func() *EngineConfig {
				cfg := valid()
				cfg.JobProcessing.Server.Port = 70000
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "无效的清理cron表达式",
			cfg: func() *EngineConfig {
				cfg := valid()
				cfg.JobProcessing.Storage.Cache.CleanCron = "every now and then"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "无效的未知依赖策略",
			cfg: func() *EngineConfig {
				cfg := valid()
				cfg.JobProcessing.Ordering.UnknownDependency = "warn"
				return cfg
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFrameworkConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFrameworkConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
