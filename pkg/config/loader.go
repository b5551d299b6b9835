package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadEngineConfig 加载框架配置文件
// 支持 ${ENV} 环境变量替换；文件不存在时返回默认配置
func LoadEngineConfig(path string) (*EngineConfig, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := ParseEngineConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return cfg, nil
}

// ParseEngineConfig 解析YAML内容到cfg，之后补齐默认值并校验
func ParseEngineConfig(data []byte, cfg *EngineConfig) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	return ValidateFrameworkConfig(cfg)
}
