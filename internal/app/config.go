package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/weisyn/purchaser/pkg/types"
)

// ConfigPathEnv 配置文件路径环境变量，优先级最高
const ConfigPathEnv = "PURCHASER_CONFIG_PATH"

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "configs/purchaser.json"

// ResolveConfigPath 确定配置文件路径：环境变量 > 显式参数 > 默认路径
func ResolveConfigPath(explicit string) string {
	if envPath := os.Getenv(ConfigPathEnv); envPath != "" {
		return envPath
	}
	if explicit != "" {
		return explicit
	}
	return DefaultConfigPath
}

// LoadConfig 读取并解析配置
//
// 零值陷阱处理说明：
// types.AppConfig 的字段均为指针，文件中省略的字段保持 nil，
// 由各配置子模块填充默认值；显式写出的零值（0、false、""）会被采用。
//
// 配置文件不存在时返回空配置；文件存在但无法解析时返回错误。
func LoadConfig(path string, embedded []byte) (*types.AppConfig, error) {
	data := embedded
	if data == nil {
		var err error
		data, err = os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return &types.AppConfig{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
		}
	}

	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return &appConfig, nil
}

// createDataDirectories 根据配置创建数据与日志目录
func createDataDirectories(appConfig *types.AppConfig) error {
	var directories []string

	if appConfig.Storage != nil && appConfig.Storage.DataRoot != nil {
		directories = append(directories, *appConfig.Storage.DataRoot)
	} else if appConfig.DataDir != nil {
		directories = append(directories, *appConfig.DataDir)
	}
	if appConfig.Log != nil && appConfig.Log.FilePath != nil {
		directories = append(directories, filepath.Dir(*appConfig.Log.FilePath))
	}

	for _, dir := range directories {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录 %s 失败: %w", dir, err)
		}
	}
	return nil
}
