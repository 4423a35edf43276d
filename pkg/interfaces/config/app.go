// Package config 定义配置相关接口
package config

import "github.com/weisyn/purchaser/pkg/types"

// AppOptions 应用配置选项接口
type AppOptions interface {
	// GetAppConfig 获取应用配置
	GetAppConfig() *types.AppConfig
}
