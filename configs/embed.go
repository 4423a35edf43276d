package configs

import _ "embed"

// 开发环境配置：内存存储，不启用中继
//
//go:embed development.json
var developmentConfig []byte

// 默认配置模板
//
//go:embed purchaser.json
var defaultConfig []byte

// GetDevelopmentConfig 获取开发环境配置
func GetDevelopmentConfig() []byte {
	return developmentConfig
}

// GetDefaultConfig 获取默认配置模板
func GetDefaultConfig() []byte {
	return defaultConfig
}
