// Package utils provides path manipulation utility functions.
package utils

import (
	"os"
	"path/filepath"
)

// GetProjectRoot 获取项目根目录的绝对路径
// 优先使用 PURCHASER_HOME，其次向上查找 go.mod，最后回退到当前工作目录
func GetProjectRoot() string {
	if root := os.Getenv("PURCHASER_HOME"); root != "" {
		return root
	}

	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	wd := dir

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return wd
}

// ResolveDataPath 解析数据目录路径为绝对路径
// 相对路径基于项目根目录解析
func ResolveDataPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(GetProjectRoot(), path)
}

// EnsureDir 确保目录存在，如果不存在则创建
func EnsureDir(path string) error {
	//nolint:gosec // G301: 数据目录需要用户可读权限
	return os.MkdirAll(path, 0755)
}
