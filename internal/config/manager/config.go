// Package manager 控制面（所有者、链路由、远程调用编码）配置
package manager

import (
	"fmt"
	"strings"

	"github.com/weisyn/purchaser/pkg/types"
)

// 控制面变体
const (
	VariantManager   = "manager"   // 完整命令集（含链注册表与远程调用）
	VariantCollector = "collector" // 收集器：本地中继 + 跨链桥转账
)

// ManagerOptions 控制面配置选项
type ManagerOptions struct {
	Variant           string   `json:"variant"`             // manager | collector
	Bech32Prefix      string   `json:"bech32_prefix"`       // 账户地址前缀
	Owners            []string `json:"owners"`              // 初始化时的所有者列表
	RetryDelay        uint64   `json:"retry_delay"`         // 初始化时的重试延迟（外部中继使用）
	PusdDenomTemplate string   `json:"pusd_denom_template"` // pUSD denom 模板，%s 为管理合约地址
}

// Config 控制面配置实现
type Config struct {
	options *ManagerOptions
}

// New 创建控制面配置实现
func New(userConfig *types.UserManagerConfig) *Config {
	options := &ManagerOptions{
		Variant:           defaultVariant,
		Bech32Prefix:      defaultBech32Prefix,
		RetryDelay:        defaultRetryDelay,
		PusdDenomTemplate: defaultPusdDenomTemplate,
	}

	if userConfig != nil {
		if userConfig.Variant != nil {
			options.Variant = strings.ToLower(*userConfig.Variant)
		}
		if userConfig.Bech32Prefix != nil {
			options.Bech32Prefix = *userConfig.Bech32Prefix
		}
		if len(userConfig.Owners) > 0 {
			options.Owners = append([]string(nil), userConfig.Owners...)
		}
		if userConfig.RetryDelay != nil {
			options.RetryDelay = *userConfig.RetryDelay
		}
		if userConfig.PusdDenomTemplate != nil {
			options.PusdDenomTemplate = *userConfig.PusdDenomTemplate
		}
	}

	return &Config{options: options}
}

// GetOptions 获取完整配置选项
func (c *Config) GetOptions() *ManagerOptions {
	return c.options
}

// Validate 校验配置
func (o *ManagerOptions) Validate() error {
	if o.Variant != VariantManager && o.Variant != VariantCollector {
		return fmt.Errorf("unknown manager variant %q", o.Variant)
	}
	if o.Bech32Prefix == "" {
		return fmt.Errorf("bech32_prefix must not be empty")
	}
	if strings.Count(o.PusdDenomTemplate, "%s") != 1 {
		return fmt.Errorf("pusd_denom_template must contain exactly one %%s")
	}
	return nil
}

// PusdDenom 根据管理合约地址生成 pUSD denom
func (o *ManagerOptions) PusdDenom(manager string) string {
	return fmt.Sprintf(o.PusdDenomTemplate, manager)
}
