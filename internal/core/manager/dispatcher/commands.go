package dispatcher

import (
	"github.com/weisyn/purchaser/pkg/types"
)

// 命令名（JSON 信封中的键）
const (
	NameAddOwner                  = "add_owner"
	NameRemoveOwner               = "remove_owner"
	NameSetChainSetting           = "set_chain_setting"
	NameUpdateConfig              = "update_config"
	NameExchange                  = "exchange"
	NameSendToken                 = "send_token"
	NameDeployRemoteToken         = "deploy_paloma_erc20"
	NameUpdateCompass             = "update_compass"
	NameUpdateRefundWallet        = "update_refund_wallet"
	NameUpdateGasFee              = "update_gas_fee"
	NameUpdateServiceFeeCollector = "update_service_fee_collector"
	NameUpdateServiceFee          = "update_service_fee"
	NameSetRemoteOwner            = "set_paloma"
	NameWithdrawPusd              = "withdraw_pusd"
	NameReWithdrawPusd            = "re_withdraw_pusd"
	NameCancelWithdrawPusd        = "cancel_withdraw_pusd"
	NameSendToEvm                 = "send_to_evm"
	NameCancelTx                  = "cancel_tx"
)

// Command 控制面命令
// 只有本包内的类型可以实现该接口
type Command interface {
	command()
	// Action 命令名，与 JSON 信封中的键一致
	Action() string
}

// ============================================================================
//                                管理类命令
// ============================================================================

// AddOwner 追加所有者，已存在的忽略
type AddOwner struct {
	Owners []string `json:"owners"`
}

// RemoveOwner 移除所有者
type RemoveOwner struct {
	Owner string `json:"owner"`
}

// SetChainSetting 写入链路由
type SetChainSetting struct {
	ChainID      string `json:"chain_id"`
	CompassJobID string `json:"compass_job_id"`
	MainJobID    string `json:"main_job_id"`
}

// UpdateConfig 修改重试间隔，字段为空时不变
type UpdateConfig struct {
	RetryDelay *uint64 `json:"retry_delay,omitempty"`
}

// ============================================================================
//                                本地中继命令
// ============================================================================

// Exchange 通过 DEX 路由合约执行多跳兑换
type Exchange struct {
	DexRouter      string                `json:"dex_router"`
	Operations     []types.SwapOperation `json:"operations"`
	MinimumReceive *types.Uint           `json:"minimum_receive,omitempty"`
	To             *string               `json:"to,omitempty"`
	MaxSpread      *types.Decimal        `json:"max_spread,omitempty"`
	Funds          []types.Coin          `json:"funds"`
}

// WithdrawPusd 从 pUSD 管理合约提取到目标链
type WithdrawPusd struct {
	PusdManager string     `json:"pusd_manager"`
	ChainID     string     `json:"chain_id"`
	Recipient   string     `json:"recipient"`
	Amount      types.Uint `json:"amount"`
}

// ReWithdrawPusd 重新发起失败的提取
type ReWithdrawPusd struct {
	PusdManager string `json:"pusd_manager"`
	Nonce       uint64 `json:"nonce"`
}

// CancelWithdrawPusd 取消提取
type CancelWithdrawPusd struct {
	PusdManager string `json:"pusd_manager"`
	Nonce       uint64 `json:"nonce"`
}

// ============================================================================
//                                远程调用命令
// ============================================================================

// SendToken 远端转账，amount 与 nonce 限定在 128 位内
type SendToken struct {
	ChainID string     `json:"chain_id"`
	Token   string     `json:"token"`
	To      string     `json:"to"`
	Amount  types.Uint `json:"amount"`
	Nonce   types.Uint `json:"nonce"`
}

// DeployRemoteToken 在目标链部署映射代币
// Decimals 的位宽由编码器按 uint8 检查
type DeployRemoteToken struct {
	ChainID     string `json:"chain_id"`
	PalomaDenom string `json:"paloma_denom"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint64 `json:"decimals"`
	Blueprint   string `json:"blueprint"`
}

// UpdateCompass 更新目标链 compass 合约地址
type UpdateCompass struct {
	ChainID    string `json:"chain_id"`
	NewCompass string `json:"new_compass"`
}

// UpdateRefundWallet 更新退款钱包
type UpdateRefundWallet struct {
	ChainID         string `json:"chain_id"`
	NewRefundWallet string `json:"new_refund_wallet"`
}

// UpdateGasFee 更新 gas 费
type UpdateGasFee struct {
	ChainID   string     `json:"chain_id"`
	NewGasFee types.Uint `json:"new_gas_fee"`
}

// UpdateServiceFeeCollector 更新服务费收款地址
type UpdateServiceFeeCollector struct {
	ChainID                string `json:"chain_id"`
	NewServiceFeeCollector string `json:"new_service_fee_collector"`
}

// UpdateServiceFee 更新服务费
type UpdateServiceFee struct {
	ChainID       string     `json:"chain_id"`
	NewServiceFee types.Uint `json:"new_service_fee"`
}

// SetRemoteOwner 让目标链合约认领本控制面（set_paloma）
type SetRemoteOwner struct {
	ChainID string `json:"chain_id"`
}

// ============================================================================
//                                跨链桥命令
// ============================================================================

// SendToEvm 经跨链桥向 EVM 地址转账
type SendToEvm struct {
	Recipient        string `json:"recipient"`
	Amount           string `json:"amount"`
	ChainReferenceID string `json:"chain_reference_id"`
}

// CancelTx 取消尚未打包的跨链桥转账
type CancelTx struct {
	TransactionID uint64 `json:"transaction_id"`
}

func (AddOwner) command()                  {}
func (RemoveOwner) command()               {}
func (SetChainSetting) command()           {}
func (UpdateConfig) command()              {}
func (Exchange) command()                  {}
func (WithdrawPusd) command()              {}
func (ReWithdrawPusd) command()            {}
func (CancelWithdrawPusd) command()        {}
func (SendToken) command()                 {}
func (DeployRemoteToken) command()         {}
func (UpdateCompass) command()             {}
func (UpdateRefundWallet) command()        {}
func (UpdateGasFee) command()              {}
func (UpdateServiceFeeCollector) command() {}
func (UpdateServiceFee) command()          {}
func (SetRemoteOwner) command()            {}
func (SendToEvm) command()                 {}
func (CancelTx) command()                  {}

func (AddOwner) Action() string                  { return NameAddOwner }
func (RemoveOwner) Action() string               { return NameRemoveOwner }
func (SetChainSetting) Action() string           { return NameSetChainSetting }
func (UpdateConfig) Action() string              { return NameUpdateConfig }
func (Exchange) Action() string                  { return NameExchange }
func (WithdrawPusd) Action() string              { return NameWithdrawPusd }
func (ReWithdrawPusd) Action() string            { return NameReWithdrawPusd }
func (CancelWithdrawPusd) Action() string        { return NameCancelWithdrawPusd }
func (SendToken) Action() string                 { return NameSendToken }
func (DeployRemoteToken) Action() string         { return NameDeployRemoteToken }
func (UpdateCompass) Action() string             { return NameUpdateCompass }
func (UpdateRefundWallet) Action() string        { return NameUpdateRefundWallet }
func (UpdateGasFee) Action() string              { return NameUpdateGasFee }
func (UpdateServiceFeeCollector) Action() string { return NameUpdateServiceFeeCollector }
func (UpdateServiceFee) Action() string          { return NameUpdateServiceFee }
func (SetRemoteOwner) Action() string            { return NameSetRemoteOwner }
func (SendToEvm) Action() string                 { return NameSendToEvm }
func (CancelTx) Action() string                  { return NameCancelTx }

// AllCommands 每种命令的零值，按命令名注册
func AllCommands() []Command {
	return []Command{
		AddOwner{},
		RemoveOwner{},
		SetChainSetting{},
		UpdateConfig{},
		Exchange{},
		WithdrawPusd{},
		ReWithdrawPusd{},
		CancelWithdrawPusd{},
		SendToken{},
		DeployRemoteToken{},
		UpdateCompass{},
		UpdateRefundWallet{},
		UpdateGasFee{},
		UpdateServiceFeeCollector{},
		UpdateServiceFee{},
		SetRemoteOwner{},
		SendToEvm{},
		CancelTx{},
	}
}
