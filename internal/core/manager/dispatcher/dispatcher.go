// Package dispatcher 控制面命令分发
//
// 每条命令按固定顺序处理：
//  1. 变体检查：当前变体不支持的命令直接拒绝，不读取任何状态
//  2. 授权：调用者必须在所有者集合中
//  3. 执行：本地中继、远程调用编码或管理类修改
//
// 任何一步失败都返回错误，由调用方丢弃整个事务。分发器本身不记录日志，
// 结果只通过 Response 的属性描述。
package dispatcher

import (
	"fmt"

	"github.com/weisyn/purchaser/internal/core/manager/abi"
	"github.com/weisyn/purchaser/internal/core/manager/state"
	"github.com/weisyn/purchaser/pkg/types"
)

// Variant 控制面变体
type Variant string

const (
	// VariantManager 完整命令集
	VariantManager Variant = "manager"
	// VariantCollector 收集器：本地中继、跨链桥与所有者管理
	VariantCollector Variant = "collector"
)

var collectorCommands = map[string]bool{
	NameExchange:           true,
	NameWithdrawPusd:       true,
	NameReWithdrawPusd:     true,
	NameCancelWithdrawPusd: true,
	NameSendToEvm:          true,
	NameCancelTx:           true,
	NameAddOwner:           true,
	NameRemoveOwner:        true,
}

// Supports 变体是否支持该命令
func (v Variant) Supports(action string) bool {
	switch v {
	case VariantCollector:
		return collectorCommands[action]
	case VariantManager:
		return action != NameSendToEvm && action != NameCancelTx
	default:
		return false
	}
}

// Env 命令执行环境
// Funds 随命令附带，分发器不使用
type Env struct {
	Sender types.Principal
	Funds  []types.Coin
}

// Options 分发器选项
type Options struct {
	Variant   Variant
	Validator *types.AddressValidator
	// PusdDenom 由 pUSD 管理合约地址生成 denom，为空时使用 factory/<addr>/upusd
	PusdDenom func(manager string) string
}

// Dispatcher 命令分发器，无内部状态，可并发使用
type Dispatcher struct {
	variant   Variant
	validator *types.AddressValidator
	pusdDenom func(string) string
}

// New 创建分发器
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		variant:   opts.Variant,
		validator: opts.Validator,
		pusdDenom: opts.PusdDenom,
	}
	if d.variant == "" {
		d.variant = VariantManager
	}
	if d.validator == nil {
		d.validator = types.NewAddressValidator("paloma")
	}
	if d.pusdDenom == nil {
		d.pusdDenom = func(m string) string { return "factory/" + m + "/upusd" }
	}
	return d
}

// Variant 当前变体
func (d *Dispatcher) Variant() Variant {
	return d.variant
}

// Dispatch 执行一条命令
func (d *Dispatcher) Dispatch(env Env, s *state.Session, cmd Command) (types.Response, error) {
	if cmd == nil {
		return types.Response{}, fmt.Errorf("%w: nil", types.ErrUnknownCommand)
	}
	if !d.variant.Supports(cmd.Action()) {
		return types.Response{}, fmt.Errorf("%w: %s (variant=%s)", types.ErrUnsupportedCommand, cmd.Action(), d.variant)
	}
	if err := s.Owners().Authorize(env.Sender); err != nil {
		return types.Response{}, err
	}

	switch c := cmd.(type) {
	case AddOwner:
		return d.addOwner(s, c)
	case RemoveOwner:
		return d.removeOwner(s, c)
	case SetChainSetting:
		return d.setChainSetting(s, c)
	case UpdateConfig:
		if c.RetryDelay != nil {
			s.SetRetryDelay(*c.RetryDelay)
		}
		return types.NewResponse("update_config"), nil
	case Exchange:
		return d.exchange(c)
	case WithdrawPusd:
		return d.withdrawPusd(c)
	case ReWithdrawPusd:
		return d.pusdRelay(c.PusdManager, "re_withdraw", c.Nonce, "re_withdraw_pusd")
	case CancelWithdrawPusd:
		return d.pusdRelay(c.PusdManager, "cancel_withdraw", c.Nonce, "cancel_withdraw_pusd")
	case SendToken:
		return d.sendToken(s, c)
	case DeployRemoteToken:
		return d.deployRemoteToken(s, c)
	case UpdateCompass:
		resp, err := d.remoteAddress(s, c.ChainID, abi.FnUpdateCompass, "new_compass", c.NewCompass)
		if err != nil {
			return types.Response{}, err
		}
		return resp.AddAttribute("chain_id", c.ChainID).AddAttribute("new_compass", c.NewCompass), nil
	case UpdateRefundWallet:
		return d.remoteAddress(s, c.ChainID, abi.FnUpdateRefundWallet, "new_refund_wallet", c.NewRefundWallet)
	case UpdateGasFee:
		return d.remote(s, c.ChainID, abi.FnUpdateGasFee, c.NewGasFee)
	case UpdateServiceFeeCollector:
		return d.remoteAddress(s, c.ChainID, abi.FnUpdateServiceFeeCollector, "new_service_fee_collector", c.NewServiceFeeCollector)
	case UpdateServiceFee:
		return d.remote(s, c.ChainID, abi.FnUpdateServiceFee, c.NewServiceFee)
	case SetRemoteOwner:
		return d.remote(s, c.ChainID, abi.FnSetPaloma)
	case SendToEvm:
		return types.NewResponse("send_to_evm").AddMessage(types.NewSkyway(types.SkywayMsg{
			SendTx: &types.SendTx{
				RemoteChainDestinationAddress: c.Recipient,
				Amount:                        c.Amount,
				ChainReferenceID:              c.ChainReferenceID,
			},
		})), nil
	case CancelTx:
		return types.NewResponse("cancel_tx").AddMessage(types.NewSkyway(types.SkywayMsg{
			CancelTx: &types.CancelTx{TransactionID: c.TransactionID},
		})), nil
	default:
		return types.Response{}, fmt.Errorf("%w: %T", types.ErrUnknownCommand, cmd)
	}
}

// ============================================================================
//                                管理类
// ============================================================================

func (d *Dispatcher) addOwner(s *state.Session, c AddOwner) (types.Response, error) {
	// 先整体校验，任一非法则不做任何追加
	principals, err := d.validator.ValidateAll(c.Owners)
	if err != nil {
		return types.Response{}, err
	}
	for _, p := range principals {
		s.Owners().Add(p)
	}
	return types.NewResponse("update_config"), nil
}

func (d *Dispatcher) removeOwner(s *state.Session, c RemoveOwner) (types.Response, error) {
	p, err := d.validator.Validate(c.Owner)
	if err != nil {
		return types.Response{}, err
	}
	if err := s.Owners().Remove(p); err != nil {
		return types.Response{}, err
	}
	return types.NewResponse("update_config"), nil
}

// 链标识不做格式校验，空串也是合法键
func (d *Dispatcher) setChainSetting(s *state.Session, c SetChainSetting) (types.Response, error) {
	err := s.Chains().Set(c.ChainID, types.ChainSetting{
		CompassJobID: c.CompassJobID,
		MainJobID:    c.MainJobID,
	})
	if err != nil {
		return types.Response{}, err
	}
	return types.NewResponse("set_chain_setting"), nil
}

// ============================================================================
//                                本地中继
// ============================================================================

type swapOperationsMsg struct {
	ExecuteSwapOperations executeSwapOperations `json:"execute_swap_operations"`
}

type executeSwapOperations struct {
	Operations     []types.SwapOperation `json:"operations"`
	MinimumReceive *types.Uint           `json:"minimum_receive"`
	To             *string               `json:"to"`
	MaxSpread      *types.Decimal        `json:"max_spread"`
}

type withdrawMsg struct {
	Withdraw withdrawBody `json:"withdraw"`
}

type withdrawBody struct {
	ChainID   string `json:"chain_id"`
	Recipient string `json:"recipient"`
}

type nonceBody struct {
	Nonce uint64 `json:"nonce"`
}

func (d *Dispatcher) exchange(c Exchange) (types.Response, error) {
	router, err := d.validator.Validate(c.DexRouter)
	if err != nil {
		return types.Response{}, err
	}
	if c.MinimumReceive != nil && !c.MinimumReceive.FitsUint128() {
		return types.Response{}, fmt.Errorf("%w: minimum_receive exceeds 128 bits", types.ErrValueOutOfRange)
	}
	if c.MaxSpread != nil {
		if err := c.MaxSpread.Validate(); err != nil {
			return types.Response{}, err
		}
	}
	ops := c.Operations
	if ops == nil {
		ops = []types.SwapOperation{}
	}
	msg, err := types.NewWasmExecute(string(router), swapOperationsMsg{
		ExecuteSwapOperations: executeSwapOperations{
			Operations:     ops,
			MinimumReceive: c.MinimumReceive,
			To:             c.To,
			MaxSpread:      c.MaxSpread,
		},
	}, c.Funds)
	if err != nil {
		return types.Response{}, fmt.Errorf("构造兑换消息失败: %w", err)
	}
	return types.NewResponse("exchange").AddMessage(msg), nil
}

func (d *Dispatcher) withdrawPusd(c WithdrawPusd) (types.Response, error) {
	manager, err := d.validator.Validate(c.PusdManager)
	if err != nil {
		return types.Response{}, err
	}
	if !c.Amount.FitsUint128() {
		return types.Response{}, fmt.Errorf("%w: amount exceeds 128 bits", types.ErrValueOutOfRange)
	}
	funds := []types.Coin{{Denom: d.pusdDenom(string(manager)), Amount: c.Amount}}
	msg, err := types.NewWasmExecute(string(manager), withdrawMsg{
		Withdraw: withdrawBody{ChainID: c.ChainID, Recipient: c.Recipient},
	}, funds)
	if err != nil {
		return types.Response{}, fmt.Errorf("构造提取消息失败: %w", err)
	}
	return types.NewResponse("withdraw_pusd").AddMessage(msg), nil
}

func (d *Dispatcher) pusdRelay(pusdManager, method string, nonce uint64, action string) (types.Response, error) {
	manager, err := d.validator.Validate(pusdManager)
	if err != nil {
		return types.Response{}, err
	}
	body := map[string]nonceBody{method: {Nonce: nonce}}
	msg, err := types.NewWasmExecute(string(manager), body, nil)
	if err != nil {
		return types.Response{}, fmt.Errorf("构造 %s 消息失败: %w", method, err)
	}
	return types.NewResponse(action).AddMessage(msg), nil
}
