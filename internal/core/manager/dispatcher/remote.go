package dispatcher

import (
	"fmt"

	"github.com/weisyn/purchaser/internal/core/manager/abi"
	"github.com/weisyn/purchaser/internal/core/manager/state"
	"github.com/weisyn/purchaser/pkg/types"
)

// remoteActions 远程函数到结果 action 的映射
var remoteActions = map[string]string{
	abi.FnDeployERC20:               "deploy_paloma_erc20",
	abi.FnSendToken:                 "send_token",
	abi.FnUpdateCompass:             "update_compass",
	abi.FnUpdateRefundWallet:        "update_refund_wallet",
	abi.FnUpdateGasFee:              "update_gas_fee",
	abi.FnUpdateServiceFeeCollector: "update_service_fee_collector",
	abi.FnUpdateServiceFee:          "update_service_fee",
	abi.FnSetPaloma:                 "set_paloma",
}

// remote 解析链路由、编码调用并生成跨链任务消息
//
// 部署类函数使用 compass_job_id，其余使用 main_job_id。
func (d *Dispatcher) remote(s *state.Session, chainID, fn string, values ...interface{}) (types.Response, error) {
	sig, err := abi.Lookup(fn)
	if err != nil {
		return types.Response{}, err
	}
	setting, err := s.Chains().Get(chainID)
	if err != nil {
		return types.Response{}, err
	}
	payload, err := abi.Encode(sig, values...)
	if err != nil {
		return types.Response{}, err
	}

	jobID := setting.MainJobID
	if sig.Class == abi.JobClassCompass {
		jobID = setting.CompassJobID
	}
	return types.NewResponse(remoteActions[fn]).AddMessage(types.NewExecuteJob(jobID, payload)), nil
}

// remoteAddress 单个远端地址参数的远程调用
func (d *Dispatcher) remoteAddress(s *state.Session, chainID, fn, field, value string) (types.Response, error) {
	addr, err := types.ParseEVMAddress(value)
	if err != nil {
		return types.Response{}, fmt.Errorf("%s: %w", field, err)
	}
	return d.remote(s, chainID, fn, addr)
}

func (d *Dispatcher) sendToken(s *state.Session, c SendToken) (types.Response, error) {
	token, err := types.ParseEVMAddress(c.Token)
	if err != nil {
		return types.Response{}, fmt.Errorf("token: %w", err)
	}
	to, err := types.ParseEVMAddress(c.To)
	if err != nil {
		return types.Response{}, fmt.Errorf("to: %w", err)
	}
	if !c.Amount.FitsUint128() {
		return types.Response{}, fmt.Errorf("%w: amount exceeds 128 bits", types.ErrValueOutOfRange)
	}
	if !c.Nonce.FitsUint128() {
		return types.Response{}, fmt.Errorf("%w: nonce exceeds 128 bits", types.ErrValueOutOfRange)
	}
	return d.remote(s, c.ChainID, abi.FnSendToken, token, to, c.Amount, c.Nonce)
}

func (d *Dispatcher) deployRemoteToken(s *state.Session, c DeployRemoteToken) (types.Response, error) {
	blueprint, err := types.ParseEVMAddress(c.Blueprint)
	if err != nil {
		return types.Response{}, fmt.Errorf("blueprint: %w", err)
	}
	return d.remote(s, c.ChainID, abi.FnDeployERC20,
		c.PalomaDenom, c.Name, c.Symbol, c.Decimals, blueprint)
}
