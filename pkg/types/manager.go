package types

import (
	"encoding/json"
)

// State 控制面持久化单例：所有者集合与重试间隔
// retry_delay 由外部中继/收集器消费，本系统不解释其含义
type State struct {
	Owners     []Principal `json:"owners"`
	RetryDelay uint64      `json:"retry_delay"`
}

// Clone 深拷贝
func (s State) Clone() State {
	owners := make([]Principal, len(s.Owners))
	copy(owners, s.Owners)
	return State{Owners: owners, RetryDelay: s.RetryDelay}
}

// ChainSetting 单条目标链的路由元数据
//   - CompassJobID: 部署类远程调用使用的任务ID
//   - MainJobID:    其他运营类远程调用使用的任务ID
type ChainSetting struct {
	CompassJobID string `json:"compass_job_id"`
	MainJobID    string `json:"main_job_id"`
}

// ContractVersion 合约名称与版本记录（初始化与迁移时写入）
type ContractVersion struct {
	Contract string `json:"contract"`
	Version  string `json:"version"`
}

// Coin 附带的资金
type Coin struct {
	Denom  string `json:"denom"`
	Amount Uint   `json:"amount"`
}

// AssetInfo 资产描述：合约代币或原生代币二选一
type AssetInfo struct {
	Token       *TokenAsset  `json:"token,omitempty"`
	NativeToken *NativeAsset `json:"native_token,omitempty"`
}

// TokenAsset 合约代币
type TokenAsset struct {
	ContractAddr string `json:"contract_addr"`
}

// NativeAsset 原生代币
type NativeAsset struct {
	Denom string `json:"denom"`
}

// SwapOperation 单步兑换操作
type SwapOperation struct {
	AstroSwap *AstroSwap `json:"astro_swap,omitempty"`
}

// AstroSwap 兑换路由中的一跳
type AstroSwap struct {
	OfferAssetInfo AssetInfo `json:"offer_asset_info"`
	AskAssetInfo   AssetInfo `json:"ask_asset_info"`
}

// ============================================================================
//                               发出的消息
// ============================================================================

// CosmosMsg 命令提交后交给宿主投递的消息，三种形态互斥
type CosmosMsg struct {
	Wasm   *WasmMsg   `json:"wasm,omitempty"`
	Custom *PalomaMsg `json:"custom,omitempty"`
}

// WasmMsg 同账本合约调用
type WasmMsg struct {
	Execute *WasmExecuteMsg `json:"execute,omitempty"`
}

// WasmExecuteMsg 调用同账本合约，消息体为该合约原生理解的 JSON
type WasmExecuteMsg struct {
	ContractAddr string `json:"contract_addr"`
	Msg          []byte `json:"msg"`
	Funds        []Coin `json:"funds"`
}

// PalomaMsg 宿主链自定义消息
type PalomaMsg struct {
	SchedulerMsg *SchedulerMsg `json:"scheduler_msg,omitempty"`
	SkywayMsg    *SkywayMsg    `json:"skyway_msg,omitempty"`
}

// SchedulerMsg 交给跨链任务调度器的消息
type SchedulerMsg struct {
	ExecuteJob ExecuteJob `json:"execute_job"`
}

// ExecuteJob 即 EncodedCall：任务ID + 字节精确的远程调用编码
type ExecuteJob struct {
	JobID   string `json:"job_id"`
	Payload []byte `json:"payload"`
}

// SkywayMsg 跨链桥消息（收集器变体使用）
type SkywayMsg struct {
	SendTx   *SendTx   `json:"send_tx,omitempty"`
	CancelTx *CancelTx `json:"cancel_tx,omitempty"`
}

// SendTx 发往 EVM 链的转账
type SendTx struct {
	RemoteChainDestinationAddress string `json:"remote_chain_destination_address"`
	Amount                        string `json:"amount"`
	ChainReferenceID              string `json:"chain_reference_id"`
}

// CancelTx 取消尚未批处理的转账
type CancelTx struct {
	TransactionID uint64 `json:"transaction_id"`
}

// NewWasmExecute 构造同账本合约调用消息
func NewWasmExecute(contract string, msg interface{}, funds []Coin) (CosmosMsg, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return CosmosMsg{}, err
	}
	if funds == nil {
		funds = []Coin{}
	}
	return CosmosMsg{Wasm: &WasmMsg{Execute: &WasmExecuteMsg{
		ContractAddr: contract,
		Msg:          body,
		Funds:        funds,
	}}}, nil
}

// NewExecuteJob 构造跨链任务消息
func NewExecuteJob(jobID string, payload []byte) CosmosMsg {
	return CosmosMsg{Custom: &PalomaMsg{SchedulerMsg: &SchedulerMsg{
		ExecuteJob: ExecuteJob{JobID: jobID, Payload: payload},
	}}}
}

// NewSkyway 构造跨链桥消息
func NewSkyway(msg SkywayMsg) CosmosMsg {
	return CosmosMsg{Custom: &PalomaMsg{SkywayMsg: &msg}}
}

// ExecuteJob 若消息为跨链任务则返回它
func (m CosmosMsg) ExecuteJob() (ExecuteJob, bool) {
	if m.Custom == nil || m.Custom.SchedulerMsg == nil {
		return ExecuteJob{}, false
	}
	return m.Custom.SchedulerMsg.ExecuteJob, true
}

// Kind 消息类别，用于日志与指标
func (m CosmosMsg) Kind() string {
	switch {
	case m.Wasm != nil:
		return "wasm"
	case m.Custom != nil && m.Custom.SchedulerMsg != nil:
		return "scheduler"
	case m.Custom != nil && m.Custom.SkywayMsg != nil:
		return "skyway"
	default:
		return "unknown"
	}
}

// Attribute 结果属性
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response 命令成功后的结果
type Response struct {
	Messages   []CosmosMsg `json:"messages"`
	Attributes []Attribute `json:"attributes"`
}

// NewResponse 创建带 action 属性的结果
func NewResponse(action string) Response {
	return Response{
		Messages:   []CosmosMsg{},
		Attributes: []Attribute{{Key: "action", Value: action}},
	}
}

// AddMessage 追加消息
func (r Response) AddMessage(m CosmosMsg) Response {
	r.Messages = append(r.Messages, m)
	return r
}

// AddAttribute 追加属性
func (r Response) AddAttribute(key, value string) Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// Action 返回 action 属性值
func (r Response) Action() string {
	for _, a := range r.Attributes {
		if a.Key == "action" {
			return a.Value
		}
	}
	return ""
}
