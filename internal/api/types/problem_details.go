// Package types API 层公共类型：RFC7807 Problem Details 与错误映射
package types

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	domain "github.com/weisyn/purchaser/pkg/types"
)

// ProblemDetails Problem Details 结构（基于 RFC7807 + 扩展字段）
type ProblemDetails struct {
	// RFC7807 标准字段
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// 扩展字段
	Code        string                 `json:"code"`
	Layer       string                 `json:"layer"`
	UserMessage string                 `json:"userMessage"`
	Details     map[string]interface{} `json:"details,omitempty"`
	TraceID     string                 `json:"traceId"`
	Timestamp   string                 `json:"timestamp"`
}

// Error 实现 error 接口
func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.UserMessage
}

// WriteJSON 将 Problem Details 写入 HTTP 响应
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewProblemDetails 创建新的 Problem Details
func NewProblemDetails(
	code string,
	layer string,
	userMessage string,
	detail string,
	status int,
	details map[string]interface{},
) *ProblemDetails {
	if details == nil {
		details = make(map[string]interface{})
	}

	return &ProblemDetails{
		Title:       http.StatusText(status),
		Code:        code,
		Layer:       layer,
		UserMessage: userMessage,
		Detail:      detail,
		Status:      status,
		Details:     details,
		TraceID:     uuid.New().String(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// IsProblemDetails 检查错误是否为 Problem Details
func IsProblemDetails(err error) (*ProblemDetails, bool) {
	var pd *ProblemDetails
	if errors.As(err, &pd) {
		return pd, true
	}
	return nil, false
}

// 错误码常量
const (
	// 控制面命令错误
	CodeUnauthorized       = "MANAGER_UNAUTHORIZED"
	CodeNotFound           = "MANAGER_NOT_FOUND"
	CodeInvalidPrincipal   = "MANAGER_INVALID_PRINCIPAL"
	CodeInvalidArgument    = "MANAGER_INVALID_ARGUMENT"
	CodeEncodingFailed     = "MANAGER_ENCODING_FAILED"
	CodeUnknownCommand     = "MANAGER_UNKNOWN_COMMAND"
	CodeUnsupportedCommand = "MANAGER_UNSUPPORTED_COMMAND"
	CodeNotInstantiated    = "MANAGER_NOT_INSTANTIATED"

	// 命令签名错误
	CodeSignatureRequired = "MANAGER_SIGNATURE_REQUIRED"
	CodeInvalidSignature  = "MANAGER_INVALID_SIGNATURE"
	CodeSenderMismatch    = "MANAGER_SENDER_MISMATCH"

	// 通用错误
	CodeCommonValidationError    = "COMMON_VALIDATION_ERROR"
	CodeCommonInternalError      = "COMMON_INTERNAL_ERROR"
	CodeCommonServiceUnavailable = "COMMON_SERVICE_UNAVAILABLE"
	CodeCommonRateLimited        = "COMMON_RATE_LIMITED"
	CodeCommonNotFound           = "COMMON_NOT_FOUND"
	CodeCommonRequestTooLarge    = "COMMON_REQUEST_TOO_LARGE"
	CodeCommonPrivateKey         = "COMMON_PRIVATE_KEY_FORBIDDEN"
)

// Layer 常量
const (
	LayerManagerService = "manager-service"
	LayerAPIGateway     = "api-gateway"
)

// FromError 把控制面错误映射为 Problem Details
//
//	Unauthorized                          -> 401
//	NotFound                              -> 404
//	InvalidPrincipal / InvalidArgument    -> 400
//	Arity / Type / ValueOutOfRange        -> 400
//	UnknownCommand / UnsupportedCommand   -> 400
//	NotInstantiated                       -> 503
//	其他                                  -> 500
func FromError(err error) *ProblemDetails {
	if pd, ok := IsProblemDetails(err); ok {
		return pd
	}

	var (
		code   string
		status int
		msg    string
	)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		code, status, msg = CodeUnauthorized, http.StatusUnauthorized, "调用者不是所有者"
	case errors.Is(err, domain.ErrNotFound):
		code, status, msg = CodeNotFound, http.StatusNotFound, "目标不存在"
	case errors.Is(err, domain.ErrInvalidPrincipal):
		code, status, msg = CodeInvalidPrincipal, http.StatusBadRequest, "地址格式非法"
	case errors.Is(err, domain.ErrInvalidArgument):
		code, status, msg = CodeInvalidArgument, http.StatusBadRequest, "命令参数非法"
	case domain.IsEncodingError(err):
		code, status, msg = CodeEncodingFailed, http.StatusBadRequest, "远程调用参数无法编码"
	case errors.Is(err, domain.ErrUnknownCommand):
		code, status, msg = CodeUnknownCommand, http.StatusBadRequest, "无法识别的命令"
	case errors.Is(err, domain.ErrUnsupportedCommand):
		code, status, msg = CodeUnsupportedCommand, http.StatusBadRequest, "当前变体不支持该命令"
	case errors.Is(err, domain.ErrNotInstantiated):
		code, status, msg = CodeNotInstantiated, http.StatusServiceUnavailable, "控制面尚未初始化"
	default:
		code, status, msg = CodeCommonInternalError, http.StatusInternalServerError, "服务器内部错误，请稍后重试"
	}
	return NewProblemDetails(code, LayerManagerService, msg, err.Error(), status, nil)
}
