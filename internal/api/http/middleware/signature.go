package middleware

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apitypes "github.com/weisyn/purchaser/internal/api/types"
	"github.com/weisyn/purchaser/pkg/types"
)

// 命令签名请求头
const (
	HeaderSignerPubKey       = "X-Signer-PubKey"       // 33 字节压缩公钥（hex）
	HeaderSignature          = "X-Signature"           // r||s 或 r||s||v（hex）
	HeaderSignatureTimestamp = "X-Signature-Timestamp" // unix 秒
)

// signedDomain 签名摘要前缀，防止签名被挪作他用
const signedDomain = "purchaser-execute\n"

// SignerKey 上下文中已验证签名者的键
const SignerKey = "signer"

// SignatureValidation 命令签名验证中间件
//
// 请求体中的 sender 只是声明；这里要求调用方用对应私钥对
// 时间戳与原始请求体签名，由公钥推导出地址并与 sender 比对。
type SignatureValidation struct {
	logger         *zap.Logger
	validator      *types.AddressValidator
	maxSkew        time.Duration
	maxRequestSize int64
	now            func() time.Time
}

// NewSignatureValidation 创建签名验证中间件
func NewSignatureValidation(logger *zap.Logger, bech32Prefix string, maxSkew time.Duration, maxRequestSize int64) *SignatureValidation {
	return &SignatureValidation{
		logger:         logger,
		validator:      types.NewAddressValidator(bech32Prefix),
		maxSkew:        maxSkew,
		maxRequestSize: maxRequestSize,
		now:            time.Now,
	}
}

// SignatureDigest 计算待签名摘要 keccak256(domain || timestamp || "\n" || body)
func SignatureDigest(timestamp string, body []byte) []byte {
	return crypto.Keccak256([]byte(signedDomain), []byte(timestamp), []byte("\n"), body)
}

// Middleware 返回Gin中间件
// - 拒绝包含私钥的请求
// - 拒绝未签名或签名无效的请求
// - 拒绝签名者与 sender 不一致的请求
func (m *SignatureValidation) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := c.Request.Body
		if m.maxRequestSize > 0 {
			body = http.MaxBytesReader(c.Writer, body, m.maxRequestSize)
		}
		bodyBytes, err := io.ReadAll(body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(c, apitypes.CodeCommonRequestTooLarge, "请求体过大",
					err.Error(), http.StatusRequestEntityTooLarge, map[string]interface{}{"limit": tooLarge.Limit})
				return
			}
			WriteError(c, apitypes.CodeCommonValidationError, "无法读取请求体",
				err.Error(), http.StatusBadRequest, nil)
			return
		}
		// 后续处理器重新读取
		c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		if containsPrivateKey(bodyBytes) {
			m.logger.Warn("Request contains private_key field - REJECTED",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			WriteError(c, apitypes.CodeCommonPrivateKey, "不接受私钥，请在客户端签名",
				"request body carries a private key field", http.StatusForbidden, nil)
			return
		}

		pubHex := c.GetHeader(HeaderSignerPubKey)
		sigHex := c.GetHeader(HeaderSignature)
		ts := c.GetHeader(HeaderSignatureTimestamp)
		if pubHex == "" || sigHex == "" || ts == "" {
			WriteError(c, apitypes.CodeSignatureRequired, "命令请求需要签名",
				"missing "+HeaderSignerPubKey+", "+HeaderSignature+" or "+HeaderSignatureTimestamp,
				http.StatusUnauthorized, nil)
			return
		}

		signer, err := m.verify(pubHex, sigHex, ts, bodyBytes)
		if err != nil {
			m.logger.Warn("Signature verification failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			WriteError(c, apitypes.CodeInvalidSignature, "签名验证失败",
				err.Error(), http.StatusUnauthorized, nil)
			return
		}

		var envelope struct {
			Sender string `json:"sender"`
		}
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			WriteError(c, apitypes.CodeCommonValidationError, "请求格式错误，需要 sender 与 msg 字段",
				err.Error(), http.StatusBadRequest, nil)
			return
		}
		if envelope.Sender != signer.String() {
			m.logger.Warn("Signer does not match sender",
				zap.String("signer", signer.String()),
				zap.String("sender", envelope.Sender),
				zap.String("client_ip", c.ClientIP()))
			WriteError(c, apitypes.CodeSenderMismatch, "签名者与 sender 不一致",
				"signer="+signer.String(), http.StatusForbidden,
				map[string]interface{}{"signer": signer.String()})
			return
		}

		m.logger.Debug("Command signature validated",
			zap.String("signer", signer.String()),
			zap.Int("body_size", len(bodyBytes)))
		c.Set(SignerKey, signer)
		c.Next()
	}
}

func (m *SignatureValidation) verify(pubHex, sigHex, ts string, body []byte) (types.Principal, error) {
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", errors.New("timestamp must be unix seconds")
	}
	if m.maxSkew > 0 {
		skew := m.now().Sub(time.Unix(sec, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > m.maxSkew {
			return "", errors.New("timestamp outside allowed window")
		}
	}

	pub, err := hex.DecodeString(strings.TrimPrefix(pubHex, "0x"))
	if err != nil || len(pub) != 33 {
		return "", errors.New("public key must be 33-byte compressed hex")
	}
	sig, err := hex.DecodeString(strings.TrimPrefix(sigHex, "0x"))
	if err != nil || (len(sig) != 64 && len(sig) != 65) {
		return "", errors.New("signature must be 64 or 65 bytes hex")
	}
	if !crypto.VerifySignature(pub, SignatureDigest(ts, body), sig[:64]) {
		return "", errors.New("signature does not match public key")
	}
	return m.validator.FromPubKey(pub)
}

// containsPrivateKey 检查请求体是否包含私钥字段
func containsPrivateKey(body []byte) bool {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return false
	}

	dangerousFields := []string{
		"private_key",
		"privateKey",
		"privKey",
		"priv_key",
		"secret_key",
		"secretKey",
	}
	for _, field := range dangerousFields {
		if _, exists := data[field]; exists {
			return true
		}
	}
	return false
}

// GetSigner 获取已验证的签名者
func GetSigner(c *gin.Context) (types.Principal, bool) {
	v, ok := c.Get(SignerKey)
	if !ok {
		return "", false
	}
	p, ok := v.(types.Principal)
	return p, ok
}
