package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apitypes "github.com/weisyn/purchaser/internal/api/types"
)

// ErrorHandler 错误处理中间件
// 处理器通过 c.Error 登记错误，这里统一转换为 Problem Details 输出
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		problem := apitypes.FromError(err)
		problem.Instance = c.Request.URL.Path
		if requestID := GetRequestID(c); requestID != "" {
			problem.TraceID = requestID
		}

		fields := []zap.Field{
			zap.String("code", problem.Code),
			zap.String("traceId", problem.TraceID),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		}
		if problem.Status >= 500 {
			logger.Error("HTTP error", fields...)
		} else {
			logger.Warn("HTTP error", fields...)
		}
		WriteProblemDetails(c, problem)
	}
}

// WriteProblemDetails 写入 Problem Details 响应
func WriteProblemDetails(c *gin.Context, problem *apitypes.ProblemDetails) {
	c.Header("Content-Type", "application/problem+json")
	c.JSON(problem.Status, problem)
	c.Abort()
}

// WriteError 写入错误响应（自动转换为 Problem Details）
func WriteError(c *gin.Context, code string, userMessage string, detail string, status int, details map[string]interface{}) {
	problem := apitypes.NewProblemDetails(
		code,
		apitypes.LayerAPIGateway,
		userMessage,
		detail,
		status,
		details,
	)
	WriteProblemDetails(c, problem)
}
