// Package log 提供基于zap的日志实现
// 支持控制台与文件双输出、按大小轮转
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	logconfig "github.com/weisyn/purchaser/internal/config/log"
	logInterface "github.com/weisyn/purchaser/pkg/interfaces/infrastructure/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志级别定义
const (
	DebugLevel = string(logInterface.DebugLevel)
	InfoLevel  = string(logInterface.InfoLevel)
	WarnLevel  = string(logInterface.WarnLevel)
	ErrorLevel = string(logInterface.ErrorLevel)
	FatalLevel = string(logInterface.FatalLevel)
)

var (
	// 全局日志实例
	globalLogger logInterface.Logger
	mu           sync.RWMutex
)

// Logger 实现了log.Logger接口
type Logger struct {
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
}

func init() {
	ResetDefault()
}

// ResetDefault 重置全局日志记录器为默认配置
func ResetDefault() {
	logger, err := New(logconfig.New(nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize default logger: %v\n", err)
		return
	}
	SetLogger(logger)
}

// createFileWriter 创建带轮转的日志文件写入器
func createFileWriter(logPath string, config *logconfig.Config) zapcore.WriteSyncer {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "创建日志目录失败 %s: %v\n", logDir, err)
		return zapcore.AddSync(os.Stderr)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    config.GetMaxSize(),    // megabytes
		MaxBackups: config.GetMaxBackups(), // 最多保留文件数
		MaxAge:     config.GetMaxAge(),     // days
		Compress:   config.IsCompressionEnabled(),
	})
}

// New 根据配置创建新的日志记录器
func New(config *logconfig.Config) (logInterface.Logger, error) {
	level := zap.NewAtomicLevelAt(config.GetZapLevel())

	var cores []zapcore.Core

	// 1. 控制台输出
	outputPath := config.GetFilePath()
	if config.IsConsoleEnabled() || outputPath == "stdout" || outputPath == "stderr" {
		output := zapcore.AddSync(os.Stdout)
		if outputPath == "stderr" {
			output = zapcore.AddSync(os.Stderr)
		}
		cores = append(cores, zapcore.NewCore(config.CreateConsoleEncoder(), output, level))
	}

	// 2. 文件输出（JSON）
	if outputPath != "" && outputPath != "stdout" && outputPath != "stderr" {
		absPath, err := filepath.Abs(outputPath)
		if err != nil {
			return nil, fmt.Errorf("获取日志文件绝对路径失败: %w", err)
		}
		cores = append(cores, zapcore.NewCore(config.CreateFileEncoder(), createFileWriter(absPath, config), level))
	}

	var zapOptions []zap.Option
	if config.IsCallerEnabled() {
		// 跳过一层封装，使调用位置指向业务代码
		zapOptions = append(zapOptions, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if config.IsStacktraceEnabled() {
		zapOptions = append(zapOptions, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	zapLogger := zap.New(zapcore.NewTee(cores...), zapOptions...)

	return &Logger{
		zapLogger: zapLogger,
		sugar:     zapLogger.Sugar(),
	}, nil
}

// NewNop 创建丢弃所有输出的日志记录器
func NewNop() logInterface.Logger {
	zapLogger := zap.NewNop()
	return &Logger{zapLogger: zapLogger, sugar: zapLogger.Sugar()}
}

// FromZap 包装已有的zap日志记录器
func FromZap(zapLogger *zap.Logger) logInterface.Logger {
	if zapLogger == nil {
		return NewNop()
	}
	return &Logger{zapLogger: zapLogger, sugar: zapLogger.Sugar()}
}

// GetZapLogger 获取底层的zap日志记录器
func (l *Logger) GetZapLogger() *zap.Logger {
	return l.zapLogger
}

// SetLogger 设置全局日志记录器
func SetLogger(logger logInterface.Logger) {
	if logger == nil {
		return
	}
	mu.Lock()
	globalLogger = logger
	mu.Unlock()
}

// GetLogger 获取全局日志记录器
func GetLogger() logInterface.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Info 使用全局记录器记录信息级别日志
func Info(msg string) {
	if l := GetLogger(); l != nil {
		l.Info(msg)
	}
}

// Warn 使用全局记录器记录警告级别日志
func Warn(msg string) {
	if l := GetLogger(); l != nil {
		l.Warn(msg)
	}
}

// Error 使用全局记录器记录错误级别日志
func Error(msg string) {
	if l := GetLogger(); l != nil {
		l.Error(msg)
	}
}

// With 基于全局记录器创建带字段的日志记录器
func With(args ...interface{}) logInterface.Logger {
	if l := GetLogger(); l != nil {
		return l.With(args...)
	}
	return NewNop()
}

// Sync 同步全局记录器
func Sync() error {
	if l := GetLogger(); l != nil {
		return l.Sync()
	}
	return nil
}

// 以下为Logger接口实现

func (l *Logger) Debug(msg string)                          { l.sugar.Debug(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(msg string)                           { l.sugar.Info(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(msg string)                           { l.sugar.Warn(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(msg string)                          { l.sugar.Error(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *Logger) Fatal(msg string)                          { l.sugar.Fatal(msg) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// With 创建带结构化字段的子记录器
func (l *Logger) With(args ...interface{}) logInterface.Logger {
	child := l.sugar.With(args...)
	return &Logger{zapLogger: child.Desugar(), sugar: child}
}

// Sync 刷新缓冲
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}
