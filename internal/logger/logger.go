package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建同时输出到控制台和日志文件的 logger
// logPath 为空时只输出到控制台；文件以追加方式打开
func New(level, logPath string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.Sampling = nil
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", level, err)
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	if logPath != "" {
		config.OutputPaths = append(config.OutputPaths, logPath)
		config.ErrorOutputPaths = append(config.ErrorOutputPaths, logPath)
	}

	log, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("创建 logger 失败: %w", err)
	}
	return log.Named("bip353-tracker"), nil
}

// Sync 刷新缓冲，忽略 stdout 不支持 fsync 的错误
func Sync(log *zap.Logger) {
	if log != nil {
		_ = log.Sync()
	}
}
