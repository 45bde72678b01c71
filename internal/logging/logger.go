package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/any-hub/remote-view/internal/config"
	"github.com/any-hub/remote-view/internal/version"
)

// ServiceName 写入每条日志的 service 字段。
const ServiceName = "remote-view"

// InitLogger 根据全局配置初始化 JSON 结构化日志；log-file 为空时输出到 stdout。
// 每条日志都带 service 与 version 字段，便于多实例汇聚后区分来源。
func InitLogger(cfg config.GlobalConfig) (*logrus.Logger, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	output, outErr := buildOutput(cfg)
	if outErr != nil {
		fmt.Fprintf(os.Stderr, "logger_fallback: %v\n", outErr)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(output)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	logger.AddHook(serviceHook{version: version.Version})

	logrus.SetFormatter(logger.Formatter)
	logrus.SetOutput(logger.Out)
	logrus.SetLevel(logger.GetLevel())

	if outErr != nil {
		logger.WithFields(logrus.Fields{
			"action": "logger_fallback",
			"path":   cfg.LogFilePath,
		}).Warn(outErr.Error())
	}

	return logger, nil
}

// Discard 返回丢弃全部输出的 logger，供测试和未注入 logger 的组件使用。
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func parseLevel(name string) (logrus.Level, error) {
	if name == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return level, fmt.Errorf("无法解析日志级别: %w", err)
	}
	return level, nil
}

// serviceHook 为所有级别的日志补充 service/version，已有同名字段时不覆盖。
type serviceHook struct {
	version string
}

func (serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = ServiceName
	}
	if _, ok := entry.Data["version"]; !ok {
		entry.Data["version"] = h.version
	}
	return nil
}

// buildOutput 根据配置创建日志输出 Writer；目录不可写时降级到 stdout 并返回错误。
func buildOutput(cfg config.GlobalConfig) (io.Writer, error) {
	if cfg.LogFilePath == "" {
		return os.Stdout, nil
	}

	dir := filepath.Dir(cfg.LogFilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return os.Stdout, fmt.Errorf("创建日志目录失败: %w", err)
	}
	return newRotator(cfg), nil
}

// newRotator 按 log-max-size/log-max-backups 轮转；未配置时沿用 100MB/10 份。
func newRotator(cfg config.GlobalConfig) *lumberjack.Logger {
	maxSize := cfg.LogMaxSize
	if maxSize <= 0 {
		maxSize = 100
	}
	maxBackups := cfg.LogMaxBackups
	if maxBackups <= 0 {
		maxBackups = 10
	}
	return &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   cfg.LogCompress,
		LocalTime:  true,
	}
}
