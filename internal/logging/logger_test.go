package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/any-hub/remote-view/internal/config"
	"github.com/any-hub/remote-view/internal/version"
)

func TestConfigureDefaultsToStdout(t *testing.T) {
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "info"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("未指定文件时应输出到 stdout")
	}
}

func TestEmptyLevelFallsBackToInfo(t *testing.T) {
	logger, err := InitLogger(config.GlobalConfig{})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.GetLevel().String() != "info" {
		t.Fatalf("空日志级别应回退到 info，得到 %s", logger.GetLevel())
	}
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := InitLogger(config.GlobalConfig{LogLevel: "loud"}); err == nil {
		t.Fatalf("未知日志级别应返回错误")
	}
}

func TestInitLoggerFallbackOnPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root 不受目录权限限制")
	}
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.Chmod(blocked, 0o000); err != nil {
		t.Fatalf("设置目录权限失败: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(blocked, 0o755) })

	cfg := config.GlobalConfig{
		LogLevel:    "info",
		LogFilePath: filepath.Join(blocked, "sub", "remote-view.log"),
	}
	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("初始化不应失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("fallback 时应退回 stdout")
	}
}

func TestConfigureCreatesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remote-view.log")
	cfg := config.GlobalConfig{LogLevel: "debug", LogFilePath: path}
	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	logger.Info("test")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("预期创建日志文件: %v", err)
	}
}

func TestDiscardWritesNothing(t *testing.T) {
	if Discard().Out != io.Discard {
		t.Fatalf("Discard logger 应写入 io.Discard")
	}
}

func TestResolveFields(t *testing.T) {
	fields := ResolveFields("specific", "dasLamm", "cached", true)
	if fields["namespace"] != "specific" || fields["cache_hit"] != true || fields["action"] != "resolve" {
		t.Fatalf("字段错误: %v", fields)
	}
}

func TestEntriesCarryServiceAndVersion(t *testing.T) {
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "info"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.WithField("service", "override").Info("hello")
	logger.Info("plain")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("期望 2 行日志，得到 %d", len(lines))
	}
	var first, second map[string]any
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatalf("日志不是 JSON: %v", err)
	}
	if err := json.Unmarshal(lines[1], &second); err != nil {
		t.Fatalf("日志不是 JSON: %v", err)
	}
	if first["service"] != "override" {
		t.Fatalf("已有 service 字段不应被覆盖: %v", first)
	}
	if second["service"] != ServiceName || second["version"] != version.Version {
		t.Fatalf("缺少 service/version 字段: %v", second)
	}
}

func TestRotatorDefaults(t *testing.T) {
	rotator := newRotator(config.GlobalConfig{LogFilePath: "/tmp/remote-view.log", LogCompress: true})
	if rotator.MaxSize != 100 || rotator.MaxBackups != 10 {
		t.Fatalf("未配置时应使用 100MB/10 份，得到 %d/%d", rotator.MaxSize, rotator.MaxBackups)
	}
	if !rotator.Compress {
		t.Fatalf("log-compress 应透传")
	}
}
