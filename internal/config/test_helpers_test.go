package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("testdata", name)
}

// writeTempConfig 以 name 的扩展名决定格式，写入临时目录。
func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

// hostBlock 生成最小可用的 TOML Host 段落，extra 追加在 host 行之后。
func hostBlock(namespace, upstream, extra string) string {
	return fmt.Sprintf("\n[hosts.%s]\nhost = %q\n%s\n", namespace, upstream, extra)
}
