package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "5s"、"1m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// DefaultNamespace 是未显式声明命名空间时使用的 hosts 键。
const DefaultNamespace = "default"

// GlobalConfig 描述进程级参数，启动后不再修改。
type GlobalConfig struct {
	RemoteDelimiter   string   `mapstructure:"remote-delimiter"`
	IgnoreURLSuffix   []string `mapstructure:"ignore-url-suffix"`
	IgnoreURLs        []string `mapstructure:"ignore-urls"`
	ViewFolder        string   `mapstructure:"view-folder"`
	ViewPaths         []string `mapstructure:"view-paths"`
	ViewExtensions    []string `mapstructure:"view-extensions"`
	FilenameStrategy  string   `mapstructure:"filename-strategy"`
	FilenameSuffix    string   `mapstructure:"filename-suffix"`
	Timeout           Duration `mapstructure:"timeout"`
	ConnectTimeout    Duration `mapstructure:"connect-timeout"`
	ListenPort        int      `mapstructure:"listen-port"`
	WarmupConcurrency int      `mapstructure:"warmup-concurrency"`
	LogLevel          string   `mapstructure:"log-level"`
	LogFilePath       string   `mapstructure:"log-file"`
	LogMaxSize        int      `mapstructure:"log-max-size"`
	LogMaxBackups     int      `mapstructure:"log-max-backups"`
	LogCompress       bool     `mapstructure:"log-compress"`
}

// HostConfig 描述单个命名空间的上游站点及其过滤、映射规则。
type HostConfig struct {
	Host            string            `mapstructure:"host"`
	Cache           bool              `mapstructure:"cache"`
	RequestOptions  map[string]any    `mapstructure:"request_options"`
	Mapping         map[string]string `mapstructure:"mapping"`
	IgnoreURLSuffix []string          `mapstructure:"ignore-url-suffix"`
	IgnoreURLs      []string          `mapstructure:"ignore-urls"`
}

// ModifierConfig 声明一个基于表达式的 URL 修饰器，按出现顺序组成修饰链。
type ModifierConfig struct {
	Name  string `mapstructure:"name"`
	When  string `mapstructure:"when"`
	Query string `mapstructure:"query"`
	Break bool   `mapstructure:"break"`
}

// ResponseHandlerConfig 为指定状态码注册静态内容替换。Content 与 File 二选一。
type ResponseHandlerConfig struct {
	Status  []int  `mapstructure:"status"`
	Content string `mapstructure:"content"`
	File    string `mapstructure:"file"`
}

// Config 是配置文件映射的整体结构。
type Config struct {
	Global           GlobalConfig            `mapstructure:",squash"`
	Hosts            map[string]HostConfig   `mapstructure:"hosts"`
	Modifiers        []ModifierConfig        `mapstructure:"url-modifiers"`
	ResponseHandlers []ResponseHandlerConfig `mapstructure:"response-handlers"`
}

// Namespaces 返回排序后的命名空间列表，供诊断与预热按固定顺序遍历。
func (c *Config) Namespaces() []string {
	if c == nil || len(c.Hosts) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.Hosts))
	for name := range c.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MappingKeys 返回 Host 映射表的键，按字典序排列。
func (h HostConfig) MappingKeys() []string {
	if len(h.Mapping) == 0 {
		return nil
	}
	keys := make([]string, 0, len(h.Mapping))
	for key := range h.Mapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CacheMode 输出 `cached` 或 `passthrough`，供日志字段使用。
func (h HostConfig) CacheMode() string {
	if h.Cache {
		return "cached"
	}
	return "passthrough"
}

// CacheModes 返回所有 Host 的缓存模式摘要，例如 default:cached。
func CacheModes(cfg *Config) []string {
	names := cfg.Namespaces()
	if len(names) == 0 {
		return nil
	}
	result := make([]string, len(names))
	for i, name := range names {
		result[i] = fmt.Sprintf("%s:%s", name, cfg.Hosts[name].CacheMode())
	}
	return result
}
