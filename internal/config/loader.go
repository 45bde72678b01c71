package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// keyDelimiter 替代 viper 默认的 "."，mapping 中形如 "index.html" 的键不会被拆成嵌套表。
const keyDelimiter = "::"

// Load 读取并解析 TOML/YAML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	format, err := configFormat(path)
	if err != nil {
		return nil, err
	}

	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigFile(path)
	v.SetConfigType(format)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := restoreKeyCase(path, format, &cfg); err != nil {
		return nil, err
	}

	applyGlobalDefaults(&cfg.Global)
	for name, host := range cfg.Hosts {
		applyHostDefaults(&host)
		cfg.Hosts[name] = host
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absFolder, err := filepath.Abs(cfg.Global.ViewFolder)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.Global.ViewFolder = absFolder

	return &cfg, nil
}

// DefaultIgnoredSuffixes 对应未配置 ignore-url-suffix 时的静态资源后缀。
var DefaultIgnoredSuffixes = []string{"png", "jpg", "jpeg", "css", "js", "woff", "ttf", "gif", "svg"}

// DefaultForbiddenPaths 对应未配置 ignore-urls 时禁止回源的路径段。
var DefaultForbiddenPaths = []string{"typo3", "typo3/"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("remote-delimiter", "remote:")
	v.SetDefault("ignore-url-suffix", DefaultIgnoredSuffixes)
	v.SetDefault("ignore-urls", DefaultForbiddenPaths)
	v.SetDefault("view-folder", "./storage/remote-view-cache")
	v.SetDefault("view-extensions", []string{".html", ".template"})
	v.SetDefault("filename-strategy", "slug")
	v.SetDefault("filename-suffix", ".template")
	v.SetDefault("timeout", "5s")
	v.SetDefault("connect-timeout", "5s")
	v.SetDefault("listen-port", 5080)
	v.SetDefault("warmup-concurrency", 4)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-file", "")
	v.SetDefault("log-max-size", 100)
	v.SetDefault("log-max-backups", 10)
	v.SetDefault("log-compress", true)
}

func applyGlobalDefaults(g *GlobalConfig) {
	g.RemoteDelimiter = strings.TrimSpace(g.RemoteDelimiter)
	if g.RemoteDelimiter == "" {
		g.RemoteDelimiter = "remote:"
	}
	g.FilenameStrategy = strings.ToLower(strings.TrimSpace(g.FilenameStrategy))
	if g.FilenameStrategy == "" {
		g.FilenameStrategy = "slug"
	}
	if g.Timeout.DurationValue() == 0 {
		g.Timeout = Duration(5 * time.Second)
	}
	if g.ConnectTimeout.DurationValue() == 0 {
		g.ConnectTimeout = Duration(5 * time.Second)
	}
	if g.ListenPort == 0 {
		g.ListenPort = 5080
	}
	if g.WarmupConcurrency == 0 {
		g.WarmupConcurrency = 4
	}
}

func applyHostDefaults(h *HostConfig) {
	h.Host = strings.TrimSpace(h.Host)
	if h.Mapping == nil {
		h.Mapping = map[string]string{}
	}
}

func configFormat(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return "toml", nil
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("不支持的配置格式: %s", ext)
	}
}

// rawDocument 仅承载需要保留大小写的部分：命名空间名、mapping 键与 request_options（查询参数名区分大小写）。
type rawDocument struct {
	Hosts map[string]rawHost `toml:"hosts" yaml:"hosts"`
}

type rawHost struct {
	Mapping        map[string]string `toml:"mapping" yaml:"mapping"`
	RequestOptions map[string]any    `toml:"request_options" yaml:"request_options"`
}

// restoreKeyCase 重新读取原始文件，viper 会把所有键转为小写，而命名空间与 mapping 键区分大小写。
func restoreKeyCase(path, format string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置失败: %w", err)
	}

	var doc rawDocument
	switch format {
	case "toml":
		err = toml.Unmarshal(data, &doc)
	case "yaml":
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return fmt.Errorf("解析配置失败: %w", err)
	}
	if len(doc.Hosts) == 0 || len(cfg.Hosts) == 0 {
		return nil
	}

	restored := make(map[string]HostConfig, len(cfg.Hosts))
	for name, host := range cfg.Hosts {
		restored[name] = host
	}
	for name, raw := range doc.Hosts {
		lowered := strings.ToLower(name)
		host, ok := cfg.Hosts[lowered]
		if !ok {
			continue
		}
		if raw.Mapping != nil {
			host.Mapping = raw.Mapping
		}
		if raw.RequestOptions != nil {
			host.RequestOptions = raw.RequestOptions
		}
		delete(restored, lowered)
		restored[name] = host
	}
	cfg.Hosts = restored
	return nil
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
