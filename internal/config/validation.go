package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var supportedFilenameStrategies = map[string]struct{}{
	"slug": {},
	"hash": {},
}

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if strings.TrimSpace(g.RemoteDelimiter) == "" {
		return newFieldError("remote-delimiter", "不能为空")
	}
	if g.ViewFolder == "" {
		return newFieldError("view-folder", "不能为空")
	}
	if _, ok := supportedFilenameStrategies[g.FilenameStrategy]; !ok {
		return newFieldError("filename-strategy", "仅支持 slug|hash")
	}
	if g.Timeout.DurationValue() <= 0 {
		return newFieldError("timeout", "必须大于 0")
	}
	if g.ConnectTimeout.DurationValue() <= 0 {
		return newFieldError("connect-timeout", "必须大于 0")
	}
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("listen-port", "必须在 1-65535")
	}
	if g.WarmupConcurrency <= 0 {
		return newFieldError("warmup-concurrency", "必须大于 0")
	}

	if len(c.Hosts) == 0 {
		return errors.New("至少需要配置一个 Host")
	}

	for _, name := range c.Namespaces() {
		host := c.Hosts[name]
		if strings.TrimSpace(name) == "" {
			return newFieldError("hosts", "命名空间不能为空")
		}
		if strings.Contains(name, "::") {
			return newFieldError(hostField(name, ""), "命名空间不能包含 ::")
		}
		if err := validateHost(host.Host); err != nil {
			return fmt.Errorf("%s: %w", hostField(name, "host"), err)
		}
		if _, err := DecodeRequestOptions(host.RequestOptions); err != nil {
			return newFieldError(hostField(name, "request_options"), err.Error())
		}
		for key, route := range host.Mapping {
			if strings.TrimSpace(route) == "" {
				return newFieldError(hostField(name, "mapping."+key), "目标路由不能为空")
			}
		}
	}

	for i, mod := range c.Modifiers {
		if strings.TrimSpace(mod.Query) == "" && !mod.Break {
			return newFieldError(indexedField("url-modifiers", i, "query"), "query 为空时必须设置 break")
		}
	}

	for i, handler := range c.ResponseHandlers {
		if len(handler.Status) == 0 {
			return newFieldError(indexedField("response-handlers", i, "status"), "至少需要一个状态码")
		}
		for _, code := range handler.Status {
			if code < 100 || code > 599 {
				return newFieldError(indexedField("response-handlers", i, "status"), fmt.Sprintf("非法状态码: %d", code))
			}
		}
		if (handler.Content == "") == (handler.File == "") {
			return newFieldError(indexedField("response-handlers", i, "content/file"), "必须且只能提供一个")
		}
	}

	return nil
}

func validateHost(raw string) error {
	if raw == "" {
		return errors.New("缺少上游地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https，上游: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("上游缺少 Host: %s", raw)
	}
	return nil
}
