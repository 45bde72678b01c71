package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// RequestOptions 是 hosts.<ns>.request_options 解码后的结果，合并到每一次回源请求。
type RequestOptions struct {
	Headers        map[string]string `mapstructure:"headers"`
	Query          map[string]string `mapstructure:"query"`
	Auth           []string          `mapstructure:"auth"`
	AuthUser       string            `mapstructure:"auth_user"`
	AuthPassword   string            `mapstructure:"auth_password"`
	UserAgent      string            `mapstructure:"user_agent"`
	AllowRedirects bool              `mapstructure:"allow_redirects"`
}

// BaseRequestOptions 返回所有请求共享的基础选项：禁止自动跟随重定向。
func BaseRequestOptions() RequestOptions {
	return RequestOptions{AllowRedirects: false}
}

// DecodeRequestOptions 将 Host 级 map 覆盖到基础选项之上，未知字段视为配置错误。
func DecodeRequestOptions(raw map[string]any) (RequestOptions, error) {
	opts := BaseRequestOptions()
	if len(raw) == 0 {
		return opts, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return opts, err
	}
	if err := decoder.Decode(raw); err != nil {
		return opts, fmt.Errorf("decode request options: %w", err)
	}
	if len(opts.Auth) != 0 && len(opts.Auth) < 2 {
		return opts, fmt.Errorf("auth requires [user, password]")
	}
	return opts, nil
}

// BasicAuth 返回生效的 Basic 凭证；auth 数组优先于 auth_user/auth_password。
func (o RequestOptions) BasicAuth() (user, password string, ok bool) {
	if len(o.Auth) >= 2 && o.Auth[0] != "" {
		return o.Auth[0], o.Auth[1], true
	}
	if o.AuthUser != "" {
		return o.AuthUser, o.AuthPassword, true
	}
	return "", "", false
}
