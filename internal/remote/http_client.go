package remote

import (
	"net"
	"net/http"
	"time"

	"github.com/any-hub/remote-view/internal/config"
)

const (
	defaultTimeout        = 5 * time.Second
	defaultConnectTimeout = 5 * time.Second
)

// Shared HTTP transport tunings，复用长连接并集中配置超时。
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
}

// NewUpstreamClient 返回共享 http.Client，用于所有回源请求；未注入 WithHTTPClient 时 New 也使用它。
// timeout 约束整次请求，connect-timeout 只约束建连。默认不跟随重定向，
// 3xx 响应原样交给响应分发；Host 可通过 allow_redirects 放开。
func NewUpstreamClient(cfg *config.Config) *http.Client {
	timeout, connectTimeout := upstreamTimeouts(cfg)

	transport := defaultTransport.Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// upstreamTimeouts 读取 timeout/connect-timeout，未配置或非正数时回退到 5s。
func upstreamTimeouts(cfg *config.Config) (timeout, connectTimeout time.Duration) {
	timeout, connectTimeout = defaultTimeout, defaultConnectTimeout
	if cfg == nil {
		return timeout, connectTimeout
	}
	if v := cfg.Global.Timeout.DurationValue(); v > 0 {
		timeout = v
	}
	if v := cfg.Global.ConnectTimeout.DurationValue(); v > 0 {
		connectTimeout = v
	}
	return timeout, connectTimeout
}
