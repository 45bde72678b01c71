package remote

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// upstreamClients 按 allow_redirects 选择客户端，二者共享同一个 Transport。
type upstreamClients struct {
	direct   *http.Client
	redirect *http.Client
}

func newUpstreamClients(base *http.Client) upstreamClients {
	if base == nil {
		base = &http.Client{}
	}
	direct := *base
	direct.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	redirect := *base
	redirect.CheckRedirect = nil
	return upstreamClients{direct: &direct, redirect: &redirect}
}

func (c upstreamClients) pick(allowRedirects bool) *http.Client {
	if allowRedirects {
		return c.redirect
	}
	return c.direct
}

// JoinURL 去掉 Host 末尾与路由开头的 "/" 后以单个 "/" 拼接。
func JoinURL(host, route string) string {
	return strings.TrimRight(host, "/") + "/" + strings.TrimLeft(route, "/")
}

// fetch 发起 GET 请求。非 2xx 响应原样返回，传输层错误统一转换为 RemoteFetchError。
func (e *Engine) fetch(ctx context.Context, res *Resolution) (*http.Response, error) {
	opts := res.Host.Options
	target, err := withQuery(JoinURL(res.Host.Config.Host, res.URL), opts.Query)
	if err != nil {
		return nil, newRemoteFetchError(JoinURL(res.Host.Config.Host, res.URL), err)
	}
	res.FetchURL = target

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, newRemoteFetchError(target, err)
	}
	applyRequestOptions(req, opts)

	resp, err := e.clients.pick(opts.AllowRedirects).Do(req)
	if err != nil {
		return nil, newRemoteFetchError(target, err)
	}
	if resp.Body == nil {
		resp.Body = http.NoBody
	}
	res.StatusCode = resp.StatusCode
	return resp, nil
}

// content 将 Payload 物化为字节，读取失败同样视为回源失败。
func content(payload Payload, target string) ([]byte, error) {
	if payload == nil {
		return nil, newRemoteFetchError(target, errors.New("response handler returned no payload"))
	}
	data, err := payload.Content()
	if err != nil {
		return nil, newRemoteFetchError(target, err)
	}
	return data, nil
}
