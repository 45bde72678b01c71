package remote

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/any-hub/remote-view/internal/config"
	"github.com/any-hub/remote-view/internal/version"
)

// withQuery 把 request_options.query 追加到请求地址末尾。已有参数保持原始顺序与编码，
// 只有被同名选项覆盖的参数会被移除；选项按键名排序后追加，保证请求地址稳定。
func withQuery(rawURL string, query map[string]string) (string, error) {
	if len(query) == 0 {
		return rawURL, nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	pairs := make([]string, 0, len(query))
	for _, pair := range strings.Split(parsed.RawQuery, "&") {
		if pair == "" {
			continue
		}
		if _, overridden := query[queryKey(pair)]; overridden {
			continue
		}
		pairs = append(pairs, pair)
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(query[key]))
	}

	parsed.RawQuery = strings.Join(pairs, "&")
	parsed.ForceQuery = false
	return parsed.String(), nil
}

// queryKey 返回 "k=v" 中解码后的键，无法解码时按原样比较。
func queryKey(pair string) string {
	key, _, _ := strings.Cut(pair, "=")
	if unescaped, err := url.QueryUnescape(key); err == nil {
		return unescaped
	}
	return key
}

// applyRequestOptions 写入请求头、Basic 认证与 User-Agent，未配置 user_agent 时使用默认值。
func applyRequestOptions(req *http.Request, opts config.RequestOptions) {
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if user, password, ok := opts.BasicAuth(); ok {
		req.SetBasicAuth(user, password)
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}
	req.Header.Set("User-Agent", userAgent)
}
