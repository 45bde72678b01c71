package remote

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/any-hub/remote-view/internal/cache"
	"github.com/any-hub/remote-view/internal/config"
	"github.com/any-hub/remote-view/internal/logging"
)

func testConfig() *config.Config {
	return &config.Config{
		Global: config.GlobalConfig{
			RemoteDelimiter:  "remote:",
			IgnoreURLSuffix:  config.DefaultIgnoredSuffixes,
			IgnoreURLs:       config.DefaultForbiddenPaths,
			ViewFolder:       "/cache",
			FilenameStrategy: "slug",
			FilenameSuffix:   ".template",
			Timeout:          config.Duration(time.Second),
			ConnectTimeout:   config.Duration(time.Second),
		},
		Hosts: map[string]config.HostConfig{
			config.DefaultNamespace: {
				Host:    "http://remote.test/",
				Cache:   true,
				Mapping: map[string]string{"dasLamm": "foo/bar"},
			},
			"specific": {
				Host:            "http://specific.test",
				Cache:           false,
				IgnoreURLSuffix: []string{"pdf"},
				IgnoreURLs:      []string{"internal"},
			},
		},
	}
}

// stubTransport 记录请求并返回预设响应，不触碰真实网络。
type stubTransport struct {
	mu      sync.Mutex
	calls   []string
	respond func(req *http.Request) (*http.Response, error)
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req.URL.String())
	s.mu.Unlock()
	if s.respond == nil {
		return textResponse(http.StatusOK, "ok"), nil
	}
	return s.respond(req)
}

func (s *stubTransport) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func textResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func failingTransport() *stubTransport {
	return &stubTransport{respond: func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}}
}

type testEngine struct {
	*Engine
	fs        afero.Fs
	transport *stubTransport
}

func newTestEngine(t *testing.T, cfg *config.Config, transport *stubTransport, opts ...Option) testEngine {
	t.Helper()
	if transport == nil {
		transport = &stubTransport{}
	}
	fs := afero.NewMemMapFs()
	store, err := cache.NewStore(fs, cfg.Global.ViewFolder)
	require.NoError(t, err)

	base := []Option{
		WithStore(store),
		WithHTTPClient(&http.Client{Transport: transport}),
		WithLogger(logging.Discard()),
	}
	engine, err := New(cfg, append(base, opts...)...)
	require.NoError(t, err)
	return testEngine{Engine: engine, fs: fs, transport: transport}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}
