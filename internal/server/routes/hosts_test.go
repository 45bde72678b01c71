package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/afero"

	"github.com/any-hub/remote-view/internal/cache"
	"github.com/any-hub/remote-view/internal/config"
	"github.com/any-hub/remote-view/internal/logging"
	"github.com/any-hub/remote-view/internal/remote"
)

func newTestEngine(t *testing.T) *remote.Engine {
	t.Helper()
	cfg := &config.Config{
		Global: config.GlobalConfig{
			RemoteDelimiter: "remote:",
			IgnoreURLSuffix: []string{"css"},
			IgnoreURLs:      []string{"typo3"},
			ViewFolder:      "/cache",
		},
		Hosts: map[string]config.HostConfig{
			"specific": {Host: "http://specific.test", IgnoreURLSuffix: []string{"pdf"}},
			"default": {
				Host:           "http://remote.test",
				Cache:          true,
				Mapping:        map[string]string{"dasLamm": "foo/bar", "home": "/"},
				RequestOptions: map[string]any{"allow_redirects": true},
			},
		},
		ResponseHandlers: []config.ResponseHandlerConfig{{Status: []int{410, 404}, Content: "Blubb"}},
	}
	store, err := cache.NewStore(afero.NewMemMapFs(), "/cache")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	engine, err := remote.New(cfg, remote.WithStore(store), remote.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return engine
}

func TestHostsListsNamespaces(t *testing.T) {
	app := fiber.New()
	RegisterHostRoutes(app, newTestEngine(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/-/hosts", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Hosts            []hostPayload     `json:"hosts"`
		ResponseHandlers map[string]string `json:"response_handlers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(payload.Hosts))
	}
	first := payload.Hosts[0]
	if first.Namespace != "default" || first.CacheMode != "cached" || first.MappingCount != 2 || !first.AllowRedirects {
		t.Fatalf("unexpected default host: %+v", first)
	}
	second := payload.Hosts[1]
	if second.CacheMode != "passthrough" || len(second.IgnoredSuffixes) != 2 {
		t.Fatalf("unexpected specific host: %+v", second)
	}
	if payload.ResponseHandlers["404"] != "registered" || payload.ResponseHandlers["410"] != "registered" {
		t.Fatalf("expected handlers for 404/410, got %v", payload.ResponseHandlers)
	}
}

func TestHostDetail(t *testing.T) {
	app := fiber.New()
	RegisterHostRoutes(app, newTestEngine(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/-/hosts/default", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	var payload hostPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.MappingKeys) != 2 || payload.MappingKeys[0] != "dasLamm" {
		t.Fatalf("expected sorted mapping keys, got %v", payload.MappingKeys)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/-/hosts/unknown", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 404, got %d (%s)", resp.StatusCode, string(body))
	}
}

func TestEncodeHandlersWithNilRegistry(t *testing.T) {
	if got := encodeHandlers(nil, []int{404}); len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}
