package routes

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/any-hub/remote-view/internal/remote"
)

// HostSource 提供诊断所需的只读视图，*remote.Engine 满足该接口。
type HostSource interface {
	Hosts() *remote.HostRegistry
	Handlers() *remote.HandlerRegistry
}

// RegisterHostRoutes 暴露 /-/hosts 诊断接口，列出命名空间、缓存模式与响应处理器登记情况。
func RegisterHostRoutes(app *fiber.App, source HostSource) {
	if app == nil || source == nil {
		return
	}

	app.Get("/-/hosts", func(c fiber.Ctx) error {
		handlers := source.Handlers()
		payload := fiber.Map{
			"hosts":             encodeHosts(source.Hosts().List()),
			"response_handlers": encodeHandlers(handlers, handlers.Codes()),
		}
		return c.JSON(payload)
	})

	app.Get("/-/hosts/:namespace", func(c fiber.Ctx) error {
		namespace := c.Params("namespace")
		if namespace == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "namespace_required"})
		}
		route, err := source.Hosts().Lookup(namespace)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "host_not_configured"})
		}
		encoded := encodeHost(*route)
		encoded.MappingKeys = route.Config.MappingKeys()
		return c.JSON(encoded)
	})
}

type hostPayload struct {
	Namespace       string   `json:"namespace"`
	Host            string   `json:"host"`
	CacheMode       string   `json:"cache_mode"`
	MappingCount    int      `json:"mapping_count"`
	MappingKeys     []string `json:"mapping_keys,omitempty"`
	IgnoredSuffixes []string `json:"ignored_suffixes"`
	ForbiddenPaths  []string `json:"forbidden_paths"`
	AllowRedirects  bool     `json:"allow_redirects"`
}

func encodeHosts(routes []remote.HostRoute) []hostPayload {
	if len(routes) == 0 {
		return nil
	}
	result := make([]hostPayload, 0, len(routes))
	for _, route := range routes {
		result = append(result, encodeHost(route))
	}
	return result
}

func encodeHost(route remote.HostRoute) hostPayload {
	return hostPayload{
		Namespace:       route.Namespace,
		Host:            route.Config.Host,
		CacheMode:       route.Config.CacheMode(),
		MappingCount:    len(route.Config.Mapping),
		IgnoredSuffixes: route.SortedSuffixes(),
		ForbiddenPaths:  route.SortedForbiddenPaths(),
		AllowRedirects:  route.Options.AllowRedirects,
	}
}

// encodeHandlers 以字符串键输出状态码，JSON 对象键必须是字符串。
func encodeHandlers(registry *remote.HandlerRegistry, codes []int) map[string]string {
	if registry == nil {
		return map[string]string{}
	}
	snapshot := registry.Snapshot(codes)
	out := make(map[string]string, len(snapshot))
	for code, status := range snapshot {
		out[strconv.Itoa(code)] = status
	}
	return out
}
