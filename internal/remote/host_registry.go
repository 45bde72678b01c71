package remote

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/any-hub/remote-view/internal/config"
)

// HostRoute 将 Host 配置与派生属性（解析后的上游 URL、合并后的过滤集合、解码后的请求选项）
// 聚合在一起，避免每次解析重复计算。
type HostRoute struct {
	// Namespace 是 hosts 表中的键。
	Namespace string
	// Config 是配置文件中 Host 字段的副本。
	Config config.HostConfig
	// BaseURL 在构建注册表时解析完成。
	BaseURL *url.URL
	// IgnoredSuffixes/ForbiddenPaths 为全局列表与 Host 列表的并集。
	IgnoredSuffixes map[string]struct{}
	ForbiddenPaths  map[string]struct{}
	// Options 是基础选项与 request_options 合并后的结果。
	Options config.RequestOptions
}

// HostRegistry 提供命名空间到 HostRoute 的只读查询。
type HostRegistry struct {
	routes  map[string]*HostRoute
	ordered []*HostRoute
}

// NewHostRegistry 根据配置构建命名空间映射。调用方应在启动阶段创建一次并复用。
func NewHostRegistry(cfg *config.Config) (*HostRegistry, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	registry := &HostRegistry{
		routes: make(map[string]*HostRoute, len(cfg.Hosts)),
	}

	for _, namespace := range cfg.Namespaces() {
		route, err := buildHostRoute(cfg.Global, namespace, cfg.Hosts[namespace])
		if err != nil {
			return nil, err
		}
		registry.routes[namespace] = route
		registry.ordered = append(registry.ordered, route)
	}

	return registry, nil
}

// Lookup 根据命名空间查找 HostRoute，不存在时返回 HostNotConfiguredError。
func (r *HostRegistry) Lookup(namespace string) (*HostRoute, error) {
	if r != nil {
		if route, ok := r.routes[namespace]; ok {
			return route, nil
		}
	}
	return nil, &HostNotConfiguredError{Namespace: namespace}
}

// List 返回按命名空间排序的 HostRoute 副本，用于诊断与预热。
func (r *HostRegistry) List() []HostRoute {
	if r == nil || len(r.ordered) == 0 {
		return nil
	}

	result := make([]HostRoute, len(r.ordered))
	for i, route := range r.ordered {
		result[i] = *route
	}
	return result
}

func buildHostRoute(global config.GlobalConfig, namespace string, host config.HostConfig) (*HostRoute, error) {
	var baseURL *url.URL
	if strings.TrimSpace(host.Host) != "" {
		parsed, err := url.Parse(host.Host)
		if err != nil {
			return nil, fmt.Errorf("invalid host for namespace %s: %w", namespace, err)
		}
		baseURL = parsed
	}

	opts, err := config.DecodeRequestOptions(host.RequestOptions)
	if err != nil {
		return nil, fmt.Errorf("namespace %s: %w", namespace, err)
	}

	mapping := make(map[string]string, len(host.Mapping))
	for key, value := range host.Mapping {
		mapping[key] = value
	}
	host.Mapping = mapping

	return &HostRoute{
		Namespace:       namespace,
		Config:          host,
		BaseURL:         baseURL,
		IgnoredSuffixes: mergeSet(global.IgnoreURLSuffix, host.IgnoreURLSuffix),
		ForbiddenPaths:  mergeSet(global.IgnoreURLs, host.IgnoreURLs),
		Options:         opts,
	}, nil
}

// SortedSuffixes 返回合并后的忽略后缀，供诊断输出。
func (h HostRoute) SortedSuffixes() []string {
	return sortedKeys(h.IgnoredSuffixes)
}

// SortedForbiddenPaths 返回合并后的禁止路径，供诊断输出。
func (h HostRoute) SortedForbiddenPaths() []string {
	return sortedKeys(h.ForbiddenPaths)
}

func mergeSet(lists ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, item := range list {
			set[item] = struct{}{}
		}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
