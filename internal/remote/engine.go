package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/remote-view/internal/cache"
	"github.com/any-hub/remote-view/internal/config"
	"github.com/any-hub/remote-view/internal/logging"
)

// Engine 将远程标识解析为本地缓存文件路径。构造后只读，可被多个 goroutine 共享。
type Engine struct {
	parser    Parser
	hosts     *HostRegistry
	store     cache.Store
	filenames cache.FilenameStrategy
	modifiers []URLModifier
	handlers  *HandlerRegistry
	clients   upstreamClients
	logger    *logrus.Logger
}

// New 根据配置构建 Engine。
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if err := validateModifiers(o.modifiers); err != nil {
		return nil, err
	}

	hosts, err := NewHostRegistry(cfg)
	if err != nil {
		return nil, err
	}

	store := o.store
	if store == nil {
		store, err = cache.NewStore(nil, cfg.Global.ViewFolder)
		if err != nil {
			return nil, err
		}
	}

	filenames := o.filenames
	if filenames == nil {
		filenames, err = cache.NewFilenameStrategy(cfg.Global.FilenameStrategy, cfg.Global.FilenameSuffix)
		if err != nil {
			return nil, err
		}
	}

	handlers := NewHandlerRegistry()
	if err := StaticHandlersFromConfig(handlers, cfg.ResponseHandlers); err != nil {
		return nil, err
	}
	for _, reg := range o.handlers {
		if err := handlers.Register(reg.handler, reg.codes...); err != nil {
			return nil, err
		}
	}

	client := o.client
	if client == nil {
		client = NewUpstreamClient(cfg)
	}

	logger := o.logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Engine{
		parser:    NewParser(cfg.Global.RemoteDelimiter),
		hosts:     hosts,
		store:     store,
		filenames: filenames,
		modifiers: append([]URLModifier(nil), o.modifiers...),
		handlers:  handlers,
		clients:   newUpstreamClients(client),
		logger:    logger,
	}, nil
}

// IsRemote 报告 name 是否为远程标识。
func (e *Engine) IsRemote(name string) bool {
	return e.parser.IsRemote(name)
}

// Parser 暴露标识解析器，供预热拼接标识。
func (e *Engine) Parser() Parser {
	return e.parser
}

func (e *Engine) Hosts() *HostRegistry {
	return e.hosts
}

func (e *Engine) Handlers() *HandlerRegistry {
	return e.handlers
}

// Store 返回缓存存储，诊断接口用它展示根目录。
func (e *Engine) Store() cache.Store {
	return e.store
}

// Resolve 返回远程模板的本地缓存路径；非远程标识返回 ErrNotRemote 且不产生任何 IO。
func (e *Engine) Resolve(ctx context.Context, identifier string) (string, error) {
	res, err := e.ResolveDetailed(ctx, identifier)
	if err != nil {
		return "", err
	}
	return res.CachePath, nil
}

// ResolveDetailed 与 Resolve 相同，但返回完整的 Resolution 以便调用方展示命中情况与上游状态码。
func (e *Engine) ResolveDetailed(ctx context.Context, identifier string) (*Resolution, error) {
	if !e.parser.IsRemote(identifier) {
		return nil, ErrNotRemote
	}

	started := time.Now()
	res := &Resolution{Raw: identifier}
	err := e.resolve(ctx, res)
	e.logResult(res, err, time.Since(started))
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) resolve(ctx context.Context, res *Resolution) error {
	id, err := e.parser.Parse(res.Raw)
	if err != nil {
		return err
	}
	res.Identifier = id

	host, err := e.hosts.Lookup(id.Namespace)
	if err != nil {
		return err
	}
	res.Host = host

	if err := CheckFilters(id.Path, host); err != nil {
		return err
	}

	res.Route = MapRoute(id.Path, host.Config.Mapping)
	res.URL = res.Route
	if err := applyModifiers(res, e.modifiers); err != nil {
		return err
	}

	if _, err := e.store.EnsureDir(id.Namespace); err != nil {
		return err
	}
	res.CachePath = e.store.Path(id.Namespace, e.filenames.Filename(res.URL))

	if host.Config.Cache {
		exists, err := e.store.Exists(res.CachePath)
		if err != nil {
			e.logger.WithFields(logging.ResolveFields(id.Namespace, id.Path, host.Config.CacheMode(), false)).
				WithError(err).Warn("cache_stat_failed")
		}
		if exists {
			res.CacheHit = true
			return nil
		}
	}

	resp, err := e.fetch(ctx, res)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := e.handlers.dispatch(ctx, resp, res)
	if err != nil {
		return newRemoteFetchError(res.FetchURL, err)
	}
	data, err := content(payload, res.FetchURL)
	if err != nil {
		return err
	}

	if err := e.store.Put(res.CachePath, data); err != nil {
		return fmt.Errorf("store %s: %w", res.CachePath, err)
	}
	return nil
}

func (e *Engine) logResult(res *Resolution, err error, elapsed time.Duration) {
	cacheMode := ""
	if res.Host != nil {
		cacheMode = res.Host.Config.CacheMode()
	}
	fields := logging.ResolveFields(res.Identifier.Namespace, res.Identifier.Path, cacheMode, res.CacheHit)
	fields["elapsed_ms"] = elapsed.Milliseconds()
	if res.StatusCode != 0 {
		fields["upstream_status"] = res.StatusCode
	}
	if res.FetchURL != "" {
		fields["url"] = res.FetchURL
	}

	if err != nil {
		fields["identifier"] = res.Raw
		e.logger.WithFields(fields).WithError(err).Warn("resolve_failed")
		return
	}
	fields["cache_path"] = res.CachePath
	e.logger.WithFields(fields).Info("resolve_complete")
}
