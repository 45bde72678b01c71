package remote

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/remote-view/internal/cache"
)

// Option 调整 Engine 的依赖，未设置的项使用配置推导出的默认值。
type Option func(*options)

type options struct {
	client    *http.Client
	store     cache.Store
	logger    *logrus.Logger
	filenames cache.FilenameStrategy
	modifiers []URLModifier
	handlers  []handlerRegistration
}

type handlerRegistration struct {
	handler ResponseHandler
	codes   []int
}

// WithHTTPClient 注入共享的上游客户端。
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.client = client }
}

// WithStore 替换缓存存储，测试中常配合 afero.NewMemMapFs 使用。
func WithStore(store cache.Store) Option {
	return func(o *options) { o.store = store }
}

func WithLogger(logger *logrus.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithFilenameStrategy 覆盖 filename-strategy 配置。
func WithFilenameStrategy(strategy cache.FilenameStrategy) Option {
	return func(o *options) { o.filenames = strategy }
}

// WithURLModifiers 追加修饰器，多次调用按顺序拼接。
func WithURLModifiers(modifiers ...URLModifier) Option {
	return func(o *options) { o.modifiers = append(o.modifiers, modifiers...) }
}

// WithResponseHandler 在配置中的静态处理器之后登记，因此同一状态码以此为准。
func WithResponseHandler(handler ResponseHandler, codes ...int) Option {
	return func(o *options) {
		o.handlers = append(o.handlers, handlerRegistration{handler: handler, codes: codes})
	}
}
