package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"

	"github.com/any-hub/remote-view/internal/config"
)

// ResponseHandler 可以替换特定状态码的上游响应。
type ResponseHandler interface {
	HandleResponse(ctx context.Context, resp *http.Response, host *HostRoute, res *Resolution) (Payload, error)
}

// ResponseHandlerFunc 允许直接以函数注册处理器。
type ResponseHandlerFunc func(ctx context.Context, resp *http.Response, host *HostRoute, res *Resolution) (Payload, error)

func (f ResponseHandlerFunc) HandleResponse(ctx context.Context, resp *http.Response, host *HostRoute, res *Resolution) (Payload, error) {
	return f(ctx, resp, host, res)
}

// HandlerRegistry 按状态码保存处理器，同一状态码后注册的覆盖先注册的。
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[int]ResponseHandler
}

// NewHandlerRegistry 返回空注册表。
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[int]ResponseHandler)}
}

// Register 为一个或多个状态码登记处理器。
func (r *HandlerRegistry) Register(handler ResponseHandler, codes ...int) error {
	if handler == nil {
		return errors.New("response handler required")
	}
	if len(codes) == 0 {
		return fmt.Errorf("%w: no status code", ErrInvalidHandlerCode)
	}
	for _, code := range codes {
		if code < 100 || code > 599 {
			return fmt.Errorf("%w: %d", ErrInvalidHandlerCode, code)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, code := range codes {
		r.handlers[code] = handler
	}
	return nil
}

// Lookup 返回状态码对应的处理器。
func (r *HandlerRegistry) Lookup(code int) (ResponseHandler, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[code]
	return handler, ok
}

// Codes 返回已登记的状态码，升序。
func (r *HandlerRegistry) Codes() []int {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]int, 0, len(r.handlers))
	for code := range r.handlers {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// Snapshot 返回给定状态码的登记情况，供诊断接口输出。
func (r *HandlerRegistry) Snapshot(codes []int) map[int]string {
	out := make(map[int]string, len(codes))
	for _, code := range codes {
		if _, ok := r.Lookup(code); ok {
			out[code] = "registered"
		} else {
			out[code] = "missing"
		}
	}
	return out
}

// dispatch 找到处理器时交给它生成 Payload，否则原样包装响应。
func (r *HandlerRegistry) dispatch(ctx context.Context, resp *http.Response, res *Resolution) (Payload, error) {
	handler, ok := r.Lookup(resp.StatusCode)
	if !ok {
		return ResponsePayload{Response: resp}, nil
	}
	return handler.HandleResponse(ctx, resp, res.Host, res)
}

// StaticHandler 用固定内容替换上游响应。
type StaticHandler struct {
	Body []byte
}

func (h StaticHandler) HandleResponse(context.Context, *http.Response, *HostRoute, *Resolution) (Payload, error) {
	return StaticPayload(h.Body), nil
}

// StaticHandlersFromConfig 将 response-handlers 配置转换为静态处理器并登记。
func StaticHandlersFromConfig(registry *HandlerRegistry, handlers []config.ResponseHandlerConfig) error {
	for i, item := range handlers {
		body := []byte(item.Content)
		if item.File != "" {
			data, err := os.ReadFile(item.File)
			if err != nil {
				return fmt.Errorf("response-handlers[%d]: %w", i, err)
			}
			body = data
		}
		if err := registry.Register(StaticHandler{Body: body}, item.Status...); err != nil {
			return fmt.Errorf("response-handlers[%d]: %w", i, err)
		}
	}
	return nil
}
