package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/remote-view/internal/remote"
)

// Resolver describes the component that turns identifiers into cache paths.
// *remote.Engine satisfies it; tests inject fakes.
type Resolver interface {
	ResolveDetailed(ctx context.Context, identifier string) (*remote.Resolution, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, identifier string) (*remote.Resolution, error)

// ResolveDetailed makes ResolverFunc satisfy Resolver.
func (f ResolverFunc) ResolveDetailed(ctx context.Context, identifier string) (*remote.Resolution, error) {
	return f(ctx, identifier)
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger     *logrus.Logger
	Resolver   Resolver
	ListenPort int
}

const contextKeyRequestID = "_remoteview_request_id"

// NewApp builds a Fiber application exposing /-/resolve with structured error
// handling. Diagnostics routes are attached separately via the routes package.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware())

	app.Get("/-/resolve", resolveHandler(opts))

	return app, nil
}

// RegisterFallback 为未匹配的路径返回 JSON 404，需在所有路由注册之后调用。
func RegisterFallback(app *fiber.App, logger *logrus.Logger) {
	app.Use(func(c fiber.Ctx) error {
		logger.WithFields(logrus.Fields{
			"action":     "route_lookup",
			"path":       c.Path(),
			"request_id": RequestID(c),
		}).Debug("route unmapped")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "route_not_found",
		})
	})
}

// requestContextMiddleware 负责生成请求 ID。
func requestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

func resolveHandler(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		identifier := strings.TrimSpace(c.Query("id"))
		if identifier == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "identifier_required",
			})
		}

		ctx := c.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		res, err := opts.Resolver.ResolveDetailed(ctx, identifier)
		if err != nil {
			status, code := classifyError(err)
			opts.Logger.WithFields(logrus.Fields{
				"action":     "resolve_request",
				"identifier": identifier,
				"status":     status,
				"request_id": RequestID(c),
			}).WithError(err).Warn("resolve request failed")
			return c.Status(status).JSON(fiber.Map{
				"error":   code,
				"message": err.Error(),
			})
		}

		return c.JSON(resolvePayload{
			Path:       res.CachePath,
			Namespace:  res.Identifier.Namespace,
			URL:        res.URL,
			CacheHit:   res.CacheHit,
			StatusCode: res.StatusCode,
		})
	}
}

type resolvePayload struct {
	Path       string `json:"path"`
	Namespace  string `json:"namespace"`
	URL        string `json:"url"`
	CacheHit   bool   `json:"cache_hit"`
	StatusCode int    `json:"upstream_status,omitempty"`
}

type statusCoder interface {
	StatusCode() int
}

// classifyError 将引擎错误映射为 HTTP 状态码与稳定的错误码。
func classifyError(err error) (int, string) {
	status := fiber.StatusInternalServerError
	var coder statusCoder
	if errors.As(err, &coder) && coder.StatusCode() >= 100 {
		status = coder.StatusCode()
	}

	switch {
	case errors.Is(err, remote.ErrNotRemote):
		return fiber.StatusBadRequest, "not_remote"
	case errors.Is(err, remote.ErrInvalidIdentifier):
		return fiber.StatusBadRequest, "invalid_identifier"
	case errors.Is(err, remote.ErrHostNotConfigured):
		return fiber.StatusNotFound, "host_not_configured"
	case errors.Is(err, remote.ErrIgnoredSuffix):
		return fiber.StatusNotFound, "ignored_suffix"
	case errors.Is(err, remote.ErrURLForbidden):
		return status, "url_forbidden"
	case errors.Is(err, remote.ErrRemoteFetch):
		return status, "remote_fetch_failed"
	case errors.Is(err, remote.ErrInvalidModifier):
		return fiber.StatusInternalServerError, "invalid_modifier"
	case errors.Is(err, remote.ErrDirectoryCreate):
		return fiber.StatusInternalServerError, "directory_create_failed"
	default:
		return fiber.StatusInternalServerError, "internal_error"
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
