// Package router assembles the echo instance: global middleware, the
// renderer and every route of the portal.
package router

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/justloook-provider-portal/internal/config"
	"github.com/iliyamo/justloook-provider-portal/internal/handler"
	"github.com/iliyamo/justloook-provider-portal/internal/middleware"
)

// Options configure the middleware stack.
type Options struct {
	Session        middleware.SessionConfig
	RateLimit      config.RateLimitConfig
	Redis          redis.Scripter // nil disables rate limiting
	BodyLimit      string
	RequestTimeout time.Duration
	MapsEnabled    bool
	Logger         *slog.Logger
}

// New returns a ready echo instance serving h.
func New(h *handler.Handler, renderer echo.Renderer, opts Options) *echo.Echo {
	if opts.BodyLimit == "" {
		opts.BodyLimit = "12M"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = h.HTTPErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit(opts.BodyLimit))
	e.Use(echomw.Secure())
	e.Use(middleware.SecurityHeaders(opts.MapsEnabled))
	e.Use(middleware.Session(opts.Session, opts.Logger))
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(middleware.Timeout(opts.RequestTimeout))

	RegisterRoutes(e, h, middleware.NewTokenBucket(opts.RateLimit, opts.Redis, opts.Logger))
	return e
}

// RegisterRoutes maps every route. limiter guards the endpoints that
// reach the identity provider without a session.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", h.Health)
	e.GET("/", h.Index)

	auth := e.Group("/auth")
	auth.POST("/signin", h.SignIn, limiter)
	auth.POST("/signup", h.SignUp, limiter)
	auth.POST("/reset", h.ResetPassword, limiter)
	auth.POST("/signout", h.SignOut)

	e.POST("/screens", h.CreateScreen)
	e.POST("/profile", h.SaveProfile)
	e.POST("/settings", h.SaveSettings)
	e.GET("/previews/:token", h.ServePreview)
	e.GET("/media/*", h.ServeMedia)
}
