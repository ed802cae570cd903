package router

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/trexis-racing/roster/internal/proxy/service"
	"github.com/trexis-racing/roster/internal/proxy/upstream"
	"github.com/trexis-racing/roster/pkg/http"
	"github.com/trexis-racing/roster/pkg/http/middleware"
	"github.com/trexis-racing/roster/pkg/log"
	"github.com/trexis-racing/roster/pkg/metrics"
	"github.com/trexis-racing/roster/pkg/shutdown"
	"github.com/trexis-racing/roster/pkg/version"
	"go.uber.org/zap"
)

/**
 * @file: router.go
 * @description: proxy routes, /api is forwarded to the upstream store
 */

type Authenticator interface {
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
}

type Forwarder interface {
	Forward(ctx context.Context, method, path string, form url.Values) (*upstream.Response, error)
}

type Router struct {
	Http     *http.Http
	Logger   *zap.Logger
	Auth     Authenticator
	Upstream Forwarder
	Metrics  *metrics.Registry
	Shutdown *shutdown.Manager
}

func NewRouter(
	httpConf *http.Http,
	logger *zap.Logger,
	auth Authenticator,
	forwarder Forwarder,
	registry *metrics.Registry,
	shutdownMgr *shutdown.Manager,
) *Router {
	return &Router{
		Http:     httpConf,
		Logger:   logger,
		Auth:     auth,
		Upstream: forwarder,
		Metrics:  registry,
		Shutdown: shutdownMgr,
	}
}

func (rt *Router) Router() *fiber.App {
	bodyLimit := rt.Http.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 4 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:               "Roster Proxy",
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:             bodyLimit,
		ErrorHandler:          errorHandler,
	})

	app.Use(
		middleware.ExceptionMiddleware,
		middleware.RequestMiddleware(),
		middleware.CorsMiddleware(),
		middleware.SecurityHeadersMiddleware(),
	)

	if rt.Http.AccessLog && rt.Logger != nil {
		app.Use(http.AccessLogFormat(rt.Logger))
	}

	if rt.Http.ExposeMetrics && rt.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(rt.Metrics.Handler()))
	}

	// 健康检查，关闭过程中返回 503
	app.Get("/health", func(c *fiber.Ctx) error {
		if rt.Shutdown != nil && rt.Shutdown.IsShuttingDown() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
		}
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	rt.routerGroup(app.Group("/api"))

	// 找不到路径时的处理，必须在所有路由注册之后
	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErr(c, fiber.StatusNotFound, http.NotFound, c.Path())
	})

	return app
}

func (rt *Router) routerGroup(r fiber.Router) {
	auth := middleware.AuthorizationMiddleware(rt.Http.Auth.SecretKey)

	// not auth
	r.Post("/login", rt.login)

	// member
	r.Get("/members", auth, rt.listMembers)
	r.Get("/members/:id", auth, rt.getMember)
	r.Post("/addMember", auth, rt.addMember)
	r.Post("/members", auth, rt.addMember)
	r.Put("/members/:id", auth, rt.updateMember)
	r.Delete("/members/:id", auth, rt.deleteMember)

	// team
	r.Get("/teams", auth, rt.listTeams)
}

// errorHandler 兜底错误处理，统一返回错误结构体
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return http.WithRepErrMsg(c, fe.Code, http.Failed, fe.Message, c.Path())
	}
	log.Errorw("unhandled request error", "path", c.Path(), "error", err)
	return http.WithRepErr(c, fiber.StatusInternalServerError, http.InternalError, c.Path())
}
