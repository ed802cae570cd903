package bootstrap

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/trexis-racing/roster/internal/proxy/conf"
	"github.com/trexis-racing/roster/internal/proxy/router"
	"github.com/trexis-racing/roster/pkg/log"
	"github.com/trexis-racing/roster/pkg/pprof"
	"github.com/trexis-racing/roster/pkg/shutdown"
	"go.uber.org/zap"
)

type App struct {
	HttpApp  *fiber.App
	Logger   *zap.Logger
	AppConf  conf.AppConfig
	Shutdown *shutdown.Manager
	Pprof    *pprof.Server
}

// InitAppFunc init app function type
type InitAppFunc func(appConf conf.AppConfig) (*App, func(), error)

func NewApp(
	rt *router.Router,
	logger *zap.Logger,
	appConf conf.AppConfig,
	shutdownMgr *shutdown.Manager,
	pprofServer *pprof.Server,
) (*App, func(), error) {
	httpApp := rt.Router()

	cleanup := func() {
		logger.Info("flushing logs")
		log.Sync()
	}

	app := &App{
		HttpApp:  httpApp,
		Logger:   logger,
		AppConf:  appConf,
		Shutdown: shutdownMgr,
		Pprof:    pprofServer,
	}
	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	appConf, err := conf.LoadConfigFile(configFile)
	if err != nil {
		return nil, nil, err
	}

	app, cleanup, err := initApp(appConf)
	if err != nil {
		return nil, nil, err
	}

	// 配置文件变更时重新应用日志配置
	conf.Watch(configFile, func(c conf.AppConfig) {
		if err := log.Init(&c.Log); err != nil {
			log.Errorw("re-apply log config failed", "error", err)
		}
	})

	return app, cleanup, nil
}

// Run start app and wait for exit signal, then gracefully shutdown
func Run(app *App, cleanup func()) {
	logger := app.Logger.Sugar()
	httpConf := app.AppConf.Http

	stop := app.Shutdown.NotifySignals()
	defer stop()

	if err := app.Pprof.Start(); err != nil {
		logger.Warnw("pprof server not started", "error", err)
	}

	// start HTTP server (async)
	go func() {
		addr := httpConf.Addr()
		logger.Infow("HTTP listener started",
			"address", addr,
			"upstream", app.AppConf.Upstream.BaseURL,
		)
		var err error
		if httpConf.TLS.CertFile != "" && httpConf.TLS.KeyFile != "" {
			err = app.HttpApp.ListenTLS(addr, httpConf.TLS.CertFile, httpConf.TLS.KeyFile)
		} else {
			err = app.HttpApp.Listen(addr)
		}
		if err != nil {
			logger.Errorw("HTTP listener failed",
				"address", addr,
				"error", err,
			)
			app.Shutdown.Shutdown()
		}
	}()

	// wait for exit signal
	<-app.Shutdown.Wait()
	logger.Info("shutting down gracefully...")

	if err := app.HttpApp.ShutdownWithTimeout(httpConf.ShutdownAfter()); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	} else {
		logger.Info("HTTP server shut down gracefully")
	}

	ctx, cancel := context.WithTimeout(context.Background(), httpConf.ShutdownAfter())
	defer cancel()
	if err := app.Pprof.Stop(ctx); err != nil {
		logger.Warnw("pprof server shutdown error", "error", err)
	}

	cleanup()
}
