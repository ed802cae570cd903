//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/trexis-racing/roster/internal/proxy/bootstrap"
	"github.com/trexis-racing/roster/internal/proxy/conf"
	"github.com/trexis-racing/roster/internal/proxy/router"
	"github.com/trexis-racing/roster/internal/proxy/service"
	"github.com/trexis-racing/roster/internal/proxy/upstream"
	"github.com/trexis-racing/roster/pkg/http"
	"github.com/trexis-racing/roster/pkg/log"
	"github.com/trexis-racing/roster/pkg/metrics"
	"github.com/trexis-racing/roster/pkg/pprof"
	"github.com/trexis-racing/roster/pkg/shutdown"
)

func initApp(appConf conf.AppConfig) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		confProviderSet,
		// 日志
		log.ProviderSet,
		// 指标
		metrics.ProviderSet,
		// 上游
		upstream.ProviderSet,
		// 服务层
		service.ProviderSet,
		// 路由层
		router.ProviderSet,
		shutdown.NewManager,
		// 调试
		pprof.ProviderSet,
		// 应用层
		bootstrap.NewApp,
	))
}

// confProviderSet 配置层 ProviderSet
var confProviderSet = wire.NewSet(
	provideHttpConfig,
	provideAuthConfig,
	provideUpstreamConfig,
	provideLogConfig,
	providePprofConfig,
)

func provideHttpConfig(appConf conf.AppConfig) *http.Http {
	return &appConf.Http
}

func provideAuthConfig(httpConf *http.Http) http.Auth {
	return httpConf.Auth
}

func provideUpstreamConfig(appConf conf.AppConfig) conf.UpstreamConf {
	return appConf.Upstream
}

func provideLogConfig(appConf conf.AppConfig) *log.Conf {
	return &appConf.Log
}

func providePprofConfig(appConf conf.AppConfig) pprof.Conf {
	return appConf.Pprof
}
