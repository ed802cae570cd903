package router

import (
	"github.com/google/wire"
	"github.com/trexis-racing/roster/internal/proxy/service"
	"github.com/trexis-racing/roster/internal/proxy/upstream"
)

// ProviderSet 提供路由层依赖
var ProviderSet = wire.NewSet(
	NewRouter,
	wire.Bind(new(Authenticator), new(*service.LoginService)),
	wire.Bind(new(Forwarder), new(*upstream.Client)),
)
