package service

import (
	"github.com/google/wire"
	"github.com/trexis-racing/roster/internal/proxy/upstream"
)

// ProviderSet 提供登录服务，用户来源绑定到上游客户端
var ProviderSet = wire.NewSet(
	NewLoginService,
	wire.Bind(new(UserSource), new(*upstream.Client)),
)
