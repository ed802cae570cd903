package upstream

import "github.com/google/wire"

// ProviderSet 提供上游客户端
var ProviderSet = wire.NewSet(NewClient)
