//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/hazards/internal/config"
	"github.com/zeusync/hazards/internal/core/observability/log"
	"github.com/zeusync/hazards/internal/server"
)

func InitializeApp(cfg *config.Config, level log.Level, feedCfg server.FeedConfig) (*App, error) {
	wire.Build(ProviderSet, wire.Struct(new(App), "*"))
	return nil, nil
}
