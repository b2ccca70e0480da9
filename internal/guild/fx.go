package guild

import (
	"github.com/smallbiznis/civitas/internal/guild/repository"
	"github.com/smallbiznis/civitas/internal/guild/service"
	"go.uber.org/fx"
)

var Module = fx.Module("guild.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
