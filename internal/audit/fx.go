package audit

import (
	"github.com/smallbiznis/civitas/internal/audit/repository"
	"github.com/smallbiznis/civitas/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
