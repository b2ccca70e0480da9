package taxes

import (
	"github.com/smallbiznis/civitas/internal/approval"
	"github.com/smallbiznis/civitas/internal/taxes/domain"
	"github.com/smallbiznis/civitas/internal/taxes/repository"
	"github.com/smallbiznis/civitas/internal/taxes/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxes.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(asRefresher),
)

// asRefresher lets sale and contract approvals trigger an outstanding refresh
// without importing this package.
func asRefresher(svc domain.Service) approval.OutstandingRefresher {
	return svc
}
