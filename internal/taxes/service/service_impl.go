package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/civitas/internal/audit/domain"
	"github.com/smallbiznis/civitas/internal/authorization"
	"github.com/smallbiznis/civitas/internal/clock"
	companydomain "github.com/smallbiznis/civitas/internal/company/domain"
	contractdomain "github.com/smallbiznis/civitas/internal/contract/domain"
	guilddomain "github.com/smallbiznis/civitas/internal/guild/domain"
	"github.com/smallbiznis/civitas/internal/notify"
	"github.com/smallbiznis/civitas/internal/observability/metrics"
	"github.com/smallbiznis/civitas/internal/ratelimit"
	saledomain "github.com/smallbiznis/civitas/internal/sale/domain"
	"github.com/smallbiznis/civitas/internal/taxes/domain"
	"github.com/smallbiznis/civitas/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	SaleRepo     saledomain.Repository
	ContractRepo contractdomain.Repository
	GuildSvc     guilddomain.Service
	CompanySvc   companydomain.Service
	Authz        authorization.Service
	AuditSvc     auditdomain.Service
	Notifier     notify.Notifier
	Guard        *ratelimit.Guard `optional:"true"`
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	saleRepo     saledomain.Repository
	contractRepo contractdomain.Repository
	guildSvc     guilddomain.Service
	companySvc   companydomain.Service
	authz        authorization.Service
	auditSvc     auditdomain.Service
	notifier     notify.Notifier
	guard        *ratelimit.Guard
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("taxes.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		saleRepo:     p.SaleRepo,
		contractRepo: p.ContractRepo,
		guildSvc:     p.GuildSvc,
		companySvc:   p.CompanySvc,
		authz:        p.Authz,
		auditSvc:     p.AuditSvc,
		notifier:     p.Notifier,
		guard:        p.Guard,
		metrics:      p.Metrics,
	}
}

func (s *Service) ComputeOutstanding(ctx context.Context, guildID string) (*domain.Outstanding, error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, domain.ErrInvalidGuild
	}
	companies, err := s.companySvc.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	pools, err := s.loadPools(ctx, s.db, guildID, companies)
	if err != nil {
		return nil, err
	}
	return domain.Summarize(guildID, pools), nil
}

func (s *Service) Outstanding(ctx context.Context, actor authorization.Actor, guildID string) (*domain.Outstanding, error) {
	guild, err := s.guildSvc.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	subjects := authorization.GuildSubjects(actor, authorization.GuildRoles{
		ChefRoleID:    guild.ChefRoleID,
		OfficerRoleID: guild.OfficerRoleID,
	})
	if err := s.authz.Authorize(ctx, guild.GuildID, actor, subjects, authorization.ObjectTax, authorization.ActionTaxOutstanding); err != nil {
		return nil, err
	}
	return s.ComputeOutstanding(ctx, guild.GuildID)
}

// loadPools reads the unpaid items of each company from the store matching
// its type. Pools follow the order of companies; items with no country tax
// owe nothing and are left out.
func (s *Service) loadPools(ctx context.Context, db *gorm.DB, guildID string, companies []companydomain.Company) ([]domain.Pool, error) {
	var agricole, build []snowflake.ID
	for _, c := range companies {
		switch c.Type {
		case companydomain.TypeAgricole:
			agricole = append(agricole, c.ID)
		case companydomain.TypeBuild:
			build = append(build, c.ID)
		}
	}

	items := make(map[snowflake.ID][]domain.Item, len(companies))

	sales, err := s.saleRepo.ListOutstanding(ctx, db, guildID, agricole)
	if err != nil {
		return nil, err
	}
	for _, sale := range sales {
		if !sale.CountryTax.IsPositive() {
			continue
		}
		items[sale.CompanyID] = append(items[sale.CompanyID], domain.Item{
			ID:         sale.ID,
			Kind:       domain.ItemSale,
			CountryTax: sale.CountryTax,
			CreatedAt:  sale.CreatedAt,
		})
	}

	contracts, err := s.contractRepo.ListOutstanding(ctx, db, guildID, build)
	if err != nil {
		return nil, err
	}
	for _, contract := range contracts {
		if !contract.CountryTax.IsPositive() {
			continue
		}
		items[contract.CompanyID] = append(items[contract.CompanyID], domain.Item{
			ID:         contract.ID,
			Kind:       domain.ItemContract,
			CountryTax: contract.CountryTax,
			CreatedAt:  contract.CreatedAt,
		})
	}

	pools := make([]domain.Pool, 0, len(companies))
	for _, c := range companies {
		pools = append(pools, domain.Pool{
			CompanyID:   c.ID,
			CompanyName: c.Name,
			CompanyType: c.Type,
			Items:       items[c.ID],
		})
	}
	return pools, nil
}

func (s *Service) ListRemittances(ctx context.Context, req domain.ListRequest) ([]domain.Remittance, error) {
	guildID := strings.TrimSpace(req.GuildID)
	if guildID == "" {
		return nil, domain.ErrInvalidGuild
	}
	return s.repo.List(ctx, s.db, domain.ListFilter{
		GuildID:   guildID,
		CompanyID: req.CompanyID,
		Limit:     req.Limit,
	})
}

func (s *Service) GetRemittance(ctx context.Context, guildID string, id snowflake.ID) (*domain.Remittance, error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, domain.ErrInvalidGuild
	}
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	remittance, err := s.repo.FindByID(ctx, s.db, guildID, id)
	if err != nil {
		return nil, err
	}
	if remittance == nil {
		return nil, domain.ErrNotFound
	}
	return remittance, nil
}

// RefreshOutstanding publishes the current outstanding projection so the
// gateway can redraw the guild's tax board.
func (s *Service) RefreshOutstanding(ctx context.Context, guildID string) {
	out, err := s.ComputeOutstanding(ctx, guildID)
	if err != nil {
		s.log.Warn("failed to compute outstanding", zap.String("guild_id", guildID), zap.Error(err))
		return
	}
	payload := outstandingPayload(out)
	err = s.notifier.Notify(ctx, notify.Event{
		Type:        notify.EventOutstandingChanged,
		GuildID:     out.GuildID,
		OccurredAt:  s.clock.Now().UTC(),
		Outstanding: &payload,
	})
	if err != nil {
		s.log.Warn("failed to publish outstanding", zap.String("guild_id", guildID), zap.Error(err))
	}
}

func outstandingPayload(out *domain.Outstanding) notify.OutstandingPayload {
	payload := notify.OutstandingPayload{
		GrandTotal: money.Format(out.GrandTotal),
		Companies:  make([]notify.CompanyOutstanding, 0, len(out.Companies)),
	}
	for _, c := range out.Companies {
		payload.Companies = append(payload.Companies, notify.CompanyOutstanding{
			CompanyID:   c.CompanyID.String(),
			CompanyName: c.CompanyName,
			TotalDue:    money.Format(c.TotalDue),
			ItemCount:   c.ItemCount,
		})
	}
	return payload
}
