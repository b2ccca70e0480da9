package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	auditdomain "github.com/smallbiznis/civitas/internal/audit/domain"
	"github.com/smallbiznis/civitas/internal/authorization"
	"github.com/smallbiznis/civitas/internal/clock"
	"github.com/smallbiznis/civitas/internal/company/domain"
	"github.com/smallbiznis/civitas/internal/config"
	guilddomain "github.com/smallbiznis/civitas/internal/guild/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	GuildSvc guilddomain.Service
	Policy   *config.TaxPolicyHolder
	Authz    authorization.Service
	AuditSvc auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	guildSvc guilddomain.Service
	policy   *config.TaxPolicyHolder
	authz    authorization.Service
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("company.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		guildSvc: p.GuildSvc,
		policy:   p.Policy,
		authz:    p.Authz,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, actor authorization.Actor, req domain.CreateRequest) (*domain.Company, error) {
	guild, err := s.guildSvc.Get(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	subjects := authorization.GuildSubjects(actor, authorization.GuildRoles{
		ChefRoleID:    guild.ChefRoleID,
		OfficerRoleID: guild.OfficerRoleID,
	})
	if err := s.authz.Authorize(ctx, guild.GuildID, actor, subjects, authorization.ObjectCompany, authorization.ActionCompanyCreate); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	companySlug := slug.Make(name)
	if name == "" || companySlug == "" {
		return nil, domain.ErrInvalidName
	}
	companyType, err := domain.ParseType(req.Type)
	if err != nil {
		return nil, err
	}
	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		return nil, domain.ErrInvalidOwner
	}

	rate := guild.DefaultCompanyTaxRate
	if req.TaxRate != nil {
		rate = *req.TaxRate
	}
	if guilddomain.ValidateRate(rate) != nil || rate.GreaterThan(s.policy.Get().MaxCompanyRate) {
		return nil, domain.ErrInvalidTaxRate
	}

	now := s.clock.Now().UTC()
	company := &domain.Company{
		ID:             s.genID.Generate(),
		GuildID:        guild.GuildID,
		Name:           name,
		Slug:           companySlug,
		Emoji:          strings.TrimSpace(req.Emoji),
		Type:           companyType,
		OwnerID:        ownerID,
		CEORoleID:      strings.TrimSpace(req.CEORoleID),
		ManagerRoleID:  strings.TrimSpace(req.ManagerRoleID),
		EmployeeRoleID: strings.TrimSpace(req.EmployeeRoleID),
		TaxRate:        rate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, s.db, company); err != nil {
		return nil, err
	}

	targetID := company.ID.String()
	_ = s.auditSvc.AuditLog(ctx, guild.GuildID, actor.ID, auditdomain.ActionCompanyCreate, "company", &targetID, map[string]any{
		"name":     company.Name,
		"type":     string(company.Type),
		"owner_id": company.OwnerID,
		"tax_rate": company.TaxRate.String(),
	})

	s.log.Info("company created",
		zap.String("guild_id", guild.GuildID),
		zap.String("company_id", targetID),
		zap.String("type", string(company.Type)),
	)
	return company, nil
}

func (s *Service) Get(ctx context.Context, guildID string, id snowflake.ID) (*domain.Company, error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, domain.ErrInvalidGuild
	}
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	company, err := s.repo.FindByID(ctx, s.db, guildID, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

func (s *Service) ListByGuild(ctx context.Context, guildID string) ([]domain.Company, error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, domain.ErrInvalidGuild
	}
	return s.repo.ListByGuild(ctx, s.db, guildID)
}

func (s *Service) ListByOwner(ctx context.Context, guildID, ownerID string) ([]domain.Company, error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, domain.ErrInvalidGuild
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, domain.ErrInvalidOwner
	}
	return s.repo.ListByOwner(ctx, s.db, guildID, ownerID)
}
