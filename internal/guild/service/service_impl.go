package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/civitas/internal/audit/domain"
	"github.com/smallbiznis/civitas/internal/authorization"
	"github.com/smallbiznis/civitas/internal/clock"
	"github.com/smallbiznis/civitas/internal/config"
	"github.com/smallbiznis/civitas/internal/guild/domain"
	"github.com/smallbiznis/civitas/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	Policy   *config.TaxPolicyHolder
	Authz    authorization.Service
	AuditSvc auditdomain.Service
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	policy   *config.TaxPolicyHolder
	authz    authorization.Service
	auditSvc auditdomain.Service
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("guild.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		policy:   p.Policy,
		authz:    p.Authz,
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
	}
}

func (s *Service) Setup(ctx context.Context, actor authorization.Actor, req domain.SetupRequest) (*domain.GuildConfig, error) {
	guildID := strings.TrimSpace(req.GuildID)
	if guildID == "" {
		return nil, domain.ErrInvalidGuild
	}

	existing, err := s.repo.FindByID(ctx, s.db, guildID)
	if err != nil {
		return nil, err
	}

	// Before the first setup only server administrators qualify; afterwards
	// the configured chef may reconfigure too.
	roles := authorization.GuildRoles{}
	if existing != nil {
		roles = authorization.GuildRoles{ChefRoleID: existing.ChefRoleID, OfficerRoleID: existing.OfficerRoleID}
	}
	if err := s.authz.Authorize(ctx, guildID, actor, authorization.GuildSubjects(actor, roles), authorization.ObjectGuild, authorization.ActionGuildConfigure); err != nil {
		return nil, err
	}

	policy := s.policy.Get()
	now := s.clock.Now().UTC()
	cfg := &domain.GuildConfig{
		GuildID:               guildID,
		CountryName:           strings.TrimSpace(req.CountryName),
		ChefRoleID:            strings.TrimSpace(req.ChefRoleID),
		OfficerRoleID:         strings.TrimSpace(req.OfficerRoleID),
		TaxesChannelID:        strings.TrimSpace(req.TaxesChannelID),
		ServerTaxRate:         rateOr(req.ServerTaxRate, policy.Defaults.Server),
		CountryTaxRate:        rateOr(req.CountryTaxRate, policy.Defaults.Country),
		DefaultCompanyTaxRate: rateOr(req.DefaultCompanyTaxRate, policy.Defaults.Company),
		ReminderMode:          domain.ReminderWeeks,
		ReminderEvery:         1,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if existing != nil {
		cfg.CreatedAt = existing.CreatedAt
		cfg.LastRemindedAt = existing.LastRemindedAt
		cfg.ReminderEnabled = existing.ReminderEnabled
		cfg.ReminderMode = existing.ReminderMode
		cfg.ReminderEvery = existing.ReminderEvery
	}
	if req.Reminder != nil {
		mode, err := domain.ParseReminderMode(req.Reminder.Mode)
		if err != nil {
			return nil, err
		}
		cfg.ReminderEnabled = req.Reminder.Enabled
		cfg.ReminderMode = mode
		cfg.ReminderEvery = req.Reminder.Every
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.CountryTaxRate.GreaterThan(policy.MaxCountryRate) || cfg.DefaultCompanyTaxRate.GreaterThan(policy.MaxCompanyRate) {
		return nil, domain.ErrRateAboveMaximum
	}

	if err := s.repo.Upsert(ctx, s.db, cfg); err != nil {
		return nil, err
	}

	targetID := guildID
	_ = s.auditSvc.AuditLog(ctx, guildID, actor.ID, auditdomain.ActionGuildSetup, "guild", &targetID, map[string]any{
		"country_name":             cfg.CountryName,
		"server_tax_rate":          cfg.ServerTaxRate.String(),
		"country_tax_rate":         cfg.CountryTaxRate.String(),
		"default_company_tax_rate": cfg.DefaultCompanyTaxRate.String(),
	})

	s.log.Info("guild configured",
		zap.String("guild_id", guildID),
		zap.Bool("created", existing == nil),
	)
	return cfg, nil
}

func (s *Service) Get(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, domain.ErrInvalidGuild
	}
	cfg, err := s.repo.FindByID(ctx, s.db, guildID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrNotConfigured
	}
	return cfg, nil
}

func (s *Service) SetCountryTaxRate(ctx context.Context, actor authorization.Actor, guildID string, rate decimal.Decimal) (*domain.GuildConfig, error) {
	cfg, err := s.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}

	subjects := authorization.GuildSubjects(actor, authorization.GuildRoles{
		ChefRoleID:    cfg.ChefRoleID,
		OfficerRoleID: cfg.OfficerRoleID,
	})
	if err := s.authz.Authorize(ctx, cfg.GuildID, actor, subjects, authorization.ObjectGuild, authorization.ActionCountryRateSet); err != nil {
		return nil, err
	}

	if err := domain.ValidateRate(rate); err != nil {
		return nil, err
	}
	if rate.GreaterThan(s.policy.Get().MaxCountryRate) {
		return nil, domain.ErrRateAboveMaximum
	}

	now := s.clock.Now().UTC()
	updated, err := s.repo.UpdateCountryTaxRate(ctx, s.db, cfg.GuildID, rate, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.ErrNotConfigured
	}

	previous := cfg.CountryTaxRate
	cfg.CountryTaxRate = rate
	cfg.UpdatedAt = now

	targetID := cfg.GuildID
	_ = s.auditSvc.AuditLog(ctx, cfg.GuildID, actor.ID, auditdomain.ActionCountryRateUpdate, "guild", &targetID, map[string]any{
		"previous_rate": previous.String(),
		"rate":          rate.String(),
	})
	s.metrics.RecordRateChange(ctx)

	s.log.Info("country tax rate updated",
		zap.String("guild_id", cfg.GuildID),
		zap.String("previous_rate", previous.String()),
		zap.String("rate", rate.String()),
	)
	return cfg, nil
}

func (s *Service) ListReminderEnabled(ctx context.Context) ([]domain.GuildConfig, error) {
	return s.repo.ListReminderEnabled(ctx, s.db)
}

func (s *Service) MarkReminded(ctx context.Context, guildID string, at time.Time) error {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return domain.ErrInvalidGuild
	}
	return s.repo.MarkReminded(ctx, s.db, guildID, at.UTC())
}

func rateOr(value *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if value == nil {
		return fallback
	}
	return *value
}
