package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/civitas/internal/approval"
	auditdomain "github.com/smallbiznis/civitas/internal/audit/domain"
	"github.com/smallbiznis/civitas/internal/authorization"
	"github.com/smallbiznis/civitas/internal/clock"
	companydomain "github.com/smallbiznis/civitas/internal/company/domain"
	guilddomain "github.com/smallbiznis/civitas/internal/guild/domain"
	"github.com/smallbiznis/civitas/internal/notify"
	"github.com/smallbiznis/civitas/internal/observability/metrics"
	"github.com/smallbiznis/civitas/internal/sale/domain"
	"github.com/smallbiznis/civitas/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	GuildSvc   guilddomain.Service
	CompanySvc companydomain.Service
	Authz      authorization.Service
	AuditSvc   auditdomain.Service
	Notifier   notify.Notifier
	Refresher  approval.OutstandingRefresher `optional:"true"`
	Metrics    *metrics.Metrics              `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	guildSvc   guilddomain.Service
	companySvc companydomain.Service
	authz      authorization.Service
	auditSvc   auditdomain.Service
	notifier   notify.Notifier
	refresher  approval.OutstandingRefresher
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("sale.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		guildSvc:   p.GuildSvc,
		companySvc: p.CompanySvc,
		authz:      p.Authz,
		auditSvc:   p.AuditSvc,
		notifier:   p.Notifier,
		refresher:  p.Refresher,
		metrics:    p.Metrics,
	}
}

func (s *Service) Submit(ctx context.Context, actor authorization.Actor, req domain.SubmitRequest) (*domain.Sale, error) {
	company, err := s.companySvc.Get(ctx, req.GuildID, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if company.Type != companydomain.TypeAgricole {
		return nil, domain.ErrWrongCompanyType
	}
	if err := s.authz.Authorize(ctx, company.GuildID, actor, authorization.CompanySubjects(actor, company.Roles()), authorization.ObjectRecord, authorization.ActionRecordSubmit); err != nil {
		return nil, err
	}

	guild, err := s.guildSvc.Get(ctx, company.GuildID)
	if err != nil {
		return nil, err
	}

	sale, err := domain.NewSale(domain.NewSaleParams{
		ID:              s.genID.Generate(),
		GuildID:         company.GuildID,
		CompanyID:       company.ID,
		SubmittedBy:     actor.ID,
		SubmittedByName: actor.Name,
		Crop:            req.Crop,
		Note:            req.Note,
		GrossAmount:     req.GrossAmount,
		ServerTaxRate:   guild.ServerTaxRate,
		CompanyTaxRate:  company.TaxRate,
		CountryTaxRate:  guild.CountryTaxRate,
		CreatedAt:       s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, sale); err != nil {
		return nil, err
	}

	s.metrics.RecordSubmission(ctx, string(notify.KindSale))
	s.publish(ctx, notify.EventRecordSubmitted, sale, company)

	s.log.Info("sale submitted",
		zap.String("guild_id", sale.GuildID),
		zap.String("sale_id", sale.ID.String()),
		zap.String("company_id", company.ID.String()),
		zap.String("gross_amount", money.Format(sale.GrossAmount)),
	)
	return sale, nil
}

func (s *Service) Approve(ctx context.Context, actor authorization.Actor, guildID string, id snowflake.ID) (*domain.Sale, error) {
	return s.decide(ctx, actor, guildID, id, approval.DecisionApprove, "")
}

func (s *Service) Reject(ctx context.Context, actor authorization.Actor, guildID string, id snowflake.ID, reason string) (*domain.Sale, error) {
	return s.decide(ctx, actor, guildID, id, approval.DecisionReject, reason)
}

func (s *Service) decide(ctx context.Context, actor authorization.Actor, guildID string, id snowflake.ID, decision approval.Decision, reason string) (*domain.Sale, error) {
	sale, err := s.Get(ctx, guildID, id)
	if err != nil {
		return nil, err
	}
	company, err := s.companySvc.Get(ctx, sale.GuildID, sale.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, sale.GuildID, actor, authorization.CompanySubjects(actor, company.Roles()), authorization.ObjectRecord, authorization.ActionRecordDecide); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if err := sale.Apply(decision, approval.Actor{ID: actor.ID, Name: actor.Name}, reason, now); err != nil {
		return nil, err
	}
	sale.UpdatedAt = now

	ok, err := s.repo.Decide(ctx, s.db, sale)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, approval.ErrAlreadyProcessed
	}

	action, event := auditdomain.ActionSaleApprove, notify.EventRecordApproved
	if decision == approval.DecisionReject {
		action, event = auditdomain.ActionSaleReject, notify.EventRecordRejected
	}
	targetID := sale.ID.String()
	_ = s.auditSvc.AuditLog(ctx, sale.GuildID, actor.ID, action, "sale", &targetID, map[string]any{
		"company_id":  company.ID.String(),
		"country_tax": money.Format(sale.CountryTax),
		"reason":      reason,
	})
	s.metrics.RecordDecision(ctx, string(notify.KindSale), string(decision))
	s.publish(ctx, event, sale, company)

	if decision == approval.DecisionApprove && s.refresher != nil {
		s.refresher.RefreshOutstanding(ctx, sale.GuildID)
	}

	s.log.Info("sale decided",
		zap.String("guild_id", sale.GuildID),
		zap.String("sale_id", targetID),
		zap.String("decision", string(decision)),
	)
	return sale, nil
}

func (s *Service) Get(ctx context.Context, guildID string, id snowflake.ID) (*domain.Sale, error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, domain.ErrInvalidGuild
	}
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	sale, err := s.repo.FindByID(ctx, s.db, guildID, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Sale, error) {
	filter := domain.ListFilter{
		GuildID:   strings.TrimSpace(req.GuildID),
		CompanyID: req.CompanyID,
		Limit:     req.Limit,
	}
	if filter.GuildID == "" {
		return nil, domain.ErrInvalidGuild
	}
	if strings.TrimSpace(req.Status) != "" {
		status, err := approval.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) publish(ctx context.Context, eventType notify.EventType, sale *domain.Sale, company *companydomain.Company) {
	payload := &notify.RecordPayload{
		Kind:         notify.KindSale,
		RecordID:     sale.ID.String(),
		CompanyID:    company.ID.String(),
		CompanyName:  company.Name,
		SubmittedBy:  sale.SubmittedBy,
		GrossAmount:  money.Format(sale.GrossAmount),
		CountryTax:   money.Format(sale.CountryTax),
		PayoutAmount: money.Format(sale.NetAmount),
	}
	if sale.DecidedBy != nil {
		payload.DecidedBy = *sale.DecidedBy
	}
	if sale.RejectionReason != nil {
		payload.RejectionReason = *sale.RejectionReason
	}

	err := s.notifier.Notify(ctx, notify.Event{
		Type:       eventType,
		GuildID:    sale.GuildID,
		OccurredAt: s.clock.Now().UTC(),
		Record:     payload,
	})
	if err != nil {
		s.log.Warn("failed to publish sale event", zap.String("type", string(eventType)), zap.Error(err))
	}
}
