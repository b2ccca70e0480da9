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
	"github.com/smallbiznis/civitas/internal/contract/domain"
	guilddomain "github.com/smallbiznis/civitas/internal/guild/domain"
	"github.com/smallbiznis/civitas/internal/notify"
	"github.com/smallbiznis/civitas/internal/observability/metrics"
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
		log:        p.Log.Named("contract.service"),
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

func (s *Service) Submit(ctx context.Context, actor authorization.Actor, req domain.SubmitRequest) (*domain.Contract, error) {
	company, err := s.companySvc.Get(ctx, req.GuildID, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if company.Type != companydomain.TypeBuild {
		return nil, domain.ErrWrongCompanyType
	}
	if err := s.authz.Authorize(ctx, company.GuildID, actor, authorization.CompanySubjects(actor, company.Roles()), authorization.ObjectRecord, authorization.ActionRecordSubmit); err != nil {
		return nil, err
	}

	guild, err := s.guildSvc.Get(ctx, company.GuildID)
	if err != nil {
		return nil, err
	}

	contract, err := domain.NewContract(domain.NewContractParams{
		ID:              s.genID.Generate(),
		GuildID:         company.GuildID,
		CompanyID:       company.ID,
		SubmittedBy:     actor.ID,
		SubmittedByName: actor.Name,
		Client:          req.Client,
		Description:     req.Description,
		GrossAmount:     req.GrossAmount,
		EmployeeCount:   req.EmployeeCount,
		CountryTaxRate:  guild.CountryTaxRate,
		CompanyTaxRate:  company.TaxRate,
		CreatedAt:       s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, contract); err != nil {
		return nil, err
	}

	s.metrics.RecordSubmission(ctx, string(notify.KindContract))
	s.publish(ctx, notify.EventRecordSubmitted, contract, company)

	s.log.Info("contract submitted",
		zap.String("guild_id", contract.GuildID),
		zap.String("contract_id", contract.ID.String()),
		zap.String("company_id", company.ID.String()),
		zap.Int("employee_count", contract.EmployeeCount),
	)
	return contract, nil
}

func (s *Service) Approve(ctx context.Context, actor authorization.Actor, guildID string, id snowflake.ID) (*domain.Contract, error) {
	return s.decide(ctx, actor, guildID, id, approval.DecisionApprove, "")
}

func (s *Service) Reject(ctx context.Context, actor authorization.Actor, guildID string, id snowflake.ID, reason string) (*domain.Contract, error) {
	return s.decide(ctx, actor, guildID, id, approval.DecisionReject, reason)
}

func (s *Service) decide(ctx context.Context, actor authorization.Actor, guildID string, id snowflake.ID, decision approval.Decision, reason string) (*domain.Contract, error) {
	contract, err := s.Get(ctx, guildID, id)
	if err != nil {
		return nil, err
	}
	company, err := s.companySvc.Get(ctx, contract.GuildID, contract.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, contract.GuildID, actor, authorization.CompanySubjects(actor, company.Roles()), authorization.ObjectRecord, authorization.ActionRecordDecide); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if err := contract.Apply(decision, approval.Actor{ID: actor.ID, Name: actor.Name}, reason, now); err != nil {
		return nil, err
	}
	contract.UpdatedAt = now

	ok, err := s.repo.Decide(ctx, s.db, contract)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, approval.ErrAlreadyProcessed
	}

	action, event := auditdomain.ActionContractApprove, notify.EventRecordApproved
	if decision == approval.DecisionReject {
		action, event = auditdomain.ActionContractReject, notify.EventRecordRejected
	}
	targetID := contract.ID.String()
	_ = s.auditSvc.AuditLog(ctx, contract.GuildID, actor.ID, action, "contract", &targetID, map[string]any{
		"company_id":  company.ID.String(),
		"country_tax": money.Format(contract.CountryTax),
		"reason":      reason,
	})
	s.metrics.RecordDecision(ctx, string(notify.KindContract), string(decision))
	s.publish(ctx, event, contract, company)

	if decision == approval.DecisionApprove && s.refresher != nil {
		s.refresher.RefreshOutstanding(ctx, contract.GuildID)
	}

	s.log.Info("contract decided",
		zap.String("guild_id", contract.GuildID),
		zap.String("contract_id", targetID),
		zap.String("decision", string(decision)),
	)
	return contract, nil
}

func (s *Service) Get(ctx context.Context, guildID string, id snowflake.ID) (*domain.Contract, error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, domain.ErrInvalidGuild
	}
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	contract, err := s.repo.FindByID(ctx, s.db, guildID, id)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, domain.ErrNotFound
	}
	return contract, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Contract, error) {
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

// publish reports the per-employee amount as the payout.
func (s *Service) publish(ctx context.Context, eventType notify.EventType, contract *domain.Contract, company *companydomain.Company) {
	payload := &notify.RecordPayload{
		Kind:         notify.KindContract,
		RecordID:     contract.ID.String(),
		CompanyID:    company.ID.String(),
		CompanyName:  company.Name,
		SubmittedBy:  contract.SubmittedBy,
		GrossAmount:  money.Format(contract.GrossAmount),
		CountryTax:   money.Format(contract.CountryTax),
		PayoutAmount: money.Format(contract.PerEmployeeAmount),
	}
	if contract.DecidedBy != nil {
		payload.DecidedBy = *contract.DecidedBy
	}
	if contract.RejectionReason != nil {
		payload.RejectionReason = *contract.RejectionReason
	}

	err := s.notifier.Notify(ctx, notify.Event{
		Type:       eventType,
		GuildID:    contract.GuildID,
		OccurredAt: s.clock.Now().UTC(),
		Record:     payload,
	})
	if err != nil {
		s.log.Warn("failed to publish contract event", zap.String("type", string(eventType)), zap.Error(err))
	}
}
