package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/smallbiznis/civitas/internal/apperr"
	auditdomain "github.com/smallbiznis/civitas/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	RoleGuildAdmin      = "role:guild_admin"
	RoleGuildChef       = "role:guild_chef"
	RoleGuildOfficer    = "role:guild_officer"
	RoleCompanyOwner    = "role:company_owner"
	RoleCompanyCEO      = "role:company_ceo"
	RoleCompanyManager  = "role:company_manager"
	RoleCompanyEmployee = "role:company_employee"
)

const (
	ObjectGuild   = "guild"
	ObjectCompany = "company"
	ObjectRecord  = "record"
	ObjectTax     = "tax"
)

const (
	ActionGuildConfigure = "guild.configure"
	ActionCountryRateSet = "country_rate.update"
	ActionCompanyCreate  = "company.create"
	ActionRecordSubmit   = "record.submit"
	ActionRecordDecide   = "record.decide"
	ActionTaxSettle      = "tax.settle"
	ActionTaxOutstanding = "tax.outstanding.view"
)

var (
	ErrForbidden     = apperr.Authorization("forbidden")
	ErrInvalidActor  = apperr.Validation("invalid_actor")
	ErrInvalidObject = apperr.Validation("invalid_object")
	ErrInvalidAction = apperr.Validation("invalid_action")
)

// Service decides whether any of the subjects may perform action on object
// inside a guild.
type Service interface {
	Authorize(ctx context.Context, guildID string, actor Actor, subjects []string, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

// NewEnforcer loads policies from the casbin_rule table and seeds the
// built-in ones. A nil db keeps policies in memory only.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	var enforcer *casbin.SyncedEnforcer
	if db != nil {
		adapter, err := gormadapter.NewAdapterByDB(db)
		if err != nil {
			return nil, err
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, adapter)
		if err != nil {
			return nil, err
		}
		enforcer.EnableAutoSave(true)
		if err := enforcer.LoadPolicy(); err != nil {
			return nil, err
		}
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err != nil {
			return nil, err
		}
	}

	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, guildID string, actor Actor, subjects []string, object, action string) error {
	if strings.TrimSpace(actor.ID) == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	for _, subject := range subjects {
		allowed, err := s.enforcer.Enforce(subject, object, action)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
	}

	s.log.Debug("authorization denied",
		zap.String("guild_id", guildID),
		zap.String("actor_id", actor.ID),
		zap.Strings("subjects", subjects),
		zap.String("object", object),
		zap.String("action", action),
	)
	s.auditDenied(ctx, guildID, actor, object, action)
	return ErrForbidden
}

func (s *ServiceImpl) auditDenied(ctx context.Context, guildID string, actor Actor, object, action string) {
	if s.auditSvc == nil || strings.TrimSpace(guildID) == "" {
		return
	}
	targetID := object
	_ = s.auditSvc.AuditLog(ctx, guildID, actor.ID, auditdomain.ActionAuthorizationDenied, "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Server administrators bootstrap the country
		{RoleGuildAdmin, ObjectGuild, ActionGuildConfigure},
		{RoleGuildAdmin, ObjectGuild, ActionCountryRateSet},
		{RoleGuildAdmin, ObjectCompany, ActionCompanyCreate},

		// Country leadership
		{RoleGuildChef, ObjectGuild, ActionGuildConfigure},
		{RoleGuildChef, ObjectGuild, ActionCountryRateSet},
		{RoleGuildOfficer, ObjectGuild, ActionCountryRateSet},
		{RoleGuildChef, ObjectCompany, ActionCompanyCreate},
		{RoleGuildOfficer, ObjectCompany, ActionCompanyCreate},
		{RoleGuildChef, ObjectTax, ActionTaxOutstanding},
		{RoleGuildOfficer, ObjectTax, ActionTaxOutstanding},

		// Company staff
		{RoleCompanyEmployee, ObjectRecord, ActionRecordSubmit},
		{RoleCompanyManager, ObjectRecord, ActionRecordSubmit},
		{RoleCompanyCEO, ObjectRecord, ActionRecordSubmit},
		{RoleCompanyManager, ObjectRecord, ActionRecordDecide},
		{RoleCompanyCEO, ObjectRecord, ActionRecordDecide},

		// Owners remit the country tax of their companies
		{RoleCompanyOwner, ObjectTax, ActionTaxSettle},
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy[0], policy[1], policy[2])
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return err
		}
	}
	return nil
}
