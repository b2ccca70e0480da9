// Package fixture wires real collaborator services for domain service tests.
package fixture

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/civitas/internal/audit/domain"
	auditrepo "github.com/smallbiznis/civitas/internal/audit/repository"
	auditservice "github.com/smallbiznis/civitas/internal/audit/service"
	"github.com/smallbiznis/civitas/internal/authorization"
	"github.com/smallbiznis/civitas/internal/clock"
	"github.com/smallbiznis/civitas/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Audit(db *gorm.DB, node *snowflake.Node, clk clock.Clock) auditdomain.Service {
	return auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  auditrepo.Provide(),
	})
}

// Authz returns an authorization service backed by an in-memory enforcer.
func Authz(t *testing.T, audit auditdomain.Service) authorization.Service {
	t.Helper()
	enforcer, err := authorization.NewEnforcer(nil)
	if err != nil {
		t.Fatalf("enforcer: %v", err)
	}
	return authorization.NewService(authorization.Params{
		Log:      zap.NewNop(),
		Enforcer: enforcer,
		AuditSvc: audit,
	})
}

// Policy returns a static tax policy: server 0, country 0.05, company 0.15.
func Policy() *config.TaxPolicyHolder {
	return config.NewStaticTaxPolicyHolder(config.TaxPolicy{
		Defaults: config.RateDefaults{
			Server:  decimal.Zero,
			Country: decimal.RequireFromString("0.05"),
			Company: decimal.RequireFromString("0.15"),
		},
		MaxCountryRate: decimal.RequireFromString("0.5"),
		MaxCompanyRate: decimal.NewFromInt(1),
	})
}
