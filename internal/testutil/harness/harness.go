// Package harness assembles the guild and company services on a fresh test
// database for packages that build on them.
package harness

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/civitas/internal/audit/domain"
	"github.com/smallbiznis/civitas/internal/authorization"
	"github.com/smallbiznis/civitas/internal/clock"
	companydomain "github.com/smallbiznis/civitas/internal/company/domain"
	companyrepo "github.com/smallbiznis/civitas/internal/company/repository"
	companyservice "github.com/smallbiznis/civitas/internal/company/service"
	guilddomain "github.com/smallbiznis/civitas/internal/guild/domain"
	guildrepo "github.com/smallbiznis/civitas/internal/guild/repository"
	guildservice "github.com/smallbiznis/civitas/internal/guild/service"
	"github.com/smallbiznis/civitas/internal/testutil"
	"github.com/smallbiznis/civitas/internal/testutil/fixture"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Env struct {
	DB        *gorm.DB
	Clock     *clock.FakeClock
	Node      *snowflake.Node
	Audit     auditdomain.Service
	Authz     authorization.Service
	Guilds    guilddomain.Service
	Companies companydomain.Service
}

func New(t *testing.T) *Env {
	t.Helper()
	db := testutil.OpenDB(t)
	clk := testutil.Clock()
	node := testutil.Node(t)
	audit := fixture.Audit(db, node, clk)
	authz := fixture.Authz(t, audit)
	policy := fixture.Policy()

	guilds := guildservice.New(guildservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    clk,
		Repo:     guildrepo.Provide(),
		Policy:   policy,
		Authz:    authz,
		AuditSvc: audit,
	})
	companies := companyservice.New(companyservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     companyrepo.Provide(),
		GuildSvc: guilds,
		Policy:   policy,
		Authz:    authz,
		AuditSvc: audit,
	})

	return &Env{
		DB:        db,
		Clock:     clk,
		Node:      node,
		Audit:     audit,
		Authz:     authz,
		Guilds:    guilds,
		Companies: companies,
	}
}

// Guild seeds a guild with the given server and country rates.
func (e *Env) Guild(t *testing.T, guildID, serverRate, countryRate string) *guilddomain.GuildConfig {
	t.Helper()
	return fixture.SeedGuild(t, e.DB, guildID, serverRate, countryRate)
}

// Company seeds a company with a fresh id. See fixture.SeedCompany for the
// role ids it carries.
func (e *Env) Company(t *testing.T, guildID, name string, typ companydomain.Type, ownerID, taxRate string) *companydomain.Company {
	t.Helper()
	return fixture.SeedCompany(t, e.DB, e.Node.Generate(), guildID, name, typ, ownerID, taxRate)
}

// Staff returns an actor holding the named role of the company
// ("ceo", "manager" or "employee").
func Staff(company *companydomain.Company, userID, role string) authorization.Actor {
	return authorization.Actor{ID: userID, Name: userID, RoleIDs: []string{"r-" + company.Name + "-" + role}}
}
