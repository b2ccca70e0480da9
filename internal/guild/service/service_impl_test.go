package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/civitas/internal/audit/domain"
	"github.com/smallbiznis/civitas/internal/authorization"
	"github.com/smallbiznis/civitas/internal/guild/domain"
	"github.com/smallbiznis/civitas/internal/guild/repository"
	"github.com/smallbiznis/civitas/internal/testutil"
	"github.com/smallbiznis/civitas/internal/testutil/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var admin = authorization.Actor{ID: "admin", Name: "Admin", Admin: true}

func newTestService(t *testing.T) (domain.Service, auditdomain.Service) {
	t.Helper()
	db := testutil.OpenDB(t)
	clk := testutil.Clock()
	audit := fixture.Audit(db, testutil.Node(t), clk)

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    clk,
		Repo:     repository.Provide(),
		Policy:   fixture.Policy(),
		Authz:    fixture.Authz(t, audit),
		AuditSvc: audit,
	})
	return svc, audit
}

func setup(t *testing.T, svc domain.Service) *domain.GuildConfig {
	t.Helper()
	cfg, err := svc.Setup(context.Background(), admin, domain.SetupRequest{
		GuildID:        "g1",
		CountryName:    "Edora",
		ChefRoleID:     "r-chef",
		OfficerRoleID:  "r-officer",
		TaxesChannelID: "c-taxes",
	})
	require.NoError(t, err)
	return cfg
}

func TestSetupUsesPolicyDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	cfg := setup(t, svc)

	assert.True(t, cfg.CountryTaxRate.Equal(decimal.RequireFromString("0.05")))
	assert.True(t, cfg.DefaultCompanyTaxRate.Equal(decimal.RequireFromString("0.15")))
	assert.True(t, cfg.ServerTaxRate.IsZero())

	stored, err := svc.Get(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "Edora", stored.CountryName)
	assert.Equal(t, "r-chef", stored.ChefRoleID)
	assert.True(t, stored.CountryTaxRate.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, domain.ReminderWeeks, stored.ReminderMode)
}

func TestSetupRequiresAdminOrChef(t *testing.T) {
	svc, _ := newTestService(t)
	stranger := authorization.Actor{ID: "u1", RoleIDs: []string{"r-chef"}}

	_, err := svc.Setup(context.Background(), stranger, domain.SetupRequest{GuildID: "g1", CountryName: "Edora"})
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	setup(t, svc)

	// once configured the chef role is recognised
	rate := decimal.RequireFromString("0.1")
	cfg, err := svc.Setup(context.Background(), stranger, domain.SetupRequest{
		GuildID:        "g1",
		CountryName:    "Edora Nova",
		ChefRoleID:     "r-chef",
		CountryTaxRate: &rate,
		Reminder:       &domain.ReminderSettings{Enabled: true, Mode: "days", Every: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "Edora Nova", cfg.CountryName)
	assert.Equal(t, domain.ReminderDays, cfg.ReminderMode)

	enabled, err := svc.ListReminderEnabled(context.Background())
	require.NoError(t, err)
	assert.Len(t, enabled, 0, "guild without taxes channel is skipped")
}

func TestSetCountryTaxRate(t *testing.T) {
	svc, audit := newTestService(t)
	setup(t, svc)

	officer := authorization.Actor{ID: "u1", RoleIDs: []string{"r-officer"}}
	cfg, err := svc.SetCountryTaxRate(context.Background(), officer, "g1", decimal.RequireFromString("0.08"))
	require.NoError(t, err)
	assert.True(t, cfg.CountryTaxRate.Equal(decimal.RequireFromString("0.08")))

	stored, err := svc.Get(context.Background(), "g1")
	require.NoError(t, err)
	assert.True(t, stored.CountryTaxRate.Equal(decimal.RequireFromString("0.08")))

	logs, err := audit.List(context.Background(), auditdomain.ListFilter{GuildID: "g1", Action: auditdomain.ActionCountryRateUpdate})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "u1", logs[0].ActorID)
	assert.Equal(t, "0.05", logs[0].Metadata["previous_rate"])
}

func TestSetCountryTaxRateRejects(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SetCountryTaxRate(context.Background(), admin, "g1", decimal.RequireFromString("0.1"))
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	setup(t, svc)

	member := authorization.Actor{ID: "u2", RoleIDs: []string{"r-other"}}
	_, err = svc.SetCountryTaxRate(context.Background(), member, "g1", decimal.RequireFromString("0.1"))
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	_, err = svc.SetCountryTaxRate(context.Background(), admin, "g1", decimal.RequireFromString("-0.1"))
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = svc.SetCountryTaxRate(context.Background(), admin, "g1", decimal.RequireFromString("0.6"))
	assert.ErrorIs(t, err, domain.ErrRateAboveMaximum)
}

func TestMarkReminded(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Setup(context.Background(), admin, domain.SetupRequest{
		GuildID:        "g1",
		CountryName:    "Edora",
		TaxesChannelID: "c-taxes",
		Reminder:       &domain.ReminderSettings{Enabled: true, Mode: "WEEKS", Every: 1},
	})
	require.NoError(t, err)

	at := testutil.Epoch.Add(time.Hour)
	require.NoError(t, svc.MarkReminded(context.Background(), "g1", at))

	enabled, err := svc.ListReminderEnabled(context.Background())
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	require.NotNil(t, enabled[0].LastRemindedAt)
	assert.True(t, enabled[0].LastRemindedAt.Equal(at))
	assert.False(t, enabled[0].ReminderDue(at.AddDate(0, 0, 6)))
	assert.True(t, enabled[0].ReminderDue(at.AddDate(0, 0, 7)))
}
