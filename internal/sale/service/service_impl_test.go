package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/apperr"
	"github.com/smallbiznis/civitas/internal/approval"
	auditdomain "github.com/smallbiznis/civitas/internal/audit/domain"
	"github.com/smallbiznis/civitas/internal/authorization"
	companydomain "github.com/smallbiznis/civitas/internal/company/domain"
	"github.com/smallbiznis/civitas/internal/notify"
	notifymock "github.com/smallbiznis/civitas/internal/notify/mock"
	"github.com/smallbiznis/civitas/internal/sale/domain"
	"github.com/smallbiznis/civitas/internal/sale/repository"
	"github.com/smallbiznis/civitas/internal/testutil/harness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type refresherSpy struct {
	guilds []string
}

func (r *refresherSpy) RefreshOutstanding(ctx context.Context, guildID string) {
	r.guilds = append(r.guilds, guildID)
}

type testEnv struct {
	*harness.Env
	svc       domain.Service
	company   *companydomain.Company
	events    []notify.Event
	refresher *refresherSpy
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{Env: harness.New(t), refresher: &refresherSpy{}}
	env.Guild(t, "g1", "0.10", "0.05")
	env.company = env.Company(t, "g1", "ferme", companydomain.TypeAgricole, "owner", "0.15")

	ctrl := gomock.NewController(t)
	notifier := notifymock.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		Do(func(ctx context.Context, event notify.Event) { env.events = append(env.events, event) }).
		Return(nil).
		AnyTimes()

	env.svc = New(Params{
		DB:         env.DB,
		Log:        zap.NewNop(),
		GenID:      env.Node,
		Clock:      env.Clock,
		Repo:       repository.Provide(),
		GuildSvc:   env.Guilds,
		CompanySvc: env.Companies,
		Authz:      env.Authz,
		AuditSvc:   env.Audit,
		Notifier:   notifier,
		Refresher:  env.refresher,
	})
	return env
}

func (e *testEnv) submit(t *testing.T, gross string) *domain.Sale {
	t.Helper()
	sale, err := e.svc.Submit(context.Background(), harness.Staff(e.company, "emp", "employee"), domain.SubmitRequest{
		GuildID:     "g1",
		CompanyID:   e.company.ID,
		GrossAmount: decimal.RequireFromString(gross),
		Crop:        "blé",
	})
	require.NoError(t, err)
	return sale
}

func TestSubmitComputesSplit(t *testing.T) {
	env := newTestEnv(t)
	sale := env.submit(t, "100")

	assert.True(t, sale.ServerTax.Equal(decimal.RequireFromString("10")))
	assert.True(t, sale.CompanyTax.Equal(decimal.RequireFromString("13.5")))
	assert.True(t, sale.CountryTax.Equal(decimal.RequireFromString("4.5")))
	assert.True(t, sale.NetAmount.Equal(decimal.RequireFromString("72")))
	assert.Equal(t, approval.StatusPending, sale.Status)

	stored, err := env.svc.Get(context.Background(), "g1", sale.ID)
	require.NoError(t, err)
	assert.True(t, stored.NetAmount.Equal(sale.NetAmount))
	assert.True(t, stored.CountryTaxRate.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, "Blé", stored.Crop)
	assert.Equal(t, approval.StatusPending, stored.Status)
	assert.False(t, stored.CountryTaxPaid)

	require.Len(t, env.events, 1)
	assert.Equal(t, notify.EventRecordSubmitted, env.events[0].Type)
	assert.Equal(t, "72.00", env.events[0].Record.PayoutAmount)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	builder := env.Company(t, "g1", "chantier", companydomain.TypeBuild, "owner", "0.1")
	employee := harness.Staff(env.company, "emp", "employee")

	_, err := env.svc.Submit(context.Background(), employee, domain.SubmitRequest{GuildID: "g1", CompanyID: env.company.ID, GrossAmount: decimal.Zero, Crop: "blé"})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = env.svc.Submit(context.Background(), harness.Staff(builder, "b", "employee"), domain.SubmitRequest{GuildID: "g1", CompanyID: builder.ID, GrossAmount: decimal.NewFromInt(10), Crop: "blé"})
	assert.ErrorIs(t, err, domain.ErrWrongCompanyType)

	outsider := authorization.Actor{ID: "x"}
	_, err = env.svc.Submit(context.Background(), outsider, domain.SubmitRequest{GuildID: "g1", CompanyID: env.company.ID, GrossAmount: decimal.NewFromInt(10), Crop: "blé"})
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	_, err = env.svc.Submit(context.Background(), employee, domain.SubmitRequest{GuildID: "other", CompanyID: env.company.ID, GrossAmount: decimal.NewFromInt(10), Crop: "blé"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.True(t, apperr.IsValidation(err))
}

func TestApproveOnce(t *testing.T) {
	env := newTestEnv(t)
	sale := env.submit(t, "100")
	manager := harness.Staff(env.company, "mgr", "manager")

	approved, err := env.svc.Approve(context.Background(), manager, "g1", sale.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, approved.Status)
	assert.False(t, approved.CountryTaxPaid)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, "mgr", *approved.DecidedBy)
	assert.Equal(t, []string{"g1"}, env.refresher.guilds)

	_, err = env.svc.Approve(context.Background(), manager, "g1", sale.ID)
	assert.ErrorIs(t, err, approval.ErrAlreadyProcessed)
	assert.True(t, apperr.IsState(err))

	_, err = env.svc.Reject(context.Background(), manager, "g1", sale.ID, "")
	assert.ErrorIs(t, err, approval.ErrAlreadyProcessed)

	logs, err := env.Audit.List(context.Background(), auditdomain.ListFilter{GuildID: "g1", Action: auditdomain.ActionSaleApprove})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestRejectIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	sale := env.submit(t, "50")
	ceo := harness.Staff(env.company, "ceo", "ceo")

	rejected, err := env.svc.Reject(context.Background(), ceo, "g1", sale.ID, "prix incohérent")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "prix incohérent", *rejected.RejectionReason)
	assert.Empty(t, env.refresher.guilds)

	stored, err := env.svc.Get(context.Background(), "g1", sale.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusRejected, stored.Status)
	assert.False(t, stored.CountryTaxPaid)

	_, err = env.svc.Approve(context.Background(), ceo, "g1", sale.ID)
	assert.ErrorIs(t, err, approval.ErrAlreadyProcessed)

	last := env.events[len(env.events)-1]
	assert.Equal(t, notify.EventRecordRejected, last.Type)
	assert.Equal(t, "prix incohérent", last.Record.RejectionReason)
}

func TestDecideRequiresRole(t *testing.T) {
	env := newTestEnv(t)
	sale := env.submit(t, "50")

	_, err := env.svc.Approve(context.Background(), harness.Staff(env.company, "emp", "employee"), "g1", sale.ID)
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	_, err = env.svc.Approve(context.Background(), harness.Staff(env.company, "mgr", "manager"), "g1", env.Node.Generate())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSales(t *testing.T) {
	env := newTestEnv(t)
	first := env.submit(t, "10")
	env.Clock.Advance(time.Second)
	second := env.submit(t, "20")

	_, err := env.svc.Approve(context.Background(), harness.Staff(env.company, "mgr", "manager"), "g1", first.ID)
	require.NoError(t, err)

	all, err := env.svc.List(context.Background(), domain.ListRequest{GuildID: "g1"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	pending, err := env.svc.List(context.Background(), domain.ListRequest{GuildID: "g1", CompanyID: env.company.ID, Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	_, err = env.svc.List(context.Background(), domain.ListRequest{GuildID: "g1", Status: "paid"})
	assert.ErrorIs(t, err, approval.ErrInvalidStatus)
}
