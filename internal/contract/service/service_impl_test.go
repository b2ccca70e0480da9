package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/approval"
	companydomain "github.com/smallbiznis/civitas/internal/company/domain"
	"github.com/smallbiznis/civitas/internal/contract/domain"
	"github.com/smallbiznis/civitas/internal/contract/repository"
	"github.com/smallbiznis/civitas/internal/notify"
	notifymock "github.com/smallbiznis/civitas/internal/notify/mock"
	"github.com/smallbiznis/civitas/internal/testutil/harness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, notifier notify.Notifier) (*harness.Env, domain.Service, *companydomain.Company) {
	t.Helper()
	env := harness.New(t)
	env.Guild(t, "g1", "0", "0.10")
	company := env.Company(t, "g1", "chantier", companydomain.TypeBuild, "owner", "0.10")

	svc := New(Params{
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
	})
	return env, svc, company
}

func TestSubmitAndApproveContract(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := notifymock.NewMockNotifier(ctrl)

	var events []notify.Event
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		Do(func(ctx context.Context, event notify.Event) { events = append(events, event) }).
		Return(nil).
		Times(2)

	_, svc, company := newTestService(t, notifier)

	contract, err := svc.Submit(context.Background(), harness.Staff(company, "emp", "employee"), domain.SubmitRequest{
		GuildID:       "g1",
		CompanyID:     company.ID,
		GrossAmount:   decimal.NewFromInt(1000),
		EmployeeCount: 4,
		Client:        domain.PlayerClient{Handle: "@marius"},
		Description:   "entrepôt",
	})
	require.NoError(t, err)
	assert.True(t, contract.CountryTax.Equal(decimal.NewFromInt(100)))
	assert.True(t, contract.CompanyTax.Equal(decimal.NewFromInt(90)))
	assert.True(t, contract.EmployeeShare.Equal(decimal.NewFromInt(810)))
	assert.True(t, contract.PerEmployeeAmount.Equal(decimal.RequireFromString("202.5")))

	approved, err := svc.Approve(context.Background(), harness.Staff(company, "mgr", "manager"), "g1", contract.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, approved.Status)

	stored, err := svc.Get(context.Background(), "g1", contract.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, stored.Status)
	assert.Equal(t, domain.ClientPlayer, stored.ClientKind)
	assert.Equal(t, 4, stored.EmployeeCount)
	assert.True(t, stored.EmployeeShare.Equal(decimal.NewFromInt(810)))

	_, err = svc.Reject(context.Background(), harness.Staff(company, "mgr", "manager"), "g1", contract.ID, "trop tard")
	assert.ErrorIs(t, err, approval.ErrAlreadyProcessed)

	require.Len(t, events, 2)
	assert.Equal(t, notify.EventRecordApproved, events[1].Type)
	assert.Equal(t, "202.50", events[1].Record.PayoutAmount)

	listed, err := svc.List(context.Background(), domain.ListRequest{GuildID: "g1", Status: "APPROVED"})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestSubmitContractValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := notifymock.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(0)

	env, svc, company := newTestService(t, notifier)
	farm := env.Company(t, "g1", "ferme", companydomain.TypeAgricole, "owner", "0.1")
	employee := harness.Staff(company, "emp", "employee")

	_, err := svc.Submit(context.Background(), employee, domain.SubmitRequest{
		GuildID: "g1", CompanyID: company.ID, GrossAmount: decimal.NewFromInt(10), EmployeeCount: 0,
		Client: domain.CountryClient{Country: "Valoria"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmployeeCount)

	_, err = svc.Submit(context.Background(), employee, domain.SubmitRequest{
		GuildID: "g1", CompanyID: company.ID, GrossAmount: decimal.NewFromInt(10), EmployeeCount: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidClient)

	_, err = svc.Submit(context.Background(), harness.Staff(farm, "f", "employee"), domain.SubmitRequest{
		GuildID: "g1", CompanyID: farm.ID, GrossAmount: decimal.NewFromInt(10), EmployeeCount: 1,
		Client: domain.CountryClient{Country: "Valoria"},
	})
	assert.ErrorIs(t, err, domain.ErrWrongCompanyType)
}
