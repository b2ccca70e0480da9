package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/apperr"
	"github.com/smallbiznis/civitas/internal/authorization"
	"github.com/smallbiznis/civitas/internal/company/domain"
	"github.com/smallbiznis/civitas/internal/company/repository"
	guildrepo "github.com/smallbiznis/civitas/internal/guild/repository"
	guildservice "github.com/smallbiznis/civitas/internal/guild/service"
	"github.com/smallbiznis/civitas/internal/testutil"
	"github.com/smallbiznis/civitas/internal/testutil/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var chef = authorization.Actor{ID: "chef", RoleIDs: []string{"r-chef"}}

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	db := testutil.OpenDB(t)
	clk := testutil.Clock()
	node := testutil.Node(t)
	audit := fixture.Audit(db, node, clk)
	authz := fixture.Authz(t, audit)

	fixture.SeedGuild(t, db, "g1", "0", "0.05")

	guildSvc := guildservice.New(guildservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    clk,
		Repo:     guildrepo.Provide(),
		Policy:   fixture.Policy(),
		Authz:    authz,
		AuditSvc: audit,
	})

	return New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     repository.Provide(),
		GuildSvc: guildSvc,
		Policy:   fixture.Policy(),
		Authz:    authz,
		AuditSvc: audit,
	})
}

func TestCreateCompany(t *testing.T) {
	svc := newTestService(t)

	company, err := svc.Create(context.Background(), chef, domain.CreateRequest{
		GuildID: "g1",
		Name:    "Ferme Dorée",
		Type:    "agricole",
		OwnerID: "owner-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ferme-doree", company.Slug)
	assert.Equal(t, domain.TypeAgricole, company.Type)
	assert.True(t, company.TaxRate.Equal(decimal.RequireFromString("0.15")), "guild default applies")

	got, err := svc.Get(context.Background(), "g1", company.ID)
	require.NoError(t, err)
	assert.Equal(t, company.Name, got.Name)
	assert.True(t, got.TaxRate.Equal(company.TaxRate))

	_, err = svc.Get(context.Background(), "other", company.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateCompanyDuplicateSlug(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), chef, domain.CreateRequest{GuildID: "g1", Name: "Bâtisseurs", Type: "BUILD", OwnerID: "o"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), chef, domain.CreateRequest{GuildID: "g1", Name: "batisseurs", Type: "BUILD", OwnerID: "o"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	assert.True(t, apperr.IsState(err))
}

func TestCreateCompanyValidation(t *testing.T) {
	svc := newTestService(t)
	tooHigh := decimal.RequireFromString("1.5")

	tests := []struct {
		name  string
		actor authorization.Actor
		req   domain.CreateRequest
		want  error
	}{
		{"unknown guild", chef, domain.CreateRequest{GuildID: "nope", Name: "A", Type: "BUILD", OwnerID: "o"}, nil},
		{"forbidden", authorization.Actor{ID: "u"}, domain.CreateRequest{GuildID: "g1", Name: "A", Type: "BUILD", OwnerID: "o"}, authorization.ErrForbidden},
		{"empty name", chef, domain.CreateRequest{GuildID: "g1", Name: "  ", Type: "BUILD", OwnerID: "o"}, domain.ErrInvalidName},
		{"bad type", chef, domain.CreateRequest{GuildID: "g1", Name: "A", Type: "MINING", OwnerID: "o"}, domain.ErrInvalidType},
		{"no owner", chef, domain.CreateRequest{GuildID: "g1", Name: "A", Type: "BUILD"}, domain.ErrInvalidOwner},
		{"rate", chef, domain.CreateRequest{GuildID: "g1", Name: "A", Type: "BUILD", OwnerID: "o", TaxRate: &tooHigh}, domain.ErrInvalidTaxRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.actor, tt.req)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			} else {
				assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
			}
		})
	}
}

func TestListCompanies(t *testing.T) {
	svc := newTestService(t)

	for _, req := range []domain.CreateRequest{
		{GuildID: "g1", Name: "Alpha", Type: "AGRICOLE", OwnerID: "o1"},
		{GuildID: "g1", Name: "Beta", Type: "BUILD", OwnerID: "o2"},
		{GuildID: "g1", Name: "Gamma", Type: "BUILD", OwnerID: "o1"},
	} {
		_, err := svc.Create(context.Background(), chef, req)
		require.NoError(t, err)
	}

	all, err := svc.ListByGuild(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Less(t, int64(all[0].ID), int64(all[1].ID))

	owned, err := svc.ListByOwner(context.Background(), "g1", "o1")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "Alpha", owned[0].Name)
	assert.Equal(t, "Gamma", owned[1].Name)

	_, err = svc.ListByOwner(context.Background(), "g1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)
}
