package service

import (
	"context"
	"testing"

	auditdomain "github.com/smallbiznis/civitas/internal/audit/domain"
	"github.com/smallbiznis/civitas/internal/audit/repository"
	"github.com/smallbiznis/civitas/internal/observability/obscontext"
	"github.com/smallbiznis/civitas/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) auditdomain.Service {
	return NewService(Params{
		DB:    testutil.OpenDB(t),
		Log:   zap.NewNop(),
		GenID: testutil.Node(t),
		Clock: testutil.Clock(),
		Repo:  repository.Provide(),
	})
}

func TestAuditLogRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := obscontext.WithRequestID(context.Background(), "req-42")

	target := " 1001 "
	err := svc.AuditLog(ctx, "guild-1", "user-1", auditdomain.ActionSaleApprove, "sale", &target, map[string]any{
		"gross_amount": "100.00",
		"":             "dropped",
	})
	require.NoError(t, err)

	logs, err := svc.List(ctx, auditdomain.ListFilter{GuildID: "guild-1"})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, auditdomain.ActionSaleApprove, entry.Action)
	assert.Equal(t, "1001", *entry.TargetID)
	assert.Equal(t, "100.00", entry.Metadata["gross_amount"])
	assert.Equal(t, "req-42", entry.Metadata["request_id"])
	_, hasEmpty := entry.Metadata[""]
	assert.False(t, hasEmpty)
	assert.Equal(t, testutil.Epoch, entry.CreatedAt.UTC())
}

func TestAuditLogValidation(t *testing.T) {
	svc := newTestService(t)

	assert.ErrorIs(t, svc.AuditLog(context.Background(), "", "u", "x", "y", nil, nil), auditdomain.ErrInvalidGuild)
	assert.ErrorIs(t, svc.AuditLog(context.Background(), "g", "u", " ", "y", nil, nil), auditdomain.ErrInvalidAction)

	_, err := svc.List(context.Background(), auditdomain.ListFilter{})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidGuild)
}

func TestListFiltersByAction(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.AuditLog(ctx, "g", "u", auditdomain.ActionSaleApprove, "sale", nil, nil))
	require.NoError(t, svc.AuditLog(ctx, "g", "u", auditdomain.ActionTaxSettle, "company", nil, nil))
	require.NoError(t, svc.AuditLog(ctx, "other", "u", auditdomain.ActionTaxSettle, "company", nil, nil))

	logs, err := svc.List(ctx, auditdomain.ListFilter{GuildID: "g", Action: auditdomain.ActionTaxSettle})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
