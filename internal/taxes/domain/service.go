package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/authorization"
)

type SettleRequest struct {
	GuildID    string
	Actor      authorization.Actor
	AmountPaid decimal.Decimal
}

type SettleResult struct {
	Remittances    []Remittance    `json:"remittances"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	// Unallocated is the part of the payment no item could absorb.
	Unallocated decimal.Decimal `json:"unallocated"`
}

type ListRequest struct {
	GuildID   string
	CompanyID snowflake.ID
	Limit     int
}

type Service interface {
	// ComputeOutstanding is the unauthenticated projection used by jobs and
	// event publishers.
	ComputeOutstanding(ctx context.Context, guildID string) (*Outstanding, error)
	// Outstanding is ComputeOutstanding gated on the actor's guild roles.
	Outstanding(ctx context.Context, actor authorization.Actor, guildID string) (*Outstanding, error)
	Settle(ctx context.Context, req SettleRequest) (*SettleResult, error)
	ListRemittances(ctx context.Context, req ListRequest) ([]Remittance, error)
	GetRemittance(ctx context.Context, guildID string, id snowflake.ID) (*Remittance, error)
	RefreshOutstanding(ctx context.Context, guildID string)
	// RunReminders notifies every guild whose reminder interval elapsed and
	// that still owes country tax. It returns how many guilds were notified.
	RunReminders(ctx context.Context, now time.Time) (int, error)
}
