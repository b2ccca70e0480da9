package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/authorization"
)

type SubmitRequest struct {
	GuildID       string
	CompanyID     snowflake.ID
	GrossAmount   decimal.Decimal
	EmployeeCount int
	Client        Client
	Description   string
}

type ListRequest struct {
	GuildID   string
	CompanyID snowflake.ID
	Status    string
	Limit     int
}

type Service interface {
	Submit(ctx context.Context, actor authorization.Actor, req SubmitRequest) (*Contract, error)
	Approve(ctx context.Context, actor authorization.Actor, guildID string, id snowflake.ID) (*Contract, error)
	Reject(ctx context.Context, actor authorization.Actor, guildID string, id snowflake.ID, reason string) (*Contract, error)
	Get(ctx context.Context, guildID string, id snowflake.ID) (*Contract, error)
	List(ctx context.Context, req ListRequest) ([]Contract, error)
}
