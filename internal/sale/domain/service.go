package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/authorization"
)

type SubmitRequest struct {
	GuildID     string
	CompanyID   snowflake.ID
	GrossAmount decimal.Decimal
	Crop        string
	Note        string
}

type ListRequest struct {
	GuildID   string
	CompanyID snowflake.ID
	Status    string
	Limit     int
}

type Service interface {
	Submit(ctx context.Context, actor authorization.Actor, req SubmitRequest) (*Sale, error)
	Approve(ctx context.Context, actor authorization.Actor, guildID string, id snowflake.ID) (*Sale, error)
	Reject(ctx context.Context, actor authorization.Actor, guildID string, id snowflake.ID, reason string) (*Sale, error)
	Get(ctx context.Context, guildID string, id snowflake.ID) (*Sale, error)
	List(ctx context.Context, req ListRequest) ([]Sale, error)
}
