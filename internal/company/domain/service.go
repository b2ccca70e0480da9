package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/authorization"
)

type CreateRequest struct {
	GuildID        string
	Name           string
	Emoji          string
	Type           string
	OwnerID        string
	CEORoleID      string
	ManagerRoleID  string
	EmployeeRoleID string
	// nil uses the guild default company rate
	TaxRate *decimal.Decimal
}

type Service interface {
	Create(ctx context.Context, actor authorization.Actor, req CreateRequest) (*Company, error)
	Get(ctx context.Context, guildID string, id snowflake.ID) (*Company, error)
	ListByGuild(ctx context.Context, guildID string) ([]Company, error)
	ListByOwner(ctx context.Context, guildID, ownerID string) ([]Company, error)
}
