package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/authorization"
)

type SetupRequest struct {
	GuildID        string
	CountryName    string
	ChefRoleID     string
	OfficerRoleID  string
	TaxesChannelID string

	// nil rates fall back to the tax policy defaults
	ServerTaxRate         *decimal.Decimal
	CountryTaxRate        *decimal.Decimal
	DefaultCompanyTaxRate *decimal.Decimal

	Reminder *ReminderSettings
}

type ReminderSettings struct {
	Enabled bool
	Mode    string
	Every   int
}

type Service interface {
	Setup(ctx context.Context, actor authorization.Actor, req SetupRequest) (*GuildConfig, error)
	Get(ctx context.Context, guildID string) (*GuildConfig, error)
	SetCountryTaxRate(ctx context.Context, actor authorization.Actor, guildID string, rate decimal.Decimal) (*GuildConfig, error)
	ListReminderEnabled(ctx context.Context) ([]GuildConfig, error)
	MarkReminded(ctx context.Context, guildID string, at time.Time) error
}
