package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, guildID string) (*GuildConfig, error)
	Upsert(ctx context.Context, db *gorm.DB, cfg *GuildConfig) error
	UpdateCountryTaxRate(ctx context.Context, db *gorm.DB, guildID string, rate decimal.Decimal, at time.Time) (bool, error)
	ListReminderEnabled(ctx context.Context, db *gorm.DB) ([]GuildConfig, error)
	MarkReminded(ctx context.Context, db *gorm.DB, guildID string, at time.Time) error
}
