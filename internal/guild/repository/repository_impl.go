package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/apperr"
	"github.com/smallbiznis/civitas/internal/guild/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const guildColumns = `guild_id, country_name, chef_role_id, officer_role_id, taxes_channel_id,
	server_tax_rate, country_tax_rate, default_company_tax_rate,
	reminder_enabled, reminder_mode, reminder_every, last_reminded_at,
	created_at, updated_at`

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, guildID string) (*domain.GuildConfig, error) {
	var cfg domain.GuildConfig
	err := db.WithContext(ctx).Raw(
		`SELECT `+guildColumns+` FROM guild_configs WHERE guild_id = ?`,
		guildID,
	).Scan(&cfg).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if cfg.GuildID == "" {
		return nil, nil
	}
	return &cfg, nil
}

// Upsert keeps created_at and last_reminded_at of an existing row.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, cfg *domain.GuildConfig) error {
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"country_name",
			"chef_role_id",
			"officer_role_id",
			"taxes_channel_id",
			"server_tax_rate",
			"country_tax_rate",
			"default_company_tax_rate",
			"reminder_enabled",
			"reminder_mode",
			"reminder_every",
			"updated_at",
		}),
	}).Create(cfg).Error
	return apperr.Persistence(err)
}

func (r *repo) UpdateCountryTaxRate(ctx context.Context, db *gorm.DB, guildID string, rate decimal.Decimal, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE guild_configs SET country_tax_rate = ?, updated_at = ? WHERE guild_id = ?`,
		rate, at, guildID,
	)
	if res.Error != nil {
		return false, apperr.Persistence(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) ListReminderEnabled(ctx context.Context, db *gorm.DB) ([]domain.GuildConfig, error) {
	var configs []domain.GuildConfig
	err := db.WithContext(ctx).Raw(
		`SELECT ` + guildColumns + ` FROM guild_configs
		 WHERE reminder_enabled = ? AND taxes_channel_id <> ''
		 ORDER BY guild_id`,
		true,
	).Scan(&configs).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return configs, nil
}

func (r *repo) MarkReminded(ctx context.Context, db *gorm.DB, guildID string, at time.Time) error {
	return apperr.Persistence(db.WithContext(ctx).Exec(
		`UPDATE guild_configs SET last_reminded_at = ? WHERE guild_id = ?`,
		at, guildID,
	).Error)
}
