package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/civitas/internal/apperr"
	"github.com/smallbiznis/civitas/internal/taxes/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const remittanceColumns = `id, reference, guild_id, company_id, total_amount,
	sale_ids, contract_ids, paid_by, paid_by_name, paid_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, remittance *domain.Remittance) error {
	return apperr.Persistence(db.WithContext(ctx).Exec(
		`INSERT INTO tax_remittances (`+remittanceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		remittance.ID,
		remittance.Reference,
		remittance.GuildID,
		remittance.CompanyID,
		remittance.TotalAmount,
		remittance.SaleIDs,
		remittance.ContractIDs,
		remittance.PaidBy,
		remittance.PaidByName,
		remittance.PaidAt,
	).Error)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, guildID string, id snowflake.ID) (*domain.Remittance, error) {
	var remittance domain.Remittance
	err := db.WithContext(ctx).Raw(
		`SELECT `+remittanceColumns+` FROM tax_remittances WHERE guild_id = ? AND id = ?`,
		guildID,
		id,
	).Scan(&remittance).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if remittance.ID == 0 {
		return nil, nil
	}
	return &remittance, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Remittance, error) {
	var remittances []domain.Remittance
	stmt := db.WithContext(ctx).Model(&domain.Remittance{}).
		Where("guild_id = ?", filter.GuildID)
	if filter.CompanyID != 0 {
		stmt = stmt.Where("company_id = ?", filter.CompanyID)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if err := stmt.Order("paid_at DESC").Order("id DESC").Limit(limit).Find(&remittances).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return remittances, nil
}
