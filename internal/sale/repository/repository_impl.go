package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/civitas/internal/apperr"
	"github.com/smallbiznis/civitas/internal/approval"
	"github.com/smallbiznis/civitas/internal/sale/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const saleColumns = `id, guild_id, company_id, submitted_by, submitted_by_name, crop, note,
	gross_amount, server_tax_rate, company_tax_rate, country_tax_rate,
	server_tax, company_tax, country_tax, net_amount,
	status, country_tax_paid, decided_by, decided_by_name, decided_at,
	rejection_reason, remittance_id, paid_at, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return apperr.Persistence(db.WithContext(ctx).Exec(
		`INSERT INTO sales (`+saleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID,
		sale.GuildID,
		sale.CompanyID,
		sale.SubmittedBy,
		sale.SubmittedByName,
		sale.Crop,
		sale.Note,
		sale.GrossAmount,
		sale.ServerTaxRate,
		sale.CompanyTaxRate,
		sale.CountryTaxRate,
		sale.ServerTax,
		sale.CompanyTax,
		sale.CountryTax,
		sale.NetAmount,
		sale.Status,
		sale.CountryTaxPaid,
		sale.DecidedBy,
		sale.DecidedByName,
		sale.DecidedAt,
		sale.RejectionReason,
		sale.RemittanceID,
		sale.PaidAt,
		sale.CreatedAt,
		sale.UpdatedAt,
	).Error)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, guildID string, id snowflake.ID) (*domain.Sale, error) {
	var sale domain.Sale
	err := db.WithContext(ctx).Raw(
		`SELECT `+saleColumns+` FROM sales WHERE guild_id = ? AND id = ?`,
		guildID,
		id,
	).Scan(&sale).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if sale.ID == 0 {
		return nil, nil
	}
	return &sale, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Sale, error) {
	var sales []domain.Sale
	stmt := db.WithContext(ctx).Model(&domain.Sale{}).
		Where("guild_id = ?", filter.GuildID)
	if filter.CompanyID != 0 {
		stmt = stmt.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if err := stmt.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&sales).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return sales, nil
}

func (r *repo) Decide(ctx context.Context, db *gorm.DB, sale *domain.Sale) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE sales
		 SET status = ?, decided_by = ?, decided_by_name = ?, decided_at = ?, rejection_reason = ?, updated_at = ?
		 WHERE guild_id = ? AND id = ? AND status = ?`,
		sale.Status,
		sale.DecidedBy,
		sale.DecidedByName,
		sale.DecidedAt,
		sale.RejectionReason,
		sale.UpdatedAt,
		sale.GuildID,
		sale.ID,
		approval.StatusPending,
	)
	if res.Error != nil {
		return false, apperr.Persistence(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) ListOutstanding(ctx context.Context, db *gorm.DB, guildID string, companyIDs []snowflake.ID) ([]domain.Sale, error) {
	if len(companyIDs) == 0 {
		return nil, nil
	}
	var sales []domain.Sale
	err := db.WithContext(ctx).Raw(
		`SELECT `+saleColumns+` FROM sales
		 WHERE guild_id = ? AND company_id IN ? AND status = ? AND country_tax_paid = ?
		 ORDER BY company_id, created_at, id`,
		guildID,
		companyIDs,
		approval.StatusApproved,
		false,
	).Scan(&sales).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return sales, nil
}

func (r *repo) MarkCountryTaxPaid(ctx context.Context, db *gorm.DB, ids []snowflake.ID, remittanceID snowflake.ID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Exec(
		`UPDATE sales
		 SET country_tax_paid = ?, remittance_id = ?, paid_at = ?, updated_at = ?
		 WHERE id IN ? AND status = ? AND country_tax_paid = ?`,
		true,
		remittanceID,
		at,
		at,
		ids,
		approval.StatusApproved,
		false,
	)
	if res.Error != nil {
		return 0, apperr.Persistence(res.Error)
	}
	return res.RowsAffected, nil
}
