package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/civitas/internal/apperr"
	"github.com/smallbiznis/civitas/internal/approval"
	"github.com/smallbiznis/civitas/internal/contract/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const contractColumns = `id, guild_id, company_id, submitted_by, submitted_by_name,
	client_kind, client_name, description, gross_amount, employee_count,
	country_tax_rate, company_tax_rate, country_tax, company_tax,
	employee_share, per_employee_amount,
	status, country_tax_paid, decided_by, decided_by_name, decided_at,
	rejection_reason, remittance_id, paid_at, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, contract *domain.Contract) error {
	return apperr.Persistence(db.WithContext(ctx).Exec(
		`INSERT INTO contracts (`+contractColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contract.ID,
		contract.GuildID,
		contract.CompanyID,
		contract.SubmittedBy,
		contract.SubmittedByName,
		contract.ClientKind,
		contract.ClientName,
		contract.Description,
		contract.GrossAmount,
		contract.EmployeeCount,
		contract.CountryTaxRate,
		contract.CompanyTaxRate,
		contract.CountryTax,
		contract.CompanyTax,
		contract.EmployeeShare,
		contract.PerEmployeeAmount,
		contract.Status,
		contract.CountryTaxPaid,
		contract.DecidedBy,
		contract.DecidedByName,
		contract.DecidedAt,
		contract.RejectionReason,
		contract.RemittanceID,
		contract.PaidAt,
		contract.CreatedAt,
		contract.UpdatedAt,
	).Error)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, guildID string, id snowflake.ID) (*domain.Contract, error) {
	var contract domain.Contract
	err := db.WithContext(ctx).Raw(
		`SELECT `+contractColumns+` FROM contracts WHERE guild_id = ? AND id = ?`,
		guildID,
		id,
	).Scan(&contract).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if contract.ID == 0 {
		return nil, nil
	}
	return &contract, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Contract, error) {
	var contracts []domain.Contract
	stmt := db.WithContext(ctx).Model(&domain.Contract{}).
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
	if err := stmt.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&contracts).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return contracts, nil
}

func (r *repo) Decide(ctx context.Context, db *gorm.DB, contract *domain.Contract) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE contracts
		 SET status = ?, decided_by = ?, decided_by_name = ?, decided_at = ?, rejection_reason = ?, updated_at = ?
		 WHERE guild_id = ? AND id = ? AND status = ?`,
		contract.Status,
		contract.DecidedBy,
		contract.DecidedByName,
		contract.DecidedAt,
		contract.RejectionReason,
		contract.UpdatedAt,
		contract.GuildID,
		contract.ID,
		approval.StatusPending,
	)
	if res.Error != nil {
		return false, apperr.Persistence(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) ListOutstanding(ctx context.Context, db *gorm.DB, guildID string, companyIDs []snowflake.ID) ([]domain.Contract, error) {
	if len(companyIDs) == 0 {
		return nil, nil
	}
	var contracts []domain.Contract
	err := db.WithContext(ctx).Raw(
		`SELECT `+contractColumns+` FROM contracts
		 WHERE guild_id = ? AND company_id IN ? AND status = ? AND country_tax_paid = ?
		 ORDER BY company_id, created_at, id`,
		guildID,
		companyIDs,
		approval.StatusApproved,
		false,
	).Scan(&contracts).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return contracts, nil
}

func (r *repo) MarkCountryTaxPaid(ctx context.Context, db *gorm.DB, ids []snowflake.ID, remittanceID snowflake.ID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Exec(
		`UPDATE contracts
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
