package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/civitas/internal/apperr"
	"github.com/smallbiznis/civitas/internal/company/domain"
	"github.com/smallbiznis/civitas/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const companyColumns = `id, guild_id, name, slug, emoji, type, owner_id,
	ceo_role_id, manager_role_id, employee_role_id, tax_rate, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, company *domain.Company) error {
	err := conn.WithContext(ctx).Exec(
		`INSERT INTO companies (`+companyColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		company.ID,
		company.GuildID,
		company.Name,
		company.Slug,
		company.Emoji,
		company.Type,
		company.OwnerID,
		company.CEORoleID,
		company.ManagerRoleID,
		company.EmployeeRoleID,
		company.TaxRate,
		company.CreatedAt,
		company.UpdatedAt,
	).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateName
	}
	return apperr.Persistence(err)
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, guildID string, id snowflake.ID) (*domain.Company, error) {
	var company domain.Company
	err := conn.WithContext(ctx).Raw(
		`SELECT `+companyColumns+` FROM companies WHERE guild_id = ? AND id = ?`,
		guildID,
		id,
	).Scan(&company).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repo) ListByGuild(ctx context.Context, conn *gorm.DB, guildID string) ([]domain.Company, error) {
	var companies []domain.Company
	err := conn.WithContext(ctx).Raw(
		`SELECT `+companyColumns+` FROM companies WHERE guild_id = ? ORDER BY id`,
		guildID,
	).Scan(&companies).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return companies, nil
}

func (r *repo) ListByOwner(ctx context.Context, conn *gorm.DB, guildID, ownerID string) ([]domain.Company, error) {
	var companies []domain.Company
	err := conn.WithContext(ctx).Raw(
		`SELECT `+companyColumns+` FROM companies WHERE guild_id = ? AND owner_id = ? ORDER BY id`,
		guildID,
		ownerID,
	).Scan(&companies).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return companies, nil
}
