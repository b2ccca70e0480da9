package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/civitas/internal/approval"
	"gorm.io/gorm"
)

type ListFilter struct {
	GuildID   string
	CompanyID snowflake.ID
	Status    approval.Status
	Limit     int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, contract *Contract) error
	FindByID(ctx context.Context, db *gorm.DB, guildID string, id snowflake.ID) (*Contract, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Contract, error)
	// Decide persists a decision taken on a pending contract. It reports false
	// when the contract was no longer pending.
	Decide(ctx context.Context, db *gorm.DB, contract *Contract) (bool, error)
	// ListOutstanding returns approved, unpaid contracts of the companies ordered
	// by company, creation time and id.
	ListOutstanding(ctx context.Context, db *gorm.DB, guildID string, companyIDs []snowflake.ID) ([]Contract, error)
	// MarkCountryTaxPaid flags the contracts paid if they are still approved and
	// unpaid, returning how many rows changed.
	MarkCountryTaxPaid(ctx context.Context, db *gorm.DB, ids []snowflake.ID, remittanceID snowflake.ID, at time.Time) (int64, error)
}
