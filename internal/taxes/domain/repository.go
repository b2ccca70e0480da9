package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	GuildID   string
	CompanyID snowflake.ID
	Limit     int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, remittance *Remittance) error
	FindByID(ctx context.Context, db *gorm.DB, guildID string, id snowflake.ID) (*Remittance, error)
	// List returns remittances newest first.
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Remittance, error)
}
