package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, company *Company) error
	FindByID(ctx context.Context, db *gorm.DB, guildID string, id snowflake.ID) (*Company, error)
	ListByGuild(ctx context.Context, db *gorm.DB, guildID string) ([]Company, error)
	ListByOwner(ctx context.Context, db *gorm.DB, guildID, ownerID string) ([]Company, error)
}
