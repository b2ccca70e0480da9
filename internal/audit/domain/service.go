package domain

import (
	"context"

	"github.com/smallbiznis/civitas/internal/apperr"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]AuditLog, error)
}

type Service interface {
	AuditLog(ctx context.Context, guildID, actorID, action, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, filter ListFilter) ([]AuditLog, error)
}

var (
	ErrInvalidGuild  = apperr.Validation("invalid_guild")
	ErrInvalidAction = apperr.Validation("invalid_action")
)
