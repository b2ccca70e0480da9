package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	ActionSaleApprove         = "sale.approve"
	ActionSaleReject          = "sale.reject"
	ActionContractApprove     = "contract.approve"
	ActionContractReject      = "contract.reject"
	ActionTaxSettle           = "tax.settle"
	ActionCountryRateUpdate   = "guild.country_tax_rate.update"
	ActionGuildSetup          = "guild.setup"
	ActionCompanyCreate       = "company.create"
	ActionAuthorizationDenied = "authorization.denied"
)

type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	GuildID    string            `gorm:"column:guild_id" json:"guild_id"`
	ActorID    string            `gorm:"column:actor_id" json:"actor_id"`
	Action     string            `gorm:"column:action" json:"action"`
	TargetType string            `gorm:"column:target_type" json:"target_type"`
	TargetID   *string           `gorm:"column:target_id" json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata" json:"metadata"`
	CreatedAt  time.Time         `gorm:"column:created_at" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type ListFilter struct {
	GuildID    string
	Action     string
	TargetType string
	TargetID   string
	Limit      int
}
