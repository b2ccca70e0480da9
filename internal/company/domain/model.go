package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/authorization"
)

// Type selects the tax engine applied to a company's revenue.
type Type string

const (
	TypeAgricole Type = "AGRICOLE"
	TypeBuild    Type = "BUILD"
)

func ParseType(raw string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(raw))); t {
	case TypeAgricole, TypeBuild:
		return t, nil
	}
	return "", ErrInvalidType
}

type Company struct {
	ID             snowflake.ID    `gorm:"column:id;primaryKey" json:"id"`
	GuildID        string          `gorm:"column:guild_id" json:"guild_id"`
	Name           string          `gorm:"column:name" json:"name"`
	Slug           string          `gorm:"column:slug" json:"slug"`
	Emoji          string          `gorm:"column:emoji" json:"emoji,omitempty"`
	Type           Type            `gorm:"column:type" json:"type"`
	OwnerID        string          `gorm:"column:owner_id" json:"owner_id"`
	CEORoleID      string          `gorm:"column:ceo_role_id" json:"ceo_role_id"`
	ManagerRoleID  string          `gorm:"column:manager_role_id" json:"manager_role_id"`
	EmployeeRoleID string          `gorm:"column:employee_role_id" json:"employee_role_id"`
	TaxRate        decimal.Decimal `gorm:"column:tax_rate" json:"tax_rate"`
	CreatedAt      time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Company) TableName() string { return "companies" }

func (c *Company) Roles() authorization.CompanyRoles {
	return authorization.CompanyRoles{
		OwnerID:        c.OwnerID,
		CEORoleID:      c.CEORoleID,
		ManagerRoleID:  c.ManagerRoleID,
		EmployeeRoleID: c.EmployeeRoleID,
	}
}
