package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/approval"
	"github.com/smallbiznis/civitas/pkg/money"
)

// Contract is a revenue event of a construction company, shared between the
// employees who worked on it.
type Contract struct {
	ID                snowflake.ID    `gorm:"column:id;primaryKey" json:"id"`
	GuildID           string          `gorm:"column:guild_id" json:"guild_id"`
	CompanyID         snowflake.ID    `gorm:"column:company_id" json:"company_id"`
	SubmittedBy       string          `gorm:"column:submitted_by" json:"submitted_by"`
	SubmittedByName   string          `gorm:"column:submitted_by_name" json:"submitted_by_name"`
	ClientKind        ClientKind      `gorm:"column:client_kind" json:"client_kind"`
	ClientName        string          `gorm:"column:client_name" json:"client_name"`
	Description       string          `gorm:"column:description" json:"description,omitempty"`
	GrossAmount       decimal.Decimal `gorm:"column:gross_amount" json:"gross_amount"`
	EmployeeCount     int             `gorm:"column:employee_count" json:"employee_count"`
	CountryTaxRate    decimal.Decimal `gorm:"column:country_tax_rate" json:"country_tax_rate"`
	CompanyTaxRate    decimal.Decimal `gorm:"column:company_tax_rate" json:"company_tax_rate"`
	CountryTax        decimal.Decimal `gorm:"column:country_tax" json:"country_tax"`
	CompanyTax        decimal.Decimal `gorm:"column:company_tax" json:"company_tax"`
	EmployeeShare     decimal.Decimal `gorm:"column:employee_share" json:"employee_share"`
	PerEmployeeAmount decimal.Decimal `gorm:"column:per_employee_amount" json:"per_employee_amount"`

	approval.Lifecycle

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Contract) TableName() string { return "contracts" }

func (c *Contract) Client() (Client, error) {
	return ParseClient(string(c.ClientKind), c.ClientName)
}

type NewContractParams struct {
	ID              snowflake.ID
	GuildID         string
	CompanyID       snowflake.ID
	SubmittedBy     string
	SubmittedByName string
	Client          Client
	Description     string
	GrossAmount     decimal.Decimal
	EmployeeCount   int
	CountryTaxRate  decimal.Decimal
	CompanyTaxRate  decimal.Decimal
	CreatedAt       time.Time
}

func NewContract(p NewContractParams) (*Contract, error) {
	if p.ID == 0 || p.CompanyID == 0 {
		return nil, ErrInvalidID
	}
	if strings.TrimSpace(p.GuildID) == "" {
		return nil, ErrInvalidGuild
	}
	if strings.TrimSpace(p.SubmittedBy) == "" {
		return nil, ErrInvalidSubmitter
	}
	if p.Client == nil || strings.TrimSpace(p.Client.Name()) == "" {
		return nil, ErrInvalidClient
	}
	gross := money.Round(p.GrossAmount)
	if !gross.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if p.EmployeeCount < 1 {
		return nil, ErrInvalidEmployeeCount
	}
	for _, rate := range []decimal.Decimal{p.CountryTaxRate, p.CompanyTaxRate} {
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, ErrInvalidRate
		}
	}

	taxes := ComputeContractTaxes(gross, p.EmployeeCount, p.CountryTaxRate, p.CompanyTaxRate)
	if !money.Sum(taxes.CountryTax, taxes.CompanyTax, taxes.EmployeeShare).Equal(gross) {
		return nil, ErrSplitMismatch
	}

	created := p.CreatedAt.UTC()
	return &Contract{
		ID:                p.ID,
		GuildID:           strings.TrimSpace(p.GuildID),
		CompanyID:         p.CompanyID,
		SubmittedBy:       strings.TrimSpace(p.SubmittedBy),
		SubmittedByName:   strings.TrimSpace(p.SubmittedByName),
		ClientKind:        p.Client.Kind(),
		ClientName:        strings.TrimSpace(p.Client.Name()),
		Description:       strings.TrimSpace(p.Description),
		GrossAmount:       gross,
		EmployeeCount:     p.EmployeeCount,
		CountryTaxRate:    p.CountryTaxRate,
		CompanyTaxRate:    p.CompanyTaxRate,
		CountryTax:        taxes.CountryTax,
		CompanyTax:        taxes.CompanyTax,
		EmployeeShare:     taxes.EmployeeShare,
		PerEmployeeAmount: taxes.PerEmployeeAmount,
		Lifecycle:         approval.NewLifecycle(),
		CreatedAt:         created,
		UpdatedAt:         created,
	}, nil
}
