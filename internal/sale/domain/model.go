package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/approval"
	"github.com/smallbiznis/civitas/pkg/money"
)

// Sale is a revenue event of an agricultural company. The split is computed
// once at submission and never recomputed.
type Sale struct {
	ID              snowflake.ID    `gorm:"column:id;primaryKey" json:"id"`
	GuildID         string          `gorm:"column:guild_id" json:"guild_id"`
	CompanyID       snowflake.ID    `gorm:"column:company_id" json:"company_id"`
	SubmittedBy     string          `gorm:"column:submitted_by" json:"submitted_by"`
	SubmittedByName string          `gorm:"column:submitted_by_name" json:"submitted_by_name"`
	Crop            string          `gorm:"column:crop" json:"crop"`
	Note            string          `gorm:"column:note" json:"note,omitempty"`
	GrossAmount     decimal.Decimal `gorm:"column:gross_amount" json:"gross_amount"`
	ServerTaxRate   decimal.Decimal `gorm:"column:server_tax_rate" json:"server_tax_rate"`
	CompanyTaxRate  decimal.Decimal `gorm:"column:company_tax_rate" json:"company_tax_rate"`
	CountryTaxRate  decimal.Decimal `gorm:"column:country_tax_rate" json:"country_tax_rate"`
	ServerTax       decimal.Decimal `gorm:"column:server_tax" json:"server_tax"`
	CompanyTax      decimal.Decimal `gorm:"column:company_tax" json:"company_tax"`
	CountryTax      decimal.Decimal `gorm:"column:country_tax" json:"country_tax"`
	NetAmount       decimal.Decimal `gorm:"column:net_amount" json:"net_amount"`

	approval.Lifecycle

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Sale) TableName() string { return "sales" }

type NewSaleParams struct {
	ID              snowflake.ID
	GuildID         string
	CompanyID       snowflake.ID
	SubmittedBy     string
	SubmittedByName string
	Crop            string
	Note            string
	GrossAmount     decimal.Decimal
	ServerTaxRate   decimal.Decimal
	CompanyTaxRate  decimal.Decimal
	CountryTaxRate  decimal.Decimal
	CreatedAt       time.Time
}

// NewSale validates the submission and computes its split. The gross amount
// is rounded to the cent first.
func NewSale(p NewSaleParams) (*Sale, error) {
	if p.ID == 0 || p.CompanyID == 0 {
		return nil, ErrInvalidID
	}
	if strings.TrimSpace(p.GuildID) == "" {
		return nil, ErrInvalidGuild
	}
	if strings.TrimSpace(p.SubmittedBy) == "" {
		return nil, ErrInvalidSubmitter
	}
	gross := money.Round(p.GrossAmount)
	if !gross.IsPositive() {
		return nil, ErrInvalidAmount
	}
	for _, rate := range []decimal.Decimal{p.ServerTaxRate, p.CompanyTaxRate, p.CountryTaxRate} {
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, ErrInvalidRate
		}
	}
	crop, ok := LookupCrop(p.Crop)
	if !ok {
		return nil, ErrUnknownCrop
	}

	taxes := ComputeSaleTaxes(gross, p.ServerTaxRate, p.CompanyTaxRate, p.CountryTaxRate)
	if !money.WithinCent(taxes.Total(), gross) {
		return nil, ErrSplitMismatch
	}

	created := p.CreatedAt.UTC()
	return &Sale{
		ID:              p.ID,
		GuildID:         strings.TrimSpace(p.GuildID),
		CompanyID:       p.CompanyID,
		SubmittedBy:     strings.TrimSpace(p.SubmittedBy),
		SubmittedByName: strings.TrimSpace(p.SubmittedByName),
		Crop:            crop.Name,
		Note:            strings.TrimSpace(p.Note),
		GrossAmount:     gross,
		ServerTaxRate:   p.ServerTaxRate,
		CompanyTaxRate:  p.CompanyTaxRate,
		CountryTaxRate:  p.CountryTaxRate,
		ServerTax:       taxes.ServerTax,
		CompanyTax:      taxes.CompanyTax,
		CountryTax:      taxes.CountryTax,
		NetAmount:       taxes.NetAmount,
		Lifecycle:       approval.NewLifecycle(),
		CreatedAt:       created,
		UpdatedAt:       created,
	}, nil
}
