package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/pkg/money"
	"gorm.io/datatypes"
)

const referencePrefix = "RMT"

// Remittance records one company's share of a settlement. It is written once
// and never updated.
type Remittance struct {
	ID          snowflake.ID                `gorm:"column:id;primaryKey" json:"id"`
	Reference   string                      `gorm:"column:reference" json:"reference"`
	GuildID     string                      `gorm:"column:guild_id" json:"guild_id"`
	CompanyID   snowflake.ID                `gorm:"column:company_id" json:"company_id"`
	TotalAmount decimal.Decimal             `gorm:"column:total_amount" json:"total_amount"`
	SaleIDs     datatypes.JSONSlice[string] `gorm:"column:sale_ids" json:"sale_ids"`
	ContractIDs datatypes.JSONSlice[string] `gorm:"column:contract_ids" json:"contract_ids"`
	PaidBy      string                      `gorm:"column:paid_by" json:"paid_by"`
	PaidByName  string                      `gorm:"column:paid_by_name" json:"paid_by_name"`
	PaidAt      time.Time                   `gorm:"column:paid_at" json:"paid_at"`
}

func (Remittance) TableName() string { return "tax_remittances" }

func (r Remittance) ItemCount() int {
	return len(r.SaleIDs) + len(r.ContractIDs)
}

type NewRemittanceParams struct {
	ID          snowflake.ID
	GuildID     string
	CompanyID   snowflake.ID
	TotalAmount decimal.Decimal
	SaleIDs     []snowflake.ID
	ContractIDs []snowflake.ID
	PaidBy      string
	PaidByName  string
	PaidAt      time.Time
}

func NewRemittance(p NewRemittanceParams) (*Remittance, error) {
	if p.ID == 0 || p.CompanyID == 0 {
		return nil, ErrInvalidID
	}
	if strings.TrimSpace(p.GuildID) == "" {
		return nil, ErrInvalidGuild
	}
	if strings.TrimSpace(p.PaidBy) == "" {
		return nil, ErrInvalidPayer
	}
	if len(p.SaleIDs)+len(p.ContractIDs) == 0 {
		return nil, ErrEmptyRemittance
	}
	if !p.TotalAmount.IsPositive() || !money.Round(p.TotalAmount).Equal(p.TotalAmount) {
		return nil, ErrInvalidAmount
	}

	paidAt := p.PaidAt.UTC()
	return &Remittance{
		ID:          p.ID,
		Reference:   NewReference(paidAt),
		GuildID:     strings.TrimSpace(p.GuildID),
		CompanyID:   p.CompanyID,
		TotalAmount: p.TotalAmount,
		SaleIDs:     idStrings(p.SaleIDs),
		ContractIDs: idStrings(p.ContractIDs),
		PaidBy:      strings.TrimSpace(p.PaidBy),
		PaidByName:  strings.TrimSpace(p.PaidByName),
		PaidAt:      paidAt,
	}, nil
}

// NewReference returns the human facing receipt number, sortable by time.
func NewReference(at time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy())
	return fmt.Sprintf("%s-%s", referencePrefix, id.String())
}

func idStrings(ids []snowflake.ID) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
