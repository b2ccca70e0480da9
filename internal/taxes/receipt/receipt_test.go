package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/internal/taxes/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	pdf, err := Render(Data{
		CountryName: "Edora",
		CompanyName: "Ferme du Nord",
		Remittance: domain.Remittance{
			ID:          snowflake.ID(42),
			Reference:   "RMT-01HZX",
			CompanyID:   snowflake.ID(7),
			TotalAmount: decimal.RequireFromString("10.50"),
			SaleIDs:     []string{"1", "2"},
			ContractIDs: []string{"3"},
			PaidBy:      "u-1",
			PaidAt:      time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestRenderEmpty(t *testing.T) {
	_, err := Render(Data{})
	assert.Error(t, err)
}
