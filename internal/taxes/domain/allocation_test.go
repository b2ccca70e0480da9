package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func item(id int64, kind ItemKind, tax string) Item {
	return Item{ID: snowflake.ID(id), Kind: kind, CountryTax: d(tax)}
}

func TestAllocate(t *testing.T) {
	twoSales := []Pool{{CompanyID: 1, Items: []Item{item(10, ItemSale, "4.50"), item(11, ItemSale, "6.00")}}}

	tests := []struct {
		name      string
		pools     []Pool
		budget    string
		allocated string
		companies int
		saleIDs   []snowflake.ID
	}{
		{name: "covers both items", pools: twoSales, budget: "10.50", allocated: "10.50", companies: 1, saleIDs: []snowflake.ID{10, 11}},
		{name: "stops before the item it cannot cover", pools: twoSales, budget: "10.00", allocated: "4.50", companies: 1, saleIDs: []snowflake.ID{10}},
		{name: "too little for the first item", pools: twoSales, budget: "3.00", allocated: "0", companies: 0},
		{name: "overpayment keeps the rest", pools: twoSales, budget: "50", allocated: "10.50", companies: 1, saleIDs: []snowflake.ID{10, 11}},
		{name: "no pools", pools: nil, budget: "5", allocated: "0", companies: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Allocate(tt.pools, d(tt.budget))
			assert.True(t, got.TotalAllocated.Equal(d(tt.allocated)), "allocated %s", got.TotalAllocated)
			assert.True(t, got.TotalAllocated.LessThanOrEqual(d(tt.budget)))
			require.Len(t, got.Companies, tt.companies)
			sum := decimal.Zero
			for _, c := range got.Companies {
				sum = sum.Add(c.Total)
			}
			assert.True(t, sum.Equal(got.TotalAllocated))
			if tt.companies > 0 {
				assert.Equal(t, tt.saleIDs, got.Companies[0].SaleIDs)
			}
		})
	}
}

func TestAllocateStopsAcrossCompanies(t *testing.T) {
	pools := []Pool{
		{CompanyID: 1, Items: []Item{item(10, ItemSale, "5"), item(11, ItemSale, "8")}},
		{CompanyID: 2, Items: []Item{item(20, ItemContract, "1")}},
	}

	got := Allocate(pools, d("9"))

	require.Len(t, got.Companies, 1)
	assert.Equal(t, snowflake.ID(1), got.Companies[0].CompanyID)
	assert.Equal(t, []snowflake.ID{10}, got.Companies[0].SaleIDs)
	assert.True(t, got.TotalAllocated.Equal(d("5")))
}

func TestAllocateSplitsKinds(t *testing.T) {
	pools := []Pool{
		{CompanyID: 1, Items: []Item{item(10, ItemSale, "2")}},
		{CompanyID: 2, Items: []Item{item(20, ItemContract, "3"), item(21, ItemContract, "4")}},
	}

	got := Allocate(pools, d("9"))

	require.Len(t, got.Companies, 2)
	assert.Equal(t, []snowflake.ID{10}, got.Companies[0].SaleIDs)
	assert.Empty(t, got.Companies[0].ContractIDs)
	assert.Equal(t, []snowflake.ID{20, 21}, got.Companies[1].ContractIDs)
	assert.True(t, got.Companies[1].Total.Equal(d("7")))
	assert.True(t, got.TotalAllocated.Equal(d("9")))
}

func TestSummarize(t *testing.T) {
	pools := []Pool{
		{CompanyID: 1, CompanyName: "ferme", Items: []Item{item(10, ItemSale, "4.50"), item(11, ItemSale, "6.00")}},
		{CompanyID: 2, CompanyName: "vide"},
		{CompanyID: 3, CompanyName: "chantier", Items: []Item{item(30, ItemContract, "5")}},
	}

	out := Summarize("g1", pools)

	require.Len(t, out.Companies, 2)
	assert.Equal(t, "ferme", out.Companies[0].CompanyName)
	assert.Equal(t, 2, out.Companies[0].ItemCount)
	assert.Equal(t, []snowflake.ID{10, 11}, out.Companies[0].ItemIDs)
	assert.True(t, out.Companies[0].TotalDue.Equal(d("10.5")))
	assert.Equal(t, snowflake.ID(3), out.Companies[1].CompanyID)
	assert.True(t, out.GrandTotal.Equal(d("15.5")))

	empty := Summarize("g1", nil)
	assert.Empty(t, empty.Companies)
	assert.True(t, empty.GrandTotal.IsZero())
}

func TestNewRemittance(t *testing.T) {
	at := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	params := NewRemittanceParams{
		ID:          1,
		GuildID:     "g1",
		CompanyID:   2,
		TotalAmount: d("10.50"),
		SaleIDs:     []snowflake.ID{10, 11},
		PaidBy:      "owner",
		PaidAt:      at,
	}

	r, err := NewRemittance(params)
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "11"}, []string(r.SaleIDs))
	assert.Empty(t, r.ContractIDs)
	assert.Equal(t, 2, r.ItemCount())
	assert.Equal(t, time.UTC, r.PaidAt.Location())
	assert.Regexp(t, `^RMT-[0-9A-Z]{26}$`, r.Reference)

	bad := params
	bad.TotalAmount = d("1.005")
	_, err = NewRemittance(bad)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	bad = params
	bad.SaleIDs = nil
	_, err = NewRemittance(bad)
	assert.ErrorIs(t, err, ErrEmptyRemittance)

	bad = params
	bad.PaidBy = " "
	_, err = NewRemittance(bad)
	assert.ErrorIs(t, err, ErrInvalidPayer)

	bad = params
	bad.CompanyID = 0
	_, err = NewRemittance(bad)
	assert.ErrorIs(t, err, ErrInvalidID)
}
