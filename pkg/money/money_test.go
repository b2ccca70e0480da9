package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{name: "already rounded", amount: "4.50", expected: "4.5"},
		{name: "half up", amount: "2.345", expected: "2.35"},
		{name: "below half", amount: "2.344", expected: "2.34"},
		{name: "negative half away from zero", amount: "-2.345", expected: "-2.35"},
		{name: "float drift", amount: "0.30000000000000004", expected: "0.3"},
		{name: "zero", amount: "0", expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Round(decimal.RequireFromString(tt.amount))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s", got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "72.00", Format(decimal.NewFromInt(72)))
	assert.Equal(t, "202.50", Format(decimal.RequireFromString("202.5")))
	assert.Equal(t, "0.01", Format(decimal.RequireFromString("0.005")))
}

func TestPercentConversion(t *testing.T) {
	rate := FromPercent(decimal.RequireFromString("5.5"))
	assert.True(t, rate.Equal(decimal.RequireFromString("0.055")))
	assert.True(t, ToPercent(rate).Equal(decimal.RequireFromString("5.5")))
}

func TestSumAndWithinCent(t *testing.T) {
	total := Sum(decimal.RequireFromString("4.50"), decimal.RequireFromString("6.00"))
	assert.True(t, total.Equal(decimal.RequireFromString("10.5")))
	assert.True(t, Sum().IsZero())

	assert.True(t, WithinCent(decimal.RequireFromString("10.00"), decimal.RequireFromString("10.01")))
	assert.False(t, WithinCent(decimal.RequireFromString("10.00"), decimal.RequireFromString("10.02")))
}
