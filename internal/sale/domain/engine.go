package domain

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/pkg/money"
)

type SaleTaxes struct {
	ServerTax  decimal.Decimal `json:"server_tax"`
	CompanyTax decimal.Decimal `json:"company_tax"`
	CountryTax decimal.Decimal `json:"country_tax"`
	NetAmount  decimal.Decimal `json:"net_amount"`
}

// ComputeSaleTaxes splits a gross sale. Server tax comes off the gross
// first; company and country tax are both taken from what remains, without
// clamping their sum to that base.
func ComputeSaleTaxes(gross, serverRate, companyRate, countryRate decimal.Decimal) SaleTaxes {
	serverTax := money.Round(gross.Mul(serverRate))
	base := gross.Sub(serverTax)
	companyTax := money.Round(base.Mul(companyRate))
	countryTax := money.Round(base.Mul(countryRate))
	net := money.Round(gross.Sub(money.Sum(serverTax, companyTax, countryTax)))

	return SaleTaxes{
		ServerTax:  serverTax,
		CompanyTax: companyTax,
		CountryTax: countryTax,
		NetAmount:  net,
	}
}

func (t SaleTaxes) Total() decimal.Decimal {
	return money.Sum(t.ServerTax, t.CompanyTax, t.CountryTax, t.NetAmount)
}
