package domain

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/civitas/pkg/money"
)

type ContractTaxes struct {
	GrossAmount       decimal.Decimal `json:"gross_amount"`
	CountryTax        decimal.Decimal `json:"country_tax"`
	CompanyTax        decimal.Decimal `json:"company_tax"`
	EmployeeShare     decimal.Decimal `json:"employee_share"`
	PerEmployeeAmount decimal.Decimal `json:"per_employee_amount"`
}

// ComputeContractTaxes takes country tax from the full gross, then company
// tax from what remains; the rest is shared between employees. Intermediate
// steps are exact. Only the stored taxes are rounded, and the employee share
// absorbs the rounding so the three parts always add up to the gross.
// employeeCount must be at least one.
func ComputeContractTaxes(gross decimal.Decimal, employeeCount int, countryRate, companyRate decimal.Decimal) ContractTaxes {
	countryExact := gross.Mul(countryRate)
	remaining := gross.Sub(countryExact)
	companyExact := remaining.Mul(companyRate)

	countryTax := money.Round(countryExact)
	companyTax := money.Round(companyExact)
	share := gross.Sub(countryTax).Sub(companyTax)

	return ContractTaxes{
		GrossAmount:       gross,
		CountryTax:        countryTax,
		CompanyTax:        companyTax,
		EmployeeShare:     share,
		PerEmployeeAmount: money.Round(share.Div(decimal.NewFromInt(int64(employeeCount)))),
	}
}
