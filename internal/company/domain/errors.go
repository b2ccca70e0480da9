package domain

import "github.com/smallbiznis/civitas/internal/apperr"

var (
	ErrInvalidGuild   = apperr.Validation("invalid_guild")
	ErrInvalidID      = apperr.Validation("invalid_company_id")
	ErrInvalidName    = apperr.Validation("invalid_company_name")
	ErrInvalidType    = apperr.Validation("invalid_company_type")
	ErrInvalidOwner   = apperr.Validation("invalid_company_owner")
	ErrInvalidTaxRate = apperr.Validation("invalid_company_tax_rate")
	ErrDuplicateName  = apperr.State("company_name_taken")
	ErrNotFound       = apperr.NotFound("company_not_found")
)
