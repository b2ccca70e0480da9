package domain

import "github.com/smallbiznis/civitas/internal/apperr"

var (
	ErrInvalidID            = apperr.Validation("invalid_contract_id")
	ErrInvalidGuild         = apperr.Validation("invalid_guild")
	ErrInvalidSubmitter     = apperr.Validation("invalid_submitter")
	ErrInvalidClient        = apperr.Validation("invalid_client")
	ErrInvalidAmount        = apperr.Validation("invalid_amount")
	ErrInvalidEmployeeCount = apperr.Validation("invalid_employee_count")
	ErrInvalidRate          = apperr.Validation("invalid_tax_rate")
	ErrWrongCompanyType     = apperr.Validation("company_does_not_build")
	ErrSplitMismatch        = apperr.New(apperr.KindInternal, "contract_split_mismatch")
	ErrNotFound             = apperr.NotFound("contract_not_found")
)
