package domain

import "github.com/smallbiznis/civitas/internal/apperr"

var (
	ErrInvalidID       = apperr.Validation("invalid_id")
	ErrInvalidGuild    = apperr.Validation("invalid_guild")
	ErrInvalidPayer    = apperr.Validation("invalid_payer")
	ErrInvalidAmount   = apperr.Validation("invalid_amount")
	ErrEmptyRemittance = apperr.Validation("empty_remittance")

	ErrNotFound = apperr.NotFound("remittance_not_found")

	ErrNoCompanies          = apperr.State("no_companies")
	ErrNothingDue           = apperr.State("nothing_due")
	ErrInsufficientPayment  = apperr.State("insufficient_payment")
	ErrConcurrentSettlement = apperr.State("concurrent_settlement")
	ErrSettlementInProgress = apperr.State("settlement_in_progress")
)
