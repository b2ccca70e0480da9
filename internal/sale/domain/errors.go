package domain

import "github.com/smallbiznis/civitas/internal/apperr"

var (
	ErrInvalidID        = apperr.Validation("invalid_sale_id")
	ErrInvalidGuild     = apperr.Validation("invalid_guild")
	ErrInvalidSubmitter = apperr.Validation("invalid_submitter")
	ErrInvalidAmount    = apperr.Validation("invalid_amount")
	ErrInvalidRate      = apperr.Validation("invalid_tax_rate")
	ErrUnknownCrop      = apperr.Validation("unknown_crop")
	ErrWrongCompanyType = apperr.Validation("company_does_not_sell_crops")
	ErrSplitMismatch    = apperr.New(apperr.KindInternal, "sale_split_mismatch")
	ErrNotFound         = apperr.NotFound("sale_not_found")
)
