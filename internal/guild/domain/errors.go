package domain

import "github.com/smallbiznis/civitas/internal/apperr"

var (
	ErrInvalidGuild         = apperr.Validation("invalid_guild")
	ErrInvalidCountryName   = apperr.Validation("invalid_country_name")
	ErrInvalidRate          = apperr.Validation("invalid_tax_rate")
	ErrRateAboveMaximum     = apperr.Validation("tax_rate_above_maximum")
	ErrInvalidReminderMode  = apperr.Validation("invalid_reminder_mode")
	ErrInvalidReminderEvery = apperr.Validation("invalid_reminder_every")
	ErrNotConfigured        = apperr.NotFound("guild_not_configured")
)
