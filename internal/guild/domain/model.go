package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ReminderMode string

const (
	ReminderDays   ReminderMode = "DAYS"
	ReminderWeeks  ReminderMode = "WEEKS"
	ReminderMonths ReminderMode = "MONTHS"
)

func ParseReminderMode(raw string) (ReminderMode, error) {
	mode := ReminderMode(strings.ToUpper(strings.TrimSpace(raw)))
	switch mode {
	case ReminderDays, ReminderWeeks, ReminderMonths:
		return mode, nil
	case "":
		return ReminderWeeks, nil
	}
	return "", ErrInvalidReminderMode
}

// GuildConfig is the tax policy of one chat server (a country).
type GuildConfig struct {
	GuildID        string `gorm:"column:guild_id;primaryKey" json:"guild_id"`
	CountryName    string `gorm:"column:country_name" json:"country_name"`
	ChefRoleID     string `gorm:"column:chef_role_id" json:"chef_role_id"`
	OfficerRoleID  string `gorm:"column:officer_role_id" json:"officer_role_id"`
	TaxesChannelID string `gorm:"column:taxes_channel_id" json:"taxes_channel_id"`

	ServerTaxRate         decimal.Decimal `gorm:"column:server_tax_rate" json:"server_tax_rate"`
	CountryTaxRate        decimal.Decimal `gorm:"column:country_tax_rate" json:"country_tax_rate"`
	DefaultCompanyTaxRate decimal.Decimal `gorm:"column:default_company_tax_rate" json:"default_company_tax_rate"`

	ReminderEnabled bool         `gorm:"column:reminder_enabled" json:"reminder_enabled"`
	ReminderMode    ReminderMode `gorm:"column:reminder_mode" json:"reminder_mode"`
	ReminderEvery   int          `gorm:"column:reminder_every" json:"reminder_every"`
	LastRemindedAt  *time.Time   `gorm:"column:last_reminded_at" json:"last_reminded_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (GuildConfig) TableName() string { return "guild_configs" }

func (g *GuildConfig) Validate() error {
	if strings.TrimSpace(g.GuildID) == "" {
		return ErrInvalidGuild
	}
	if strings.TrimSpace(g.CountryName) == "" {
		return ErrInvalidCountryName
	}
	for _, rate := range []decimal.Decimal{g.ServerTaxRate, g.CountryTaxRate, g.DefaultCompanyTaxRate} {
		if err := ValidateRate(rate); err != nil {
			return err
		}
	}
	if _, err := ParseReminderMode(string(g.ReminderMode)); err != nil {
		return err
	}
	if g.ReminderEvery < 1 {
		return ErrInvalidReminderEvery
	}
	return nil
}

// ValidateRate accepts fractions in [0,1].
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidRate
	}
	return nil
}

// NextReminderAt returns when the next reminder is due, or nil when reminders
// are disabled. A guild never reminded is due immediately.
func (g *GuildConfig) NextReminderAt() *time.Time {
	if !g.ReminderEnabled {
		return nil
	}
	if g.LastRemindedAt == nil {
		zero := time.Time{}
		return &zero
	}
	every := g.ReminderEvery
	if every < 1 {
		every = 1
	}
	last := g.LastRemindedAt.UTC()
	var next time.Time
	switch g.ReminderMode {
	case ReminderDays:
		next = last.AddDate(0, 0, every)
	case ReminderMonths:
		next = last.AddDate(0, every, 0)
	default:
		next = last.AddDate(0, 0, 7*every)
	}
	return &next
}

func (g *GuildConfig) ReminderDue(now time.Time) bool {
	next := g.NextReminderAt()
	return next != nil && !now.Before(*next)
}
