// Package approval implements the PENDING -> APPROVED | REJECTED lifecycle
// shared by sales and contracts, and the country-tax-paid flag that sits on
// top of an approved record.
package approval

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/civitas/internal/apperr"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

var (
	ErrInvalidStatus     = apperr.Validation("invalid_status")
	ErrInvalidDecision   = apperr.Validation("invalid_decision")
	ErrAlreadyProcessed  = apperr.State("already_processed")
	ErrNotApproved       = apperr.State("not_approved")
	ErrCountryTaxPaid    = apperr.State("country_tax_already_paid")
	ErrReasonNotAllowed  = apperr.Validation("reason_only_on_reject")
	ErrMissingDecisionBy = apperr.Validation("invalid_actor")
	ErrMissingRemittance = apperr.Validation("invalid_remittance")
)

// Decide returns the status reached by applying d to current.
func Decide(current Status, d Decision) (Status, error) {
	if current != StatusPending {
		return "", ErrAlreadyProcessed
	}
	switch d {
	case DecisionApprove:
		return StatusApproved, nil
	case DecisionReject:
		return StatusRejected, nil
	default:
		return "", ErrInvalidDecision
	}
}

// CanMarkCountryTaxPaid reports whether a record may be flagged paid.
func CanMarkCountryTaxPaid(status Status, paid bool) error {
	if status != StatusApproved {
		return ErrNotApproved
	}
	if paid {
		return ErrCountryTaxPaid
	}
	return nil
}

// Lifecycle is embedded by every record that goes through approval. Its
// columns are shared by the sales and contracts tables.
type Lifecycle struct {
	Status          Status        `gorm:"column:status" json:"status"`
	CountryTaxPaid  bool          `gorm:"column:country_tax_paid" json:"country_tax_paid"`
	DecidedBy       *string       `gorm:"column:decided_by" json:"decided_by,omitempty"`
	DecidedByName   *string       `gorm:"column:decided_by_name" json:"decided_by_name,omitempty"`
	DecidedAt       *time.Time    `gorm:"column:decided_at" json:"decided_at,omitempty"`
	RejectionReason *string       `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	RemittanceID    *snowflake.ID `gorm:"column:remittance_id" json:"remittance_id,omitempty"`
	PaidAt          *time.Time    `gorm:"column:paid_at" json:"paid_at,omitempty"`
}

func NewLifecycle() Lifecycle {
	return Lifecycle{Status: StatusPending}
}

// Actor identifies who took a decision.
type Actor struct {
	ID   string
	Name string
}

// Apply transitions l according to d. The reason is kept only on rejection.
func (l *Lifecycle) Apply(d Decision, actor Actor, reason string, at time.Time) error {
	actorID := strings.TrimSpace(actor.ID)
	if actorID == "" {
		return ErrMissingDecisionBy
	}
	next, err := Decide(l.Status, d)
	if err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	if reason != "" && d != DecisionReject {
		return ErrReasonNotAllowed
	}

	at = at.UTC()
	name := strings.TrimSpace(actor.Name)
	l.Status = next
	l.DecidedBy = &actorID
	l.DecidedByName = &name
	l.DecidedAt = &at
	if reason != "" {
		l.RejectionReason = &reason
	}
	return nil
}

// MarkCountryTaxPaid flips the paid flag and links the covering remittance.
func (l *Lifecycle) MarkCountryTaxPaid(remittanceID snowflake.ID, at time.Time) error {
	if remittanceID == 0 {
		return ErrMissingRemittance
	}
	if err := CanMarkCountryTaxPaid(l.Status, l.CountryTaxPaid); err != nil {
		return err
	}
	at = at.UTC()
	l.CountryTaxPaid = true
	l.RemittanceID = &remittanceID
	l.PaidAt = &at
	return nil
}

// Outstanding reports whether the record still owes country tax.
func (l Lifecycle) Outstanding() bool {
	return l.Status == StatusApproved && !l.CountryTaxPaid
}

// OutstandingRefresher is told when a guild's outstanding country tax may
// have changed.
type OutstandingRefresher interface {
	RefreshOutstanding(ctx context.Context, guildID string)
}
