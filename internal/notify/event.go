package notify

import "time"

type EventType string

const (
	EventRecordSubmitted    EventType = "record.submitted"
	EventRecordApproved     EventType = "record.approved"
	EventRecordRejected     EventType = "record.rejected"
	EventTaxSettled         EventType = "tax.settled"
	EventOutstandingChanged EventType = "tax.outstanding_changed"
	EventTaxReminder        EventType = "tax.reminder"
)

// Event is what the chat gateway renders. Exactly one payload is set,
// matching Type.
type Event struct {
	Type       EventType `json:"type"`
	GuildID    string    `json:"guild_id"`
	OccurredAt time.Time `json:"occurred_at"`

	Record      *RecordPayload      `json:"record,omitempty"`
	Settlement  *SettlementPayload  `json:"settlement,omitempty"`
	Outstanding *OutstandingPayload `json:"outstanding,omitempty"`
	Reminder    *ReminderPayload    `json:"reminder,omitempty"`
}

// RecordKind is "sale" or "contract".
type RecordKind string

const (
	KindSale     RecordKind = "sale"
	KindContract RecordKind = "contract"
)

// Amounts are formatted with two decimals.
type RecordPayload struct {
	Kind            RecordKind `json:"kind"`
	RecordID        string     `json:"record_id"`
	CompanyID       string     `json:"company_id"`
	CompanyName     string     `json:"company_name"`
	SubmittedBy     string     `json:"submitted_by"`
	GrossAmount     string     `json:"gross_amount"`
	CountryTax      string     `json:"country_tax"`
	PayoutAmount    string     `json:"payout_amount"`
	DecidedBy       string     `json:"decided_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

type SettlementPayload struct {
	PayerID        string              `json:"payer_id"`
	AmountPaid     string              `json:"amount_paid"`
	TotalAllocated string              `json:"total_allocated"`
	Remittances    []RemittanceSummary `json:"remittances"`
}

type RemittanceSummary struct {
	RemittanceID string `json:"remittance_id"`
	Reference    string `json:"reference"`
	CompanyID    string `json:"company_id"`
	TotalAmount  string `json:"total_amount"`
	ItemCount    int    `json:"item_count"`
}

type OutstandingPayload struct {
	GrandTotal string               `json:"grand_total"`
	Companies  []CompanyOutstanding `json:"companies"`
}

type CompanyOutstanding struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	TotalDue    string `json:"total_due"`
	ItemCount   int    `json:"item_count"`
}

type ReminderPayload struct {
	ChannelID     string             `json:"channel_id"`
	ChefRoleID    string             `json:"chef_role_id,omitempty"`
	OfficerRoleID string             `json:"officer_role_id,omitempty"`
	Outstanding   OutstandingPayload `json:"outstanding"`
}
