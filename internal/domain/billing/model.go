// Package billing manages patient invoices and payments.
package billing

import (
	"time"

	"github.com/google/uuid"
)

// Invoice statuses.
const (
	StatusDraft         = "DRAFT"
	StatusIssued        = "ISSUED"
	StatusPartiallyPaid = "PARTIALLY_PAID"
	StatusPaid          = "PAID"
	StatusVoid          = "VOID"
)

type Invoice struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	TreatmentPlanID *uuid.UUID `db:"treatment_plan_id" json:"treatment_plan_id,omitempty"`
	Status          string     `db:"status" json:"status"`
	Currency        string     `db:"currency" json:"currency"`
	IssuedAt        *time.Time `db:"issued_at" json:"issued_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`

	Items []*LineItem `db:"-" json:"items,omitempty"`
}

// Payable reports whether payments can be recorded against the invoice.
func (i *Invoice) Payable() bool {
	return i.Status == StatusIssued || i.Status == StatusPartiallyPaid
}

type LineItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	InvoiceID      uuid.UUID `db:"invoice_id" json:"invoice_id"`
	Code           string    `db:"code" json:"code"`
	Description    string    `db:"description" json:"description"`
	Quantity       int       `db:"quantity" json:"quantity"`
	UnitPriceCents int64     `db:"unit_price_cents" json:"unit_price_cents"`
}

func (li *LineItem) TotalCents() int64 {
	return int64(li.Quantity) * li.UnitPriceCents
}

type Payment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	InvoiceID   uuid.UUID `db:"invoice_id" json:"invoice_id"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	Method      string    `db:"method" json:"method"`
	Reference   *string   `db:"reference" json:"reference,omitempty"`
	ReceivedAt  time.Time `db:"received_at" json:"received_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Balance is the money position of one invoice.
type Balance struct {
	InvoiceID    uuid.UUID `json:"invoice_id"`
	TotalCents   int64     `json:"total_cents"`
	PaidCents    int64     `json:"paid_cents"`
	BalanceCents int64     `json:"balance_cents"`
}

// StatusTotal is one row of a revenue summary.
type StatusTotal struct {
	Status     string `json:"status"`
	Invoices   int    `json:"invoices"`
	TotalCents int64  `json:"total_cents"`
}

// RevenueSummary aggregates invoicing and collections over a period.
type RevenueSummary struct {
	From           string        `json:"from"`
	To             string        `json:"to"`
	ByStatus       []StatusTotal `json:"by_status"`
	CollectedCents int64         `json:"collected_cents"`
}
