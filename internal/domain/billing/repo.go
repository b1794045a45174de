package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	SearchInvoices(ctx context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error)

	AddItem(ctx context.Context, item *LineItem) error
	RemoveItem(ctx context.Context, invoiceID, itemID uuid.UUID) error
	ListItems(ctx context.Context, invoiceID uuid.UUID) ([]*LineItem, error)

	CreatePayment(ctx context.Context, p *Payment) error
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
	SumPayments(ctx context.Context, invoiceID uuid.UUID) (int64, error)

	// RevenueByStatus totals invoices created in [from, to) grouped by status.
	RevenueByStatus(ctx context.Context, from, to time.Time) ([]StatusTotal, error)
	// CollectedTotal sums payments received in [from, to).
	CollectedTotal(ctx context.Context, from, to time.Time) (int64, error)
}
