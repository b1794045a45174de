package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentio/dentio/internal/platform/db"
)

// EventSink receives domain events for outbound delivery. Optional.
type EventSink interface {
	Emit(ctx context.Context, eventType, resourceType string, resourceID uuid.UUID)
}

type Service struct {
	repo   Repository
	events EventSink
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) SetEventSink(es EventSink) { s.events = es }

func validateItem(item *LineItem) error {
	if strings.TrimSpace(item.Code) == "" {
		return fmt.Errorf("item code is required")
	}
	if strings.TrimSpace(item.Description) == "" {
		return fmt.Errorf("item description is required")
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("item quantity must be positive")
	}
	if item.UnitPriceCents < 0 {
		return fmt.Errorf("item unit price must not be negative")
	}
	return nil
}

// CreateInvoice opens a DRAFT invoice, optionally with initial line items.
func (s *Service) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if inv.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if inv.Currency == "" {
		inv.Currency = "USD"
	}
	for _, item := range inv.Items {
		if err := validateItem(item); err != nil {
			return err
		}
	}
	inv.Status = StatusDraft
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return err
	}
	for _, item := range inv.Items {
		item.InvoiceID = inv.ID
		if err := s.repo.AddItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

// AddItem appends a line item. Items are editable only while DRAFT.
func (s *Service) AddItem(ctx context.Context, invoiceID uuid.UUID, item *LineItem) error {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("invoice not found: %w", err)
	}
	if inv.Status != StatusDraft {
		return fmt.Errorf("cannot edit items: invoice is %s, must be %s", inv.Status, StatusDraft)
	}
	if err := validateItem(item); err != nil {
		return err
	}
	item.InvoiceID = invoiceID
	return s.repo.AddItem(ctx, item)
}

func (s *Service) RemoveItem(ctx context.Context, invoiceID, itemID uuid.UUID) error {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("invoice not found: %w", err)
	}
	if inv.Status != StatusDraft {
		return fmt.Errorf("cannot edit items: invoice is %s, must be %s", inv.Status, StatusDraft)
	}
	return s.repo.RemoveItem(ctx, invoiceID, itemID)
}

// Issue finalizes a DRAFT invoice. An invoice needs at least one line
// item before it can go out.
func (s *Service) Issue(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	if inv.Status != StatusDraft {
		return nil, fmt.Errorf("cannot issue: invoice is %s, must be %s", inv.Status, StatusDraft)
	}
	if len(inv.Items) == 0 {
		return nil, fmt.Errorf("cannot issue an invoice with no items")
	}
	now := time.Now().UTC()
	inv.Status = StatusIssued
	inv.IssuedAt = &now
	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// RecordPayment applies a payment to an issued invoice. Overpayment is
// rejected; reaching a zero balance moves the invoice to PAID.
func (s *Service) RecordPayment(ctx context.Context, invoiceID uuid.UUID, amountCents int64, method string, reference *string) (*Payment, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if strings.TrimSpace(method) == "" {
		return nil, fmt.Errorf("payment method is required")
	}
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	if !inv.Payable() {
		return nil, fmt.Errorf("cannot pay a %s invoice", inv.Status)
	}

	bal, err := s.Balance(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if amountCents > bal.BalanceCents {
		return nil, fmt.Errorf("payment of %d exceeds balance of %d", amountCents, bal.BalanceCents)
	}

	// The payment insert and the status flip are one atomic unit when a
	// tenant connection is available; unit tests run without one.
	txCtx, tx, txErr := db.WithTx(ctx)
	if txErr == nil {
		ctx = txCtx
		defer tx.Rollback(context.Background())
	}

	p := &Payment{
		InvoiceID:   invoiceID,
		AmountCents: amountCents,
		Method:      method,
		Reference:   reference,
		ReceivedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	if amountCents == bal.BalanceCents {
		inv.Status = StatusPaid
	} else {
		inv.Status = StatusPartiallyPaid
	}
	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	if tx != nil {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit payment: %w", err)
		}
	}
	if inv.Status == StatusPaid && s.events != nil {
		s.events.Emit(ctx, "invoice.paid", "invoice", inv.ID)
	}
	return p, nil
}

// Void cancels an invoice that has not collected any money.
func (s *Service) Void(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	if inv.Status != StatusDraft && inv.Status != StatusIssued {
		return nil, fmt.Errorf("cannot void a %s invoice", inv.Status)
	}
	paid, err := s.repo.SumPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	if paid > 0 {
		return nil, fmt.Errorf("cannot void an invoice with recorded payments")
	}
	inv.Status = StatusVoid
	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Balance returns the invoice total, the amount paid and the remainder.
func (s *Service) Balance(ctx context.Context, invoiceID uuid.UUID) (*Balance, error) {
	items, err := s.repo.ListItems(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	paid, err := s.repo.SumPayments(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, item := range items {
		total += item.TotalCents()
	}
	return &Balance{
		InvoiceID:    invoiceID,
		TotalCents:   total,
		PaidCents:    paid,
		BalanceCents: total - paid,
	}, nil
}

func (s *Service) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	return s.repo.ListPayments(ctx, invoiceID)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error) {
	return s.repo.SearchInvoices(ctx, params, limit, offset)
}

// Revenue summarizes invoicing and collections over [from, to).
func (s *Service) Revenue(ctx context.Context, from, to time.Time) (*RevenueSummary, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("to must be after from")
	}
	byStatus, err := s.repo.RevenueByStatus(ctx, from, to)
	if err != nil {
		return nil, err
	}
	collected, err := s.repo.CollectedTotal(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &RevenueSummary{
		From:           from.Format("2006-01-02"),
		To:             to.Format("2006-01-02"),
		ByStatus:       byStatus,
		CollectedCents: collected,
	}, nil
}
