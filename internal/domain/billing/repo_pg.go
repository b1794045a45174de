package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentio/dentio/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const invCols = `id, patient_id, treatment_plan_id, status, currency, issued_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.PatientID, &inv.TreatmentPlanID, &inv.Status,
		&inv.Currency, &inv.IssuedAt, &inv.CreatedAt, &inv.UpdatedAt)
	return &inv, err
}

func (r *repoPG) CreateInvoice(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO invoice (id, patient_id, treatment_plan_id, status, currency)
		VALUES ($1,$2,$3,$4,$5)`,
		inv.ID, inv.PatientID, inv.TreatmentPlanID, inv.Status, inv.Currency)
	return err
}

func (r *repoPG) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := scanInvoice(r.conn(ctx).QueryRow(ctx, `SELECT `+invCols+` FROM invoice WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	inv.Items, err = r.ListItems(ctx, id)
	return inv, err
}

func (r *repoPG) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET status=$2, issued_at=$3, updated_at=NOW() WHERE id = $1`,
		inv.ID, inv.Status, inv.IssuedAt)
	return err
}

func (r *repoPG) SearchInvoices(ctx context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error) {
	query := `SELECT ` + invCols + ` FROM invoice WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM invoice WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["patient"]; ok {
		query += fmt.Sprintf(` AND patient_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND patient_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inv)
	}
	return items, total, nil
}

func (r *repoPG) AddItem(ctx context.Context, item *LineItem) error {
	item.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO invoice_item (id, invoice_id, code, description, quantity, unit_price_cents)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		item.ID, item.InvoiceID, item.Code, item.Description, item.Quantity, item.UnitPriceCents)
	return err
}

func (r *repoPG) RemoveItem(ctx context.Context, invoiceID, itemID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM invoice_item WHERE id = $1 AND invoice_id = $2`, itemID, invoiceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item not found")
	}
	return nil
}

func (r *repoPG) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]*LineItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, invoice_id, code, description, quantity, unit_price_cents
		FROM invoice_item WHERE invoice_id = $1 ORDER BY code`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*LineItem
	for rows.Next() {
		var li LineItem
		if err := rows.Scan(&li.ID, &li.InvoiceID, &li.Code, &li.Description, &li.Quantity, &li.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, &li)
	}
	return items, nil
}

func (r *repoPG) CreatePayment(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO payment (id, invoice_id, amount_cents, method, reference, received_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.InvoiceID, p.AmountCents, p.Method, p.Reference, p.ReceivedAt)
	return err
}

func (r *repoPG) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, invoice_id, amount_cents, method, reference, received_at, created_at
		FROM payment WHERE invoice_id = $1 ORDER BY received_at`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.AmountCents, &p.Method, &p.Reference, &p.ReceivedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, nil
}

func (r *repoPG) SumPayments(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	var sum int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM payment WHERE invoice_id = $1`, invoiceID).Scan(&sum)
	return sum, err
}

func (r *repoPG) RevenueByStatus(ctx context.Context, from, to time.Time) ([]StatusTotal, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT i.status, COUNT(DISTINCT i.id), COALESCE(SUM(li.quantity * li.unit_price_cents), 0)
		FROM invoice i
		LEFT JOIN invoice_item li ON li.invoice_id = i.id
		WHERE i.created_at >= $1 AND i.created_at < $2
		GROUP BY i.status
		ORDER BY i.status`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StatusTotal
	for rows.Next() {
		var st StatusTotal
		if err := rows.Scan(&st.Status, &st.Invoices, &st.TotalCents); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (r *repoPG) CollectedTotal(ctx context.Context, from, to time.Time) (int64, error) {
	var sum int64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM payment
		WHERE received_at >= $1 AND received_at < $2`, from, to).Scan(&sum)
	return sum, err
}
