package treatmentplan

import (
	"context"
	"fmt"

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

const cols = `id, patient_id, provider_id, title, status, estimated_months,
	total_fee_cents, presented_at, accepted_at, started_at, completed_at,
	hold_reason, discontinue_reason, notes, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*TreatmentPlan, error) {
	var p TreatmentPlan
	err := row.Scan(&p.ID, &p.PatientID, &p.ProviderID, &p.Title, &p.Status,
		&p.EstimatedMonths, &p.TotalFeeCents,
		&p.PresentedAt, &p.AcceptedAt, &p.StartedAt, &p.CompletedAt,
		&p.HoldReason, &p.DiscontinueReason, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *TreatmentPlan) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_plan (id, patient_id, provider_id, title, status,
			estimated_months, total_fee_cents, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.PatientID, p.ProviderID, p.Title, p.Status,
		p.EstimatedMonths, p.TotalFeeCents, p.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM treatment_plan WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *TreatmentPlan) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_plan SET title=$2, status=$3, estimated_months=$4,
			total_fee_cents=$5, presented_at=$6, accepted_at=$7, started_at=$8,
			completed_at=$9, hold_reason=$10, discontinue_reason=$11, notes=$12,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Title, p.Status, p.EstimatedMonths, p.TotalFeeCents,
		p.PresentedAt, p.AcceptedAt, p.StartedAt, p.CompletedAt,
		p.HoldReason, p.DiscontinueReason, p.Notes)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*TreatmentPlan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM treatment_plan`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM treatment_plan ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*TreatmentPlan
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TreatmentPlan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM treatment_plan WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM treatment_plan WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*TreatmentPlan
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*TreatmentPlan, int, error) {
	query := `SELECT ` + cols + ` FROM treatment_plan WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM treatment_plan WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["provider"]; ok {
		query += fmt.Sprintf(` AND provider_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND provider_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["patient"]; ok {
		query += fmt.Sprintf(` AND patient_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND patient_id = $%d`, idx)
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
	var items []*TreatmentPlan
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) AddPhase(ctx context.Context, ph *Phase) error {
	ph.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_plan_phase (id, plan_id, seq, description, appliance,
			planned_visits, completed_visits, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		ph.ID, ph.PlanID, ph.Seq, ph.Description, ph.Appliance,
		ph.PlannedVisits, ph.CompletedVisits, ph.Status)
	return err
}

func (r *repoPG) GetPhases(ctx context.Context, planID uuid.UUID) ([]*Phase, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, plan_id, seq, description, appliance, planned_visits,
			completed_visits, status
		FROM treatment_plan_phase WHERE plan_id = $1 ORDER BY seq`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Phase
	for rows.Next() {
		var ph Phase
		if err := rows.Scan(&ph.ID, &ph.PlanID, &ph.Seq, &ph.Description,
			&ph.Appliance, &ph.PlannedVisits, &ph.CompletedVisits, &ph.Status); err != nil {
			return nil, err
		}
		items = append(items, &ph)
	}
	return items, nil
}

func (r *repoPG) UpdatePhase(ctx context.Context, ph *Phase) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_plan_phase SET description=$2, appliance=$3,
			planned_visits=$4, completed_visits=$5, status=$6
		WHERE id = $1`,
		ph.ID, ph.Description, ph.Appliance, ph.PlannedVisits,
		ph.CompletedVisits, ph.Status)
	return err
}
