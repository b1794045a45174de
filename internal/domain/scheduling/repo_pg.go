package scheduling

import (
	"context"
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

const shiftCols = `id, provider_id, chair, start_at, end_at, created_at`

func scanShift(row pgx.Row) (*Shift, error) {
	var s Shift
	err := row.Scan(&s.ID, &s.ProviderID, &s.Chair, &s.StartAt, &s.EndAt, &s.CreatedAt)
	return &s, err
}

func (r *repoPG) CreateShift(ctx context.Context, s *Shift) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO provider_shift (id, provider_id, chair, start_at, end_at)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.ProviderID, s.Chair, s.StartAt, s.EndAt)
	return err
}

func (r *repoPG) ListShifts(ctx context.Context, providerID *uuid.UUID, from, to time.Time) ([]*Shift, error) {
	query := `SELECT ` + shiftCols + ` FROM provider_shift WHERE start_at < $2 AND end_at > $1`
	args := []interface{}{from, to}
	if providerID != nil {
		query += ` AND provider_id = $3`
		args = append(args, *providerID)
	}
	query += ` ORDER BY start_at`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}

const apptCols = `id, patient_id, provider_id, chair, start_at, end_at,
	visit_type, status, note, created_at, updated_at`

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.ProviderID, &a.Chair, &a.StartAt,
		&a.EndAt, &a.VisitType, &a.Status, &a.Note, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) CreateAppointment(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, provider_id, chair, start_at,
			end_at, visit_type, status, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.PatientID, a.ProviderID, a.Chair, a.StartAt, a.EndAt,
		a.VisitType, a.Status, a.Note)
	return err
}

func (r *repoPG) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) UpdateAppointment(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET chair=$2, start_at=$3, end_at=$4, visit_type=$5,
			status=$6, note=$7, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Chair, a.StartAt, a.EndAt, a.VisitType, a.Status, a.Note)
	return err
}

func (r *repoPG) ListOverlapping(ctx context.Context, providerID uuid.UUID, chair string, start, end time.Time, excludeID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE status NOT IN ('cancelled', 'no_show')
		  AND start_at < $4 AND end_at > $3
		  AND (provider_id = $1 OR chair = $2)
		  AND id <> $5`,
		providerID, chair, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, nil
}

func (r *repoPG) ListForProviderDay(ctx context.Context, providerID uuid.UUID, dayStart, dayEnd time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE provider_id = $1 AND start_at >= $2 AND start_at < $3
		ORDER BY start_at`,
		providerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointment WHERE patient_id = $1 ORDER BY start_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}
