package sterilization

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

const cycleCols = `id, autoclave_name, cycle_number, type, temperature_c, pressure_kpa,
	duration_minutes, operator_id, status, mechanical_pass, chemical_pass,
	bi_required, started_at, completed_at, created_at, updated_at`

func scanCycle(row pgx.Row) (*Cycle, error) {
	var c Cycle
	err := row.Scan(&c.ID, &c.AutoclaveName, &c.CycleNumber, &c.Type,
		&c.TemperatureC, &c.PressureKPa, &c.DurationMinutes, &c.OperatorID,
		&c.Status, &c.MechanicalPass, &c.ChemicalPass, &c.BIRequired,
		&c.StartedAt, &c.CompletedAt, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *repoPG) CreateCycle(ctx context.Context, c *Cycle) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sterilization_cycle (id, autoclave_name, cycle_number, type,
			temperature_c, pressure_kpa, duration_minutes, operator_id, status,
			bi_required, started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.AutoclaveName, c.CycleNumber, c.Type, c.TemperatureC,
		c.PressureKPa, c.DurationMinutes, c.OperatorID, c.Status,
		c.BIRequired, c.StartedAt)
	return err
}

func (r *repoPG) GetCycle(ctx context.Context, id uuid.UUID) (*Cycle, error) {
	return scanCycle(r.conn(ctx).QueryRow(ctx, `SELECT `+cycleCols+` FROM sterilization_cycle WHERE id = $1`, id))
}

func (r *repoPG) UpdateCycle(ctx context.Context, c *Cycle) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE sterilization_cycle SET status=$2, mechanical_pass=$3,
			chemical_pass=$4, completed_at=$5, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Status, c.MechanicalPass, c.ChemicalPass, c.CompletedAt)
	return err
}

func (r *repoPG) SearchCycles(ctx context.Context, params map[string]string, limit, offset int) ([]*Cycle, int, error) {
	query := `SELECT ` + cycleCols + ` FROM sterilization_cycle WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM sterilization_cycle WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["autoclave"]; ok {
		query += fmt.Sprintf(` AND autoclave_name = $%d`, idx)
		countQuery += fmt.Sprintf(` AND autoclave_name = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["from"]; ok {
		query += fmt.Sprintf(` AND started_at >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND started_at >= $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["to"]; ok {
		query += fmt.Sprintf(` AND started_at < $%d`, idx)
		countQuery += fmt.Sprintf(` AND started_at < $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY started_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, nil
}

func (r *repoPG) NextCycleNumber(ctx context.Context, autoclave string, day time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(MAX(cycle_number), 0) + 1 FROM sterilization_cycle
		WHERE autoclave_name = $1 AND started_at::date = $2::date`,
		autoclave, day).Scan(&n)
	return n, err
}

const pkgCols = `id, cycle_id, contents_label, instrument_count, status,
	expires_at, dispensed_to, dispensed_at, created_at, updated_at`

func scanPackage(row pgx.Row) (*Package, error) {
	var p Package
	err := row.Scan(&p.ID, &p.CycleID, &p.ContentsLabel, &p.InstrumentCount,
		&p.Status, &p.ExpiresAt, &p.DispensedTo, &p.DispensedAt,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) CreatePackage(ctx context.Context, p *Package) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sterilization_package (id, cycle_id, contents_label,
			instrument_count, status, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.CycleID, p.ContentsLabel, p.InstrumentCount, p.Status, p.ExpiresAt)
	return err
}

func (r *repoPG) GetPackage(ctx context.Context, id uuid.UUID) (*Package, error) {
	return scanPackage(r.conn(ctx).QueryRow(ctx, `SELECT `+pkgCols+` FROM sterilization_package WHERE id = $1`, id))
}

func (r *repoPG) UpdatePackage(ctx context.Context, p *Package) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE sterilization_package SET status=$2, dispensed_to=$3,
			dispensed_at=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Status, p.DispensedTo, p.DispensedAt)
	return err
}

func (r *repoPG) ListPackagesByCycle(ctx context.Context, cycleID uuid.UUID) ([]*Package, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+pkgCols+` FROM sterilization_package WHERE cycle_id = $1 ORDER BY created_at`, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

func (r *repoPG) CountPackagesByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM sterilization_package WHERE status = $1`, status).Scan(&n)
	return n, err
}

const biCols = `id, cycle_id, incubator_slot, result, read_at, technician_id, created_at`

func scanBI(row pgx.Row) (*BIResult, error) {
	var b BIResult
	err := row.Scan(&b.ID, &b.CycleID, &b.IncubatorSlot, &b.Result,
		&b.ReadAt, &b.TechnicianID, &b.CreatedAt)
	return &b, err
}

func (r *repoPG) CreateBIResult(ctx context.Context, b *BIResult) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bi_result (id, cycle_id, incubator_slot, result, read_at, technician_id)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		b.ID, b.CycleID, b.IncubatorSlot, b.Result, b.ReadAt, b.TechnicianID)
	return err
}

func (r *repoPG) UpdateBIResult(ctx context.Context, b *BIResult) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE bi_result SET result=$2, read_at=$3, technician_id=$4
		WHERE id = $1`,
		b.ID, b.Result, b.ReadAt, b.TechnicianID)
	return err
}

func (r *repoPG) ListBIResultsByCycle(ctx context.Context, cycleID uuid.UUID) ([]*BIResult, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+biCols+` FROM bi_result WHERE cycle_id = $1 ORDER BY created_at`, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*BIResult
	for rows.Next() {
		b, err := scanBI(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, nil
}

func (r *repoPG) CountPendingBIs(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bi_result WHERE result = 'pending'`).Scan(&n)
	return n, err
}
