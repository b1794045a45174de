// Package sterilization tracks autoclave cycles, sterile packages and
// biological indicator results for instrument reprocessing compliance.
package sterilization

import (
	"time"

	"github.com/google/uuid"
)

// Cycle statuses.
const (
	CycleRunning = "RUNNING"
	CyclePassed  = "PASSED"
	CycleFailed  = "FAILED"
	CycleAborted = "ABORTED"
)

// Cycle types.
const (
	TypeGravity  = "gravity"
	TypePrevac   = "prevac"
	TypeFlash    = "flash"
	TypeChemical = "chemical"
)

// Package statuses.
const (
	PkgSterile    = "STERILE"
	PkgQuarantine = "QUARANTINE"
	PkgDispensed  = "DISPENSED"
	PkgRecalled   = "RECALLED"
	PkgExpired    = "EXPIRED"
)

// Biological indicator results.
const (
	BIPending = "pending"
	BIPass    = "pass"
	BIFail    = "fail"
)

type Cycle struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	AutoclaveName   string     `db:"autoclave_name" json:"autoclave_name"`
	CycleNumber     int        `db:"cycle_number" json:"cycle_number"`
	Type            string     `db:"type" json:"type"`
	TemperatureC    *float64   `db:"temperature_c" json:"temperature_c,omitempty"`
	PressureKPa     *float64   `db:"pressure_kpa" json:"pressure_kpa,omitempty"`
	DurationMinutes *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	OperatorID      uuid.UUID  `db:"operator_id" json:"operator_id"`
	Status          string     `db:"status" json:"status"`
	MechanicalPass  *bool      `db:"mechanical_pass" json:"mechanical_pass,omitempty"`
	ChemicalPass    *bool      `db:"chemical_pass" json:"chemical_pass,omitempty"`
	BIRequired      bool       `db:"bi_required" json:"bi_required"`
	StartedAt       time.Time  `db:"started_at" json:"started_at"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Open reports whether the cycle is still running.
func (c *Cycle) Open() bool { return c.Status == CycleRunning }

type Package struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	CycleID         uuid.UUID  `db:"cycle_id" json:"cycle_id"`
	ContentsLabel   string     `db:"contents_label" json:"contents_label"`
	InstrumentCount int        `db:"instrument_count" json:"instrument_count"`
	Status          string     `db:"status" json:"status"`
	ExpiresAt       time.Time  `db:"expires_at" json:"expires_at"`
	DispensedTo     *uuid.UUID `db:"dispensed_to" json:"dispensed_to,omitempty"`
	DispensedAt     *time.Time `db:"dispensed_at" json:"dispensed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type BIResult struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	CycleID       uuid.UUID  `db:"cycle_id" json:"cycle_id"`
	IncubatorSlot string     `db:"incubator_slot" json:"incubator_slot"`
	Result        string     `db:"result" json:"result"`
	ReadAt        *time.Time `db:"read_at" json:"read_at,omitempty"`
	TechnicianID  *uuid.UUID `db:"technician_id" json:"technician_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// ComplianceSummary aggregates one day of sterilization activity.
type ComplianceSummary struct {
	Date                string  `json:"date"`
	CyclesRun           int     `json:"cycles_run"`
	CyclesPassed        int     `json:"cycles_passed"`
	CyclesFailed        int     `json:"cycles_failed"`
	PassRate            float64 `json:"pass_rate"`
	PendingBIs          int     `json:"pending_bis"`
	QuarantinedPackages int     `json:"quarantined_packages"`
}
