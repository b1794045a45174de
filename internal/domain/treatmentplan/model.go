package treatmentplan

import (
	"time"

	"github.com/google/uuid"
)

// Treatment plan lifecycle states. A plan is drafted chairside, presented to
// the patient, accepted, then worked through to completion. ON_HOLD is a
// pause from active treatment; DISCONTINUED, TRANSFERRED and COMPLETED are
// terminal.
const (
	StatusDraft        = "DRAFT"
	StatusPresented    = "PRESENTED"
	StatusAccepted     = "ACCEPTED"
	StatusActive       = "ACTIVE"
	StatusOnHold       = "ON_HOLD"
	StatusCompleted    = "COMPLETED"
	StatusDiscontinued = "DISCONTINUED"
	StatusTransferred  = "TRANSFERRED"
)

// Phase progress states.
const (
	PhasePending    = "pending"
	PhaseInProgress = "in_progress"
	PhaseComplete   = "complete"
)

// TreatmentPlan maps to the treatment_plan table.
type TreatmentPlan struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	PatientID         uuid.UUID  `db:"patient_id" json:"patient_id"`
	ProviderID        uuid.UUID  `db:"provider_id" json:"provider_id"`
	Title             string     `db:"title" json:"title"`
	Status            string     `db:"status" json:"status"`
	EstimatedMonths   *int       `db:"estimated_months" json:"estimated_months,omitempty"`
	TotalFeeCents     int64      `db:"total_fee_cents" json:"total_fee_cents"`
	PresentedAt       *time.Time `db:"presented_at" json:"presented_at,omitempty"`
	AcceptedAt        *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	StartedAt         *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt       *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	HoldReason        *string    `db:"hold_reason" json:"hold_reason,omitempty"`
	DiscontinueReason *string    `db:"discontinue_reason" json:"discontinue_reason,omitempty"`
	Notes             *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Terminal reports whether no further transitions are possible.
func (p *TreatmentPlan) Terminal() bool {
	switch p.Status {
	case StatusCompleted, StatusDiscontinued, StatusTransferred:
		return true
	}
	return false
}

// Editable reports whether the plan's descriptive fields may still change.
// Once accepted, fee and scope are locked.
func (p *TreatmentPlan) Editable() bool {
	return p.Status == StatusDraft || p.Status == StatusPresented
}

// Phase maps to the treatment_plan_phase table. Phases are ordered by Seq
// within a plan (e.g. "1: expansion", "2: full fixed appliances").
type Phase struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PlanID          uuid.UUID `db:"plan_id" json:"plan_id"`
	Seq             int       `db:"seq" json:"seq"`
	Description     string    `db:"description" json:"description"`
	Appliance       *string   `db:"appliance" json:"appliance,omitempty"`
	PlannedVisits   int       `db:"planned_visits" json:"planned_visits"`
	CompletedVisits int       `db:"completed_visits" json:"completed_visits"`
	Status          string    `db:"status" json:"status"`
}

// Progress summarizes how far along an active plan is.
type Progress struct {
	PlanID          uuid.UUID `json:"plan_id"`
	TotalPhases     int       `json:"total_phases"`
	CompletePhases  int       `json:"complete_phases"`
	PhasePercent    float64   `json:"phase_percent"`
	PlannedVisits   int       `json:"planned_visits"`
	CompletedVisits int       `json:"completed_visits"`
	VisitPercent    float64   `json:"visit_percent"`
}
