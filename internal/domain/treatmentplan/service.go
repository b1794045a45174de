package treatmentplan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventSink receives domain events for outbound delivery. It is optional;
// a nil sink disables event emission.
type EventSink interface {
	Emit(ctx context.Context, eventType, resourceType string, resourceID uuid.UUID)
}

type Service struct {
	plans  Repository
	events EventSink
}

func NewService(r Repository) *Service {
	return &Service{plans: r}
}

// SetEventSink attaches an optional event sink to the service.
func (s *Service) SetEventSink(es EventSink) {
	s.events = es
}

func (s *Service) emit(ctx context.Context, eventType string, id uuid.UUID) {
	if s.events != nil {
		s.events.Emit(ctx, eventType, "treatment_plan", id)
	}
}

var validStatuses = map[string]bool{
	StatusDraft: true, StatusPresented: true, StatusAccepted: true,
	StatusActive: true, StatusOnHold: true, StatusCompleted: true,
	StatusDiscontinued: true, StatusTransferred: true,
}

var validPhaseStatuses = map[string]bool{
	PhasePending: true, PhaseInProgress: true, PhaseComplete: true,
}

func (s *Service) Create(ctx context.Context, p *TreatmentPlan) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if p.TotalFeeCents < 0 {
		return fmt.Errorf("total_fee_cents must not be negative")
	}
	p.Status = StatusDraft
	return s.plans.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return s.plans.GetByID(ctx, id)
}

// Update changes descriptive fields. Nil pointers leave the stored value
// untouched. Allowed only while the plan is in DRAFT or PRESENTED; after
// acceptance the fee and scope are locked.
func (s *Service) Update(ctx context.Context, id uuid.UUID, title string, estimatedMonths *int, totalFeeCents *int64, notes *string) (*TreatmentPlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("treatment plan not found: %w", err)
	}
	if !p.Editable() {
		return nil, fmt.Errorf("plan in status %s can no longer be edited", p.Status)
	}
	if totalFeeCents != nil && *totalFeeCents < 0 {
		return nil, fmt.Errorf("total_fee_cents must not be negative")
	}
	if strings.TrimSpace(title) != "" {
		p.Title = title
	}
	if estimatedMonths != nil {
		p.EstimatedMonths = estimatedMonths
	}
	if totalFeeCents != nil {
		p.TotalFeeCents = *totalFeeCents
	}
	if notes != nil {
		p.Notes = notes
	}
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// transitionError names the status the plan would need to be in.
func transitionError(action, want, got string) error {
	return fmt.Errorf("cannot %s: plan must be %s, currently %s", action, want, got)
}

// Present moves DRAFT → PRESENTED and stamps presented_at.
func (s *Service) Present(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("treatment plan not found: %w", err)
	}
	if p.Status != StatusDraft {
		return nil, transitionError("present", StatusDraft, p.Status)
	}
	now := time.Now().UTC()
	p.Status = StatusPresented
	p.PresentedAt = &now
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	s.emit(ctx, "treatment_plan.presented", p.ID)
	return p, nil
}

// Accept moves PRESENTED → ACCEPTED and stamps accepted_at.
func (s *Service) Accept(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("treatment plan not found: %w", err)
	}
	if p.Status != StatusPresented {
		return nil, transitionError("accept", StatusPresented, p.Status)
	}
	if p.PresentedAt == nil {
		return nil, fmt.Errorf("cannot accept: plan was never presented")
	}
	now := time.Now().UTC()
	p.Status = StatusAccepted
	p.AcceptedAt = &now
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	s.emit(ctx, "treatment_plan.accepted", p.ID)
	return p, nil
}

// Activate moves ACCEPTED → ACTIVE and stamps started_at.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("treatment plan not found: %w", err)
	}
	if p.Status != StatusAccepted {
		return nil, transitionError("activate", StatusAccepted, p.Status)
	}
	now := time.Now().UTC()
	p.Status = StatusActive
	p.StartedAt = &now
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Complete moves ACTIVE → COMPLETED. All phases must be complete.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("treatment plan not found: %w", err)
	}
	if p.Status != StatusActive {
		return nil, transitionError("complete", StatusActive, p.Status)
	}
	phases, err := s.plans.GetPhases(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, ph := range phases {
		if ph.Status != PhaseComplete {
			return nil, fmt.Errorf("cannot complete: phase %d (%s) is %s", ph.Seq, ph.Description, ph.Status)
		}
	}
	now := time.Now().UTC()
	p.Status = StatusCompleted
	p.CompletedAt = &now
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	s.emit(ctx, "treatment_plan.completed", p.ID)
	return p, nil
}

// Hold moves ACTIVE → ON_HOLD with a required reason.
func (s *Service) Hold(ctx context.Context, id uuid.UUID, reason string) (*TreatmentPlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("treatment plan not found: %w", err)
	}
	if p.Status != StatusActive {
		return nil, transitionError("hold", StatusActive, p.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("hold reason is required")
	}
	p.Status = StatusOnHold
	p.HoldReason = &reason
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Resume moves ON_HOLD → ACTIVE and clears the hold reason.
func (s *Service) Resume(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("treatment plan not found: %w", err)
	}
	if p.Status != StatusOnHold {
		return nil, transitionError("resume", StatusOnHold, p.Status)
	}
	p.Status = StatusActive
	p.HoldReason = nil
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// sideExitAllowed covers DISCONTINUED and TRANSFERRED, reachable from
// PRESENTED, ACCEPTED, and ACTIVE.
func sideExitAllowed(status string) bool {
	switch status {
	case StatusPresented, StatusAccepted, StatusActive:
		return true
	}
	return false
}

// Discontinue ends treatment early with a required reason.
func (s *Service) Discontinue(ctx context.Context, id uuid.UUID, reason string) (*TreatmentPlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("treatment plan not found: %w", err)
	}
	if !sideExitAllowed(p.Status) {
		return nil, transitionError("discontinue", "PRESENTED, ACCEPTED or ACTIVE", p.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("discontinue reason is required")
	}
	p.Status = StatusDiscontinued
	p.DiscontinueReason = &reason
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Transfer records that the patient moved to another practice.
func (s *Service) Transfer(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("treatment plan not found: %w", err)
	}
	if !sideExitAllowed(p.Status) {
		return nil, transitionError("transfer", "PRESENTED, ACCEPTED or ACTIVE", p.Status)
	}
	p.Status = StatusTransferred
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// -- Phases --

func (s *Service) AddPhase(ctx context.Context, ph *Phase) error {
	if ph.PlanID == uuid.Nil {
		return fmt.Errorf("plan_id is required")
	}
	p, err := s.plans.GetByID(ctx, ph.PlanID)
	if err != nil {
		return fmt.Errorf("treatment plan not found: %w", err)
	}
	if p.Terminal() {
		return fmt.Errorf("cannot add phase to %s plan", p.Status)
	}
	if strings.TrimSpace(ph.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if ph.PlannedVisits < 0 {
		return fmt.Errorf("planned_visits must not be negative")
	}
	if ph.Status == "" {
		ph.Status = PhasePending
	}
	if !validPhaseStatuses[ph.Status] {
		return fmt.Errorf("invalid phase status: %s", ph.Status)
	}
	if ph.Seq == 0 {
		existing, err := s.plans.GetPhases(ctx, ph.PlanID)
		if err != nil {
			return err
		}
		ph.Seq = len(existing) + 1
	}
	return s.plans.AddPhase(ctx, ph)
}

func (s *Service) GetPhases(ctx context.Context, planID uuid.UUID) ([]*Phase, error) {
	return s.plans.GetPhases(ctx, planID)
}

func (s *Service) UpdatePhase(ctx context.Context, ph *Phase) error {
	if !validPhaseStatuses[ph.Status] {
		return fmt.Errorf("invalid phase status: %s", ph.Status)
	}
	if ph.CompletedVisits < 0 || (ph.PlannedVisits > 0 && ph.CompletedVisits > ph.PlannedVisits) {
		return fmt.Errorf("completed_visits out of range")
	}
	return s.plans.UpdatePhase(ctx, ph)
}

// Progress computes the fraction of complete phases and visits for a plan.
func (s *Service) Progress(ctx context.Context, planID uuid.UUID) (*Progress, error) {
	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		return nil, fmt.Errorf("treatment plan not found: %w", err)
	}
	phases, err := s.plans.GetPhases(ctx, planID)
	if err != nil {
		return nil, err
	}

	pr := &Progress{PlanID: planID, TotalPhases: len(phases)}
	for _, ph := range phases {
		if ph.Status == PhaseComplete {
			pr.CompletePhases++
		}
		pr.PlannedVisits += ph.PlannedVisits
		pr.CompletedVisits += ph.CompletedVisits
	}
	if pr.TotalPhases > 0 {
		pr.PhasePercent = float64(pr.CompletePhases) / float64(pr.TotalPhases) * 100
	}
	if pr.PlannedVisits > 0 {
		pr.VisitPercent = float64(pr.CompletedVisits) / float64(pr.PlannedVisits) * 100
	}
	return pr, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*TreatmentPlan, int, error) {
	return s.plans.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TreatmentPlan, int, error) {
	return s.plans.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*TreatmentPlan, int, error) {
	return s.plans.Search(ctx, params, limit, offset)
}
