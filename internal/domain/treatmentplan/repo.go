package treatmentplan

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *TreatmentPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error)
	Update(ctx context.Context, p *TreatmentPlan) error
	List(ctx context.Context, limit, offset int) ([]*TreatmentPlan, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TreatmentPlan, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*TreatmentPlan, int, error)
	// Phases
	AddPhase(ctx context.Context, ph *Phase) error
	GetPhases(ctx context.Context, planID uuid.UUID) ([]*Phase, error)
	UpdatePhase(ctx context.Context, ph *Phase) error
}
