package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateShift(ctx context.Context, s *Shift) error
	// ListShifts returns shifts overlapping [from, to); providerID narrows
	// to one provider when non-nil.
	ListShifts(ctx context.Context, providerID *uuid.UUID, from, to time.Time) ([]*Shift, error)

	CreateAppointment(ctx context.Context, a *Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateAppointment(ctx context.Context, a *Appointment) error
	// ListOverlapping returns blocking appointments that overlap
	// [start, end) and collide on provider or chair, excluding excludeID.
	ListOverlapping(ctx context.Context, providerID uuid.UUID, chair string, start, end time.Time, excludeID uuid.UUID) ([]*Appointment, error)
	ListForProviderDay(ctx context.Context, providerID uuid.UUID, dayStart, dayEnd time.Time) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}
