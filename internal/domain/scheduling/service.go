package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
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

func validInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("start and end are required")
	}
	if !end.After(start) {
		return fmt.Errorf("end must be after start")
	}
	return nil
}

func (s *Service) CreateShift(ctx context.Context, sh *Shift) error {
	if sh.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	if strings.TrimSpace(sh.Chair) == "" {
		return fmt.Errorf("chair is required")
	}
	if err := validInterval(sh.StartAt, sh.EndAt); err != nil {
		return err
	}
	return s.repo.CreateShift(ctx, sh)
}

func (s *Service) ListShifts(ctx context.Context, providerID *uuid.UUID, from, to time.Time) ([]*Shift, error) {
	if err := validInterval(from, to); err != nil {
		return nil, err
	}
	return s.repo.ListShifts(ctx, providerID, from, to)
}

// Book schedules an appointment. The slot must fall inside one of the
// provider's shifts and must not collide with a blocking appointment on
// the same provider or chair.
func (s *Service) Book(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	if strings.TrimSpace(a.Chair) == "" {
		return fmt.Errorf("chair is required")
	}
	if strings.TrimSpace(a.VisitType) == "" {
		return fmt.Errorf("visit_type is required")
	}
	if err := validInterval(a.StartAt, a.EndAt); err != nil {
		return err
	}
	if err := s.checkSlot(ctx, a.ProviderID, a.Chair, a.StartAt, a.EndAt, uuid.Nil); err != nil {
		return err
	}
	a.Status = StatusBooked
	if err := s.repo.CreateAppointment(ctx, a); err != nil {
		return err
	}
	if s.events != nil {
		s.events.Emit(ctx, "appointment.booked", "appointment", a.ID)
	}
	return nil
}

func (s *Service) checkSlot(ctx context.Context, providerID uuid.UUID, chair string, start, end time.Time, excludeID uuid.UUID) error {
	shifts, err := s.repo.ListShifts(ctx, &providerID, start, end)
	if err != nil {
		return err
	}
	inside := false
	for _, sh := range shifts {
		if sh.Contains(start, end) {
			inside = true
			break
		}
	}
	if !inside {
		return fmt.Errorf("slot is outside the provider's shifts")
	}

	overlaps, err := s.repo.ListOverlapping(ctx, providerID, chair, start, end, excludeID)
	if err != nil {
		return err
	}
	if len(overlaps) > 0 {
		return fmt.Errorf("slot conflicts with an existing appointment")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

// Reschedule moves a booked appointment to a new slot, re-running the
// shift and overlap checks with the appointment itself excluded.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, start, end time.Time, chair string) (*Appointment, error) {
	a, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("appointment not found: %w", err)
	}
	if a.Status != StatusBooked {
		return nil, fmt.Errorf("cannot reschedule: appointment is %s, must be %s", a.Status, StatusBooked)
	}
	if chair == "" {
		chair = a.Chair
	}
	if err := validInterval(start, end); err != nil {
		return nil, err
	}
	if err := s.checkSlot(ctx, a.ProviderID, chair, start, end, a.ID); err != nil {
		return nil, err
	}
	a.StartAt = start
	a.EndAt = end
	a.Chair = chair
	if err := s.repo.UpdateAppointment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) move(ctx context.Context, id uuid.UUID, action, to string, from ...string) (*Appointment, error) {
	a, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("appointment not found: %w", err)
	}
	ok := false
	for _, f := range from {
		if a.Status == f {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("cannot %s: appointment is %s, must be %s", action, a.Status, strings.Join(from, " or "))
	}
	a.Status = to
	if err := s.repo.UpdateAppointment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.move(ctx, id, "cancel", StatusCancelled, StatusBooked, StatusCheckedIn)
}

func (s *Service) CheckIn(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.move(ctx, id, "check in", StatusCheckedIn, StatusBooked)
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.move(ctx, id, "complete", StatusCompleted, StatusCheckedIn)
}

func (s *Service) NoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.move(ctx, id, "mark no-show", StatusNoShow, StatusBooked)
}

// DaySchedule returns a provider's shifts and appointments for one day.
func (s *Service) DaySchedule(ctx context.Context, providerID uuid.UUID, day time.Time) (*DaySchedule, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	shifts, err := s.repo.ListShifts(ctx, &providerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	appts, err := s.repo.ListForProviderDay(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return &DaySchedule{
		ProviderID:   providerID,
		Date:         dayStart.Format("2006-01-02"),
		Shifts:       shifts,
		Appointments: appts,
	}, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
