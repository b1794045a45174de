// Package scheduling manages provider shifts and chairside appointments.
package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusBooked    = "booked"
	StatusCheckedIn = "checked_in"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Shift is a block of time a provider is available at a chair.
type Shift struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	Chair      string    `db:"chair" json:"chair"`
	StartAt    time.Time `db:"start_at" json:"start_at"`
	EndAt      time.Time `db:"end_at" json:"end_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Contains reports whether the interval [start, end) falls entirely
// within the shift.
func (s *Shift) Contains(start, end time.Time) bool {
	return !start.Before(s.StartAt) && !end.After(s.EndAt)
}

type Appointment struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	Chair      string    `db:"chair" json:"chair"`
	StartAt    time.Time `db:"start_at" json:"start_at"`
	EndAt      time.Time `db:"end_at" json:"end_at"`
	VisitType  string    `db:"visit_type" json:"visit_type"`
	Status     string    `db:"status" json:"status"`
	Note       *string   `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Blocking reports whether the appointment occupies its slot for overlap
// purposes. Cancelled and no-show appointments free the slot.
func (a *Appointment) Blocking() bool {
	return a.Status != StatusCancelled && a.Status != StatusNoShow
}

// DaySchedule is one provider's day: their shifts and the appointments
// booked into them.
type DaySchedule struct {
	ProviderID   uuid.UUID      `json:"provider_id"`
	Date         string         `json:"date"`
	Shifts       []*Shift       `json:"shifts"`
	Appointments []*Appointment `json:"appointments"`
}
