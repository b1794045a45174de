package scheduling

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func TestHandler_CreateShift(t *testing.T) {
	h, e := newTestHandler()
	body := fmt.Sprintf(`{"provider_id":"%s","chair":"1","start_at":"2026-03-10T08:00:00Z","end_at":"2026-03-10T12:00:00Z"}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.CreateShift(e.NewContext(req, rec)); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }
}

func TestHandler_Book(t *testing.T) {
	h, e := newTestHandler()
	provider := uuid.New()
	addShift(t, h.svc, provider, "1", at(8, 0), at(12, 0))

	body := fmt.Sprintf(`{"patient_id":"%s","provider_id":"%s","chair":"1","start_at":"2026-03-10T09:00:00Z","end_at":"2026-03-10T09:30:00Z","visit_type":"exam"}`, uuid.New(), provider)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Book(e.NewContext(req, rec)); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }

	var got Appointment
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusBooked { t.Errorf("expected booked, got %s", got.Status) }
}

func TestHandler_Book_Conflict(t *testing.T) {
	h, e := newTestHandler()
	provider := uuid.New()
	addShift(t, h.svc, provider, "1", at(8, 0), at(12, 0))
	book(t, h.svc, provider, "1", at(9, 0), at(9, 30))

	body := fmt.Sprintf(`{"patient_id":"%s","provider_id":"%s","chair":"1","start_at":"2026-03-10T09:15:00Z","end_at":"2026-03-10T09:45:00Z","visit_type":"exam"}`, uuid.New(), provider)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	err := h.Book(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict { t.Errorf("expected 409, got %v", err) }
}

func TestHandler_StatusMove(t *testing.T) {
	h, e := newTestHandler()
	provider := uuid.New()
	addShift(t, h.svc, provider, "1", at(8, 0), at(12, 0))
	a := book(t, h.svc, provider, "1", at(9, 0), at(9, 30))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(a.ID.String())
	if err := h.statusMove(h.svc.CheckIn)(c); err != nil { t.Fatalf("unexpected error: %v", err) }

	var got Appointment
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusCheckedIn { t.Errorf("expected checked_in, got %s", got.Status) }
}

func TestHandler_DaySchedule(t *testing.T) {
	h, e := newTestHandler()
	provider := uuid.New()
	addShift(t, h.svc, provider, "1", at(8, 0), at(12, 0))
	book(t, h.svc, provider, "1", at(9, 0), at(9, 30))

	req := httptest.NewRequest(http.MethodGet, "/?date=2026-03-10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("providerId"); c.SetParamValues(provider.String())
	if err := h.DaySchedule(c); err != nil { t.Fatalf("unexpected error: %v", err) }

	var got DaySchedule
	json.Unmarshal(rec.Body.Bytes(), &got)
	if len(got.Shifts) != 1 || len(got.Appointments) != 1 { t.Errorf("unexpected schedule: %+v", got) }
}

func TestHandler_ListShifts_BadRange(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?from=notatime&to=2026-03-11T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	err := h.ListShifts(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest { t.Errorf("expected 400, got %v", err) }
}
