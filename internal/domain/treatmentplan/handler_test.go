package treatmentplan

import (
	"encoding/json"
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

func seedPlan(t *testing.T, h *Handler) *TreatmentPlan {
	t.Helper()
	p := &TreatmentPlan{PatientID: uuid.New(), ProviderID: uuid.New(), Title: "Comprehensive ortho", TotalFeeCents: 550000}
	if err := h.svc.Create(nil, p); err != nil { t.Fatalf("seed plan: %v", err) }
	return p
}

func TestHandler_Create(t *testing.T) {
	h, e := newTestHandler()
	body := `{"patient_id":"` + uuid.New().String() + `","provider_id":"` + uuid.New().String() + `","title":"Phase I ortho","total_fee_cents":320000}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Create(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }

	var got TreatmentPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil { t.Fatalf("bad response body: %v", err) }
	if got.Status != StatusDraft { t.Errorf("expected DRAFT status in response, got %s", got.Status) }
}

func TestHandler_Create_Invalid(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"No patient"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Create(c); err == nil { t.Error("expected error") }
}

func TestHandler_Present(t *testing.T) {
	h, e := newTestHandler()
	p := seedPlan(t, h)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(p.ID.String())
	if err := h.transition(h.svc.Present)(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusOK { t.Errorf("expected 200, got %d", rec.Code) }

	var got TreatmentPlan
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusPresented { t.Errorf("expected PRESENTED, got %s", got.Status) }
}

func TestHandler_Accept_WrongStatus(t *testing.T) {
	h, e := newTestHandler()
	p := seedPlan(t, h)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(p.ID.String())
	err := h.transition(h.svc.Accept)(c)
	if err == nil { t.Fatal("expected error accepting a DRAFT plan") }
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict { t.Errorf("expected 409, got %v", err) }
}

func TestHandler_Hold_MissingReason(t *testing.T) {
	h, e := newTestHandler()
	p := seedPlan(t, h)
	advanceTo(t, h.svc, p, StatusActive)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(p.ID.String())
	err := h.Hold(c)
	if err == nil { t.Fatal("expected error for missing reason") }
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest { t.Errorf("expected 400, got %v", err) }
}

func TestHandler_Discontinue(t *testing.T) {
	h, e := newTestHandler()
	p := seedPlan(t, h)
	advanceTo(t, h.svc, p, StatusPresented)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"declined financing"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(p.ID.String())
	if err := h.Discontinue(c); err != nil { t.Fatalf("unexpected error: %v", err) }

	var got TreatmentPlan
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusDiscontinued { t.Errorf("expected DISCONTINUED, got %s", got.Status) }
	if got.DiscontinueReason == nil || *got.DiscontinueReason != "declined financing" {
		t.Error("expected discontinue reason in response")
	}
}

func TestHandler_Transition_InvalidID(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues("not-a-uuid")
	err := h.transition(h.svc.Present)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest { t.Errorf("expected 400, got %v", err) }
}

func TestHandler_Transition_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(uuid.New().String())
	err := h.transition(h.svc.Present)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound { t.Errorf("expected 404, got %v", err) }
}

func TestHandler_AddPhaseAndProgress(t *testing.T) {
	h, e := newTestHandler()
	p := seedPlan(t, h)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"description":"Banding","planned_visits":2}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(p.ID.String())
	if err := h.AddPhase(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }

	rec2 := httptest.NewRecorder()
	c2 := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec2)
	c2.SetParamNames("id"); c2.SetParamValues(p.ID.String())
	if err := h.Progress(c2); err != nil { t.Fatalf("unexpected error: %v", err) }

	var pr Progress
	if err := json.Unmarshal(rec2.Body.Bytes(), &pr); err != nil { t.Fatalf("bad response body: %v", err) }
	if pr.TotalPhases != 1 || pr.CompletePhases != 0 { t.Errorf("unexpected progress: %+v", pr) }
}

func TestHandler_Update(t *testing.T) {
	h, e := newTestHandler()
	p := seedPlan(t, h)
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"title":"Revised plan","total_fee_cents":500000}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(p.ID.String())
	if err := h.Update(c); err != nil { t.Fatalf("unexpected error: %v", err) }

	var got TreatmentPlan
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Title != "Revised plan" { t.Errorf("expected updated title, got %q", got.Title) }
	if got.TotalFeeCents != 500000 { t.Errorf("expected fee 500000, got %d", got.TotalFeeCents) }
}

func TestHandler_Update_OmittedFeeUnchanged(t *testing.T) {
	h, e := newTestHandler()
	p := seedPlan(t, h)
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"title":"Renamed plan"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(p.ID.String())
	if err := h.Update(c); err != nil { t.Fatalf("unexpected error: %v", err) }

	var got TreatmentPlan
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Title != "Renamed plan" { t.Errorf("expected updated title, got %q", got.Title) }
	if got.TotalFeeCents != 550000 { t.Errorf("fee changed by title-only update: got %d", got.TotalFeeCents) }
}

func TestHandler_Update_NegativeFee(t *testing.T) {
	h, e := newTestHandler()
	p := seedPlan(t, h)
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"total_fee_cents":-100}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(p.ID.String())
	err := h.Update(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest { t.Errorf("expected 400, got %v", err) }
}

func TestHandler_List_InvalidStatus(t *testing.T) {
	h, e := newTestHandler()
	seedPlan(t, h)
	req := httptest.NewRequest(http.MethodGet, "/?status=bogus", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h.List(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest { t.Errorf("expected 400, got %v", err) }
}

func TestHandler_List(t *testing.T) {
	h, e := newTestHandler()
	p := seedPlan(t, h)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.List(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusOK { t.Errorf("expected 200, got %d", rec.Code) }
	if !strings.Contains(rec.Body.String(), p.ID.String()) { t.Error("expected plan in response") }
}

func TestHandler_ListByPatient(t *testing.T) {
	h, e := newTestHandler()
	p := seedPlan(t, h)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("patientId"); c.SetParamValues(p.PatientID.String())
	if err := h.ListByPatient(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusOK { t.Errorf("expected 200, got %d", rec.Code) }
	if !strings.Contains(rec.Body.String(), p.ID.String()) { t.Error("expected plan in response") }
}
