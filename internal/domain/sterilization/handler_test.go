package sterilization

import (
	"context"
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

func TestHandler_StartCycle(t *testing.T) {
	h, e := newTestHandler()
	body := `{"autoclave_name":"Autoclave A","type":"prevac","operator_id":"` + uuid.New().String() + `","bi_required":true}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.StartCycle(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }

	var got Cycle
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != CycleRunning || got.CycleNumber != 1 {
		t.Errorf("unexpected cycle: %+v", got)
	}
}

func TestHandler_StartCycle_InvalidType(t *testing.T) {
	h, e := newTestHandler()
	body := `{"autoclave_name":"A","type":"microwave","operator_id":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.StartCycle(e.NewContext(req, rec)); err == nil { t.Error("expected error") }
}

func TestHandler_CompleteCycle(t *testing.T) {
	h, e := newTestHandler()
	cy := startCycle(t, h.svc, false)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mechanical_pass":true,"chemical_pass":false}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(cy.ID.String())
	if err := h.CompleteCycle(c); err != nil { t.Fatalf("unexpected error: %v", err) }

	var got Cycle
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != CycleFailed { t.Errorf("expected FAILED with failing chemical indicator, got %s", got.Status) }
}

func TestHandler_CreatePackages(t *testing.T) {
	h, e := newTestHandler()
	cy := passedCycle(t, h.svc, false)

	body := `{"packages":[{"contents_label":"Exam kit","instrument_count":4},{"contents_label":"Surgical kit","instrument_count":9}]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(cy.ID.String())
	if err := h.CreatePackages(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }

	var got []*Package
	json.Unmarshal(rec.Body.Bytes(), &got)
	if len(got) != 2 { t.Errorf("expected 2 packages, got %d", len(got)) }
}

func TestHandler_CreatePackages_RunningCycle(t *testing.T) {
	h, e := newTestHandler()
	cy := startCycle(t, h.svc, false)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"packages":[{"contents_label":"Kit","instrument_count":1}]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(cy.ID.String())
	err := h.CreatePackages(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict { t.Errorf("expected 409, got %v", err) }
}

func TestHandler_RecordBI(t *testing.T) {
	h, e := newTestHandler()
	cy := passedCycle(t, h.svc, true)

	body := `{"result":"fail","incubator_slot":"slot-2","technician_id":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(cy.ID.String())
	if err := h.RecordBI(c); err != nil { t.Fatalf("unexpected error: %v", err) }

	got, _ := h.svc.GetCycle(context.Background(), cy.ID)
	if got.Status != CycleFailed { t.Errorf("expected cycle FAILED after BI fail, got %s", got.Status) }
}

func TestHandler_Dispense_MissingPatient(t *testing.T) {
	h, e := newTestHandler()
	cy := passedCycle(t, h.svc, false)
	pkgs, _ := h.svc.CreatePackages(context.Background(), cy.ID, []PackageSpec{{ContentsLabel: "Kit", InstrumentCount: 1}})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(pkgs[0].ID.String())
	err := h.Dispense(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest { t.Errorf("expected 400, got %v", err) }
}

func TestHandler_IssueLabel(t *testing.T) {
	h, e := newTestHandler()
	cy := passedCycle(t, h.svc, false)
	pkgs, _ := h.svc.CreatePackages(context.Background(), cy.ID, []PackageSpec{{ContentsLabel: "Kit", InstrumentCount: 1}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(pkgs[0].ID.String())
	if err := h.IssueLabel(c); err != nil { t.Fatalf("unexpected error: %v", err) }

	var got Label
	json.Unmarshal(rec.Body.Bytes(), &got)
	if !strings.HasPrefix(got.QRData, "STZ|v1|") { t.Errorf("unexpected QR payload %q", got.QRData) }
}

func TestHandler_LabelPNG(t *testing.T) {
	h, e := newTestHandler()
	cy := passedCycle(t, h.svc, false)
	pkgs, _ := h.svc.CreatePackages(context.Background(), cy.ID, []PackageSpec{{ContentsLabel: "Kit", InstrumentCount: 1}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(pkgs[0].ID.String())
	if err := h.LabelPNG(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Errorf("expected image/png, got %s", ct)
	}
}

func TestHandler_DailyCompliance_BadDate(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?date=yesterday", nil)
	rec := httptest.NewRecorder()
	err := h.DailyCompliance(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest { t.Errorf("expected 400, got %v", err) }
}

func TestHandler_DailyCompliance(t *testing.T) {
	h, e := newTestHandler()
	passedCycle(t, h.svc, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := h.DailyCompliance(e.NewContext(req, rec)); err != nil { t.Fatalf("unexpected error: %v", err) }

	var sum ComplianceSummary
	json.Unmarshal(rec.Body.Bytes(), &sum)
	if sum.CyclesRun != 1 || sum.CyclesPassed != 1 { t.Errorf("unexpected summary: %+v", sum) }
}
