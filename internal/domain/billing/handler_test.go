package billing

import (
	"context"
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

func TestHandler_Create(t *testing.T) {
	h, e := newTestHandler()
	body := fmt.Sprintf(`{"patient_id":"%s","items":[{"code":"D0120","description":"Periodic exam","quantity":1,"unit_price_cents":7500}]}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Create(e.NewContext(req, rec)); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }

	var got Invoice
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusDraft { t.Errorf("expected DRAFT, got %s", got.Status) }
}

func TestHandler_Issue(t *testing.T) {
	h, e := newTestHandler()
	inv := draftInvoice(t, h.svc)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(inv.ID.String())
	if err := h.Issue(c); err != nil { t.Fatalf("unexpected error: %v", err) }

	var got Invoice
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusIssued { t.Errorf("expected ISSUED, got %s", got.Status) }
}

func TestHandler_RecordPayment_Overpayment(t *testing.T) {
	h, e := newTestHandler()
	inv := issuedInvoice(t, h.svc)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount_cents":99999999,"method":"card"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(inv.ID.String())
	err := h.RecordPayment(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict { t.Errorf("expected 409, got %v", err) }
}

func TestHandler_RecordPayment(t *testing.T) {
	h, e := newTestHandler()
	inv := issuedInvoice(t, h.svc)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount_cents":519000,"method":"card","reference":"AUTH-123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(inv.ID.String())
	if err := h.RecordPayment(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }

	got, _ := h.svc.Get(context.Background(), inv.ID)
	if got.Status != StatusPaid { t.Errorf("expected PAID, got %s", got.Status) }
}

func TestHandler_Balance(t *testing.T) {
	h, e := newTestHandler()
	inv := issuedInvoice(t, h.svc)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(inv.ID.String())
	if err := h.Balance(c); err != nil { t.Fatalf("unexpected error: %v", err) }

	var bal Balance
	json.Unmarshal(rec.Body.Bytes(), &bal)
	if bal.TotalCents != 519000 || bal.BalanceCents != 519000 {
		t.Errorf("unexpected balance: %+v", bal)
	}
}

func TestHandler_Void_Paid(t *testing.T) {
	h, e := newTestHandler()
	inv := issuedInvoice(t, h.svc)
	h.svc.RecordPayment(context.Background(), inv.ID, 1000, "cash", nil)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(inv.ID.String())
	err := h.Void(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict { t.Errorf("expected 409, got %v", err) }
}

func TestHandler_Revenue_BadPeriod(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?from=2026&to=2026-02-01", nil)
	rec := httptest.NewRecorder()
	err := h.Revenue(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest { t.Errorf("expected 400, got %v", err) }
}

func TestHandler_Revenue(t *testing.T) {
	h, e := newTestHandler()
	issuedInvoice(t, h.svc)
	req := httptest.NewRequest(http.MethodGet, "/?from=2026-01-01&to=2027-01-01", nil)
	rec := httptest.NewRecorder()
	if err := h.Revenue(e.NewContext(req, rec)); err != nil { t.Fatalf("unexpected error: %v", err) }

	var sum RevenueSummary
	json.Unmarshal(rec.Body.Bytes(), &sum)
	if len(sum.ByStatus) == 0 { t.Error("expected status totals") }
}
