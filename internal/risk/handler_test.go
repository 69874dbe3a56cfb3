package risk

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
	"github.com/rs/zerolog"
)

type mockDispatcher struct {
	dispatched []EscalationLevel
	failNext   bool
}

func (m *mockDispatcher) DispatchDecision(_ context.Context, _ *CompositeRiskAssessment, d *EscalationDecision) error {
	if m.failNext {
		m.failNext = false
		return fmt.Errorf("gateway down")
	}
	m.dispatched = append(m.dispatched, d.Level)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *mockAssessmentRepo, *mockDispatcher, *echo.Echo) {
	t.Helper()
	svc, repo := newTestService(t)
	disp := &mockDispatcher{}
	h := NewHandler(svc, disp, zerolog.Nop())
	return h, repo, disp, echo.New()
}

func assessBody(userID uuid.UUID) string {
	return `{
		"user_id": "` + userID.String() + `",
		"timestamp": "2026-05-01T09:00:00Z",
		"demographics": {"age": 58, "gender": "male", "smoker": true},
		"cardiovascular": {"present": true, "chest_pain": true, "shortness_of_breath_at_rest": true},
		"diabetes": {"present": true},
		"mental_health": {"present": true},
		"respiratory": {"present": true}
	}`
}

func postJSON(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandlerAssess_ReturnsDecision(t *testing.T) {
	h, repo, _, e := newTestHandler(t)
	userID := uuid.New()
	c, rec := postJSON(e, assessBody(userID))

	if err := h.Assess(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result AssessmentResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if result.Decision.Level != EscalationImmediate {
		t.Errorf("expected immediate decision, got %s", result.Decision.Level)
	}
	if len(repo.byUser[userID]) != 1 {
		t.Error("expected assessment persisted")
	}
}

func TestHandlerAssess_DispatchesEscalation(t *testing.T) {
	h, _, disp, e := newTestHandler(t)
	c, _ := postJSON(e, assessBody(uuid.New()))
	if err := h.Assess(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(disp.dispatched) != 1 || disp.dispatched[0] != EscalationImmediate {
		t.Errorf("expected immediate dispatch, got %v", disp.dispatched)
	}
}

func TestHandlerAssess_DispatchFailureStillResponds(t *testing.T) {
	h, _, disp, e := newTestHandler(t)
	disp.failNext = true
	c, rec := postJSON(e, assessBody(uuid.New()))
	if err := h.Assess(c); err != nil {
		t.Fatalf("delivery failure must not fail the request: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandlerAssess_MissingUserID(t *testing.T) {
	h, _, _, e := newTestHandler(t)
	c, _ := postJSON(e, `{"demographics": {"age": 40}}`)
	err := h.Assess(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandlerEmergencyCheck_NothingPersisted(t *testing.T) {
	h, repo, _, e := newTestHandler(t)
	userID := uuid.New()
	c, rec := postJSON(e, assessBody(userID))
	if err := h.EmergencyCheck(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(repo.byUser[userID]) != 0 {
		t.Error("emergency check must not persist")
	}
	var body struct {
		Alerts   []EmergencyAlert   `json:"alerts"`
		Decision EscalationDecision `json:"decision"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if alertFor(body.Alerts, ConditionAcuteCoronarySyndrome) == nil {
		t.Errorf("expected ACS alert, got %v", body.Alerts)
	}
}

func TestHandlerTemporal_InvalidUserID(t *testing.T) {
	h, _, _, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues("not-a-uuid")
	err := h.Temporal(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandlerSummary(t *testing.T) {
	h, _, _, e := newTestHandler(t)
	userID := uuid.New()
	c, _ := postJSON(e, assessBody(userID))
	if err := h.Assess(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues(userID.String())
	if err := h.Summary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var s UserSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if s.Latest == nil {
		t.Error("expected latest assessment in summary")
	}
}

func TestHandlerListAssessments_Paginated(t *testing.T) {
	h, _, _, e := newTestHandler(t)
	userID := uuid.New()
	c, _ := postJSON(e, assessBody(userID))
	if err := h.Assess(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	rec := httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues(userID.String())
	if err := h.ListAssessments(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var page struct {
		Total int `json:"total"`
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if page.Total != 1 || page.Limit != 10 {
		t.Errorf("expected total 1 limit 10, got %+v", page)
	}
}
