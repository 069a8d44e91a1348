package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"memoria-server/internal/domain"

	"github.com/gorilla/mux"
)

func TestSubmitCondolenceHandler(t *testing.T) {
	h := NewCondolenceHandler(NewMockCondolenceService(), NewMockHandlerLogger())

	body := strings.NewReader(`{"author_name":"Jane","message":"With sympathy"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/funerals/f1/condolences", body)
	req = mux.SetURLVars(req, map[string]string{"funeralId": "f1"})
	rr := httptest.NewRecorder()

	h.SubmitCondolence(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"status":"pending"`) {
		t.Fatalf("expected pending status in response: %s", rr.Body.String())
	}
}

func TestSubmitCondolenceHandler_InvalidBody(t *testing.T) {
	h := NewCondolenceHandler(NewMockCondolenceService(), NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/funerals/f1/condolences", strings.NewReader("{broken"))
	req = mux.SetURLVars(req, map[string]string{"funeralId": "f1"})
	rr := httptest.NewRecorder()

	h.SubmitCondolence(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestModerateCondolenceHandler(t *testing.T) {
	svc := NewMockCondolenceService()
	h := NewCondolenceHandler(svc, NewMockHandlerLogger())

	body := strings.NewReader(`{"status":"approved"}`)
	req := authedRequest(httptest.NewRequest(http.MethodPut, "/api/v1/admin/condolences/c1/status", body))
	req = mux.SetURLVars(req, map[string]string{"id": "c1"})
	rr := httptest.NewRecorder()

	h.ModerateCondolence(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestModerateCondolenceHandler_ServiceKeyMissing(t *testing.T) {
	svc := NewMockCondolenceService()
	svc.err = domain.ErrServiceKeyMissing
	h := NewCondolenceHandler(svc, NewMockHandlerLogger())

	body := strings.NewReader(`{"status":"approved"}`)
	req := authedRequest(httptest.NewRequest(http.MethodPut, "/api/v1/admin/condolences/c1/status", body))
	req = mux.SetURLVars(req, map[string]string{"id": "c1"})
	rr := httptest.NewRecorder()

	h.ModerateCondolence(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}
