package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"memoria-server/internal/domain"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := NewMockHandlerLogger()
	funeralService := NewMockFuneralService()
	funeralService.funerals["f1"] = &domain.Funeral{ID: "f1", DeceasedName: "John Smith", IsVisible: true}

	return NewRouter(
		NewFuneralHandler(funeralService, logger),
		NewBrochureHandler(NewMockBrochureService(), logger),
		NewCondolenceHandler(NewMockCondolenceService(), logger),
		NewDonationHandler(NewMockDonationService(), logger),
		&ViewerHandler{logger: logger},
		func(next http.Handler) http.Handler { return next },
	)
}

func TestNewRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestNewRouter_PublicFuneralRead(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/funerals/f1", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "John Smith") {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestNewRouter_ProtectedRouteRequiresAuth(t *testing.T) {
	logger := NewMockHandlerLogger()
	router := NewRouter(
		NewFuneralHandler(NewMockFuneralService(), logger),
		NewBrochureHandler(NewMockBrochureService(), logger),
		NewCondolenceHandler(NewMockCondolenceService(), logger),
		NewDonationHandler(NewMockDonationService(), logger),
		&ViewerHandler{logger: logger},
		AuthMiddleware(&mockSupabaseClient{}, logger),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/funerals", strings.NewReader(`{"deceased_name":"x"}`))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestNewRouter_UnknownMethod(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/funerals/f1", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
}
