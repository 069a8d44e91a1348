package handler

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"

	"memoria-server/internal/viewer"
)

type stubRasterizer struct {
	pages   int
	failOn  map[int]bool
	lastURL string
	closed  bool
}

func (s *stubRasterizer) PageCount() int {
	return s.pages
}

func (s *stubRasterizer) PageSize(page int) (float64, float64, error) {
	return 612, 792, nil
}

func (s *stubRasterizer) Rasterize(ctx context.Context, page int, scale float64) (image.Image, error) {
	if s.failOn[page] {
		return nil, errors.New("corrupt page")
	}
	return image.NewRGBA(image.Rect(0, 0, int(612*scale), int(792*scale))), nil
}

func (s *stubRasterizer) Close() error {
	s.closed = true
	return nil
}

func newStubViewerHandler(raster *stubRasterizer, openErr error) *ViewerHandler {
	return &ViewerHandler{
		open: func(ctx context.Context, url string) (viewer.PageRasterizer, error) {
			if openErr != nil {
				return nil, openErr
			}
			raster.lastURL = url
			return raster, nil
		},
		logger: NewMockHandlerLogger(),
	}
}

func TestGetDocumentInfo(t *testing.T) {
	raster := &stubRasterizer{pages: 12}
	h := newStubViewerHandler(raster, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewer/info?url=https://cdn.example.com/a.pdf", nil)
	rr := httptest.NewRecorder()

	h.GetDocumentInfo(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var info viewer.DocumentInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &info); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if info.PageCount != 12 {
		t.Fatalf("expected 12 pages, got %d", info.PageCount)
	}
	if !raster.closed {
		t.Fatal("expected rasterizer closed after request")
	}
}

func TestGetDocumentInfo_MissingURL(t *testing.T) {
	h := newStubViewerHandler(&stubRasterizer{pages: 1}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewer/info", nil)
	rr := httptest.NewRecorder()

	h.GetDocumentInfo(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestGetDocumentInfo_LoadFailure(t *testing.T) {
	loadErr := &viewer.LoadError{URL: "https://cdn.example.com/gone.pdf", Cause: errors.New("status 404")}
	h := newStubViewerHandler(nil, loadErr)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewer/info?url=https://cdn.example.com/gone.pdf", nil)
	rr := httptest.NewRecorder()

	h.GetDocumentInfo(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, rr.Code)
	}
}

func TestRenderPage_PNG(t *testing.T) {
	raster := &stubRasterizer{pages: 3}
	h := newStubViewerHandler(raster, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewer/page?url=x&page=2&scale=1.5", nil)
	rr := httptest.NewRecorder()

	h.RenderPage(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %s", ct)
	}
	// PNG magic bytes
	if body := rr.Body.Bytes(); len(body) < 8 || string(body[1:4]) != "PNG" {
		t.Fatal("expected PNG payload")
	}
}

func TestRenderPage_OutOfRange(t *testing.T) {
	h := newStubViewerHandler(&stubRasterizer{pages: 3}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewer/page?url=x&page=4", nil)
	rr := httptest.NewRecorder()

	h.RenderPage(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestRenderPage_FitWithoutDimensions(t *testing.T) {
	h := newStubViewerHandler(&stubRasterizer{pages: 3}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewer/page?url=x&page=1&fit=contain", nil)
	rr := httptest.NewRecorder()

	h.RenderPage(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestRenderPage_InvalidParams(t *testing.T) {
	h := newStubViewerHandler(&stubRasterizer{pages: 3}, nil)

	cases := []struct {
		name string
		url  string
	}{
		{"missing page", "/api/v1/viewer/page?url=x"},
		{"bad scale", "/api/v1/viewer/page?url=x&page=1&scale=-2"},
		{"bad rotation", "/api/v1/viewer/page?url=x&page=1&rotation=45"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rr := httptest.NewRecorder()

			h.RenderPage(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
			}
		})
	}
}

func TestGetSpread(t *testing.T) {
	h := newStubViewerHandler(&stubRasterizer{pages: 10}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewer/spread?url=x&page=4", nil)
	rr := httptest.NewRecorder()

	h.GetSpread(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var spread viewer.Spread
	if err := json.Unmarshal(rr.Body.Bytes(), &spread); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if spread.Left != 4 || spread.Right != 5 {
		t.Fatalf("expected spread 4/5, got %d/%d", spread.Left, spread.Right)
	}
}

func TestGetThumbnails_PlaceholderOnFailure(t *testing.T) {
	raster := &stubRasterizer{pages: 3, failOn: map[int]bool{2: true}}
	h := newStubViewerHandler(raster, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewer/thumbnails?url=x", nil)
	rr := httptest.NewRecorder()

	h.GetThumbnails(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var out []struct {
		Page        int    `json:"page"`
		Image       string `json:"image"`
		Placeholder bool   `json:"placeholder"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 thumbnails, got %d", len(out))
	}
	if !out[1].Placeholder || out[1].Image != "" {
		t.Fatalf("expected page 2 placeholder, got %+v", out[1])
	}
	if out[0].Placeholder || out[0].Image == "" {
		t.Fatalf("expected page 1 rendered, got %+v", out[0])
	}
}
