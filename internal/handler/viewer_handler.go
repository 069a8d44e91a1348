package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"
	"net/http"
	"strconv"

	"memoria-server/internal/domain"
	"memoria-server/internal/viewer"

	"github.com/google/uuid"
)

// documentOpener fetches and parses a remote PDF. Indirection keeps the
// handler testable without MuPDF.
type documentOpener func(ctx context.Context, url string) (viewer.PageRasterizer, error)

// ViewerHandler serves server-side page rendering for the in-page viewer.
type ViewerHandler struct {
	open   documentOpener
	logger domain.Logger
}

// NewViewerHandler creates a viewer handler backed by the given loader.
func NewViewerHandler(loader *viewer.Loader, logger domain.Logger) *ViewerHandler {
	return &ViewerHandler{
		open: func(ctx context.Context, url string) (viewer.PageRasterizer, error) {
			return loader.Open(ctx, url)
		},
		logger: logger,
	}
}

// GetDocumentInfo returns page count for the document at ?url=.
func (h *ViewerHandler) GetDocumentInfo(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url parameter is required")
		return
	}

	raster, err := h.open(r.Context(), url)
	if err != nil {
		h.writeViewerError(w, err)
		return
	}
	defer raster.Close()

	writeJSON(w, http.StatusOK, viewer.DocumentInfo{PageCount: raster.PageCount()})
}

// GetSpread returns the flipbook page pairing around ?page=.
func (h *ViewerHandler) GetSpread(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url parameter is required")
		return
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page parameter must be an integer")
		return
	}

	raster, err := h.open(r.Context(), url)
	if err != nil {
		h.writeViewerError(w, err)
		return
	}
	defer raster.Close()

	pageCount := raster.PageCount()
	writeJSON(w, http.StatusOK, struct {
		viewer.Spread
		Next int `json:"next"`
		Prev int `json:"prev"`
	}{
		Spread: viewer.FlipbookSpread(page, pageCount),
		Next:   viewer.NextSpread(page, pageCount),
		Prev:   viewer.PrevSpread(page, pageCount),
	})
}

// RenderPage renders one page as PNG. Query parameters: url, page, and
// optionally scale, rotation, fit, width, height. Fit modes other than
// actual require width and height (the measured surface).
func (h *ViewerHandler) RenderPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	url := q.Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url parameter is required")
		return
	}
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page parameter must be an integer")
		return
	}

	opts := viewer.RenderOptions{Fit: viewer.FitMode(q.Get("fit")), Scale: 1}
	if s := q.Get("scale"); s != "" {
		scale, err := strconv.ParseFloat(s, 64)
		if err != nil || scale <= 0 {
			writeError(w, http.StatusBadRequest, "scale parameter must be a positive number")
			return
		}
		opts.Scale = scale
	}
	if rot := q.Get("rotation"); rot != "" {
		rotation, err := strconv.Atoi(rot)
		if err != nil || rotation%90 != 0 {
			writeError(w, http.StatusBadRequest, "rotation must be a multiple of 90")
			return
		}
		opts.Rotation = ((rotation % 360) + 360) % 360
	}

	width, _ := strconv.Atoi(q.Get("width"))
	height, _ := strconv.Atoi(q.Get("height"))

	raster, err := h.open(r.Context(), url)
	if err != nil {
		h.writeViewerError(w, err)
		return
	}
	defer raster.Close()

	renderer := viewer.NewRenderer(raster, h.logger)
	surface := viewer.NewImageSurface(uuid.New().String(), width, height)
	if err := renderer.RenderPage(r.Context(), page, surface, opts); err != nil {
		h.writeViewerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := png.Encode(w, surface.Image()); err != nil {
		h.logger.Error("PNG encoding failed", err, "url", url, "page", page)
	}
}

// GetThumbnails renders the thumbnail grid for the document at ?url=.
// Images come back base64-encoded; failed pages are placeholders.
func (h *ViewerHandler) GetThumbnails(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url parameter is required")
		return
	}

	raster, err := h.open(r.Context(), url)
	if err != nil {
		h.writeViewerError(w, err)
		return
	}
	defer raster.Close()

	type thumbnailResponse struct {
		Page        int    `json:"page"`
		Image       string `json:"image,omitempty"`
		Placeholder bool   `json:"placeholder,omitempty"`
	}

	thumbnails := viewer.RenderThumbnails(r.Context(), raster, h.logger)
	out := make([]thumbnailResponse, 0, len(thumbnails))
	for _, t := range thumbnails {
		entry := thumbnailResponse{Page: t.Page, Placeholder: t.Placeholder}
		if t.Image != nil {
			var buf bytes.Buffer
			if err := png.Encode(&buf, t.Image); err != nil {
				entry.Placeholder = true
			} else {
				entry.Image = base64.StdEncoding.EncodeToString(buf.Bytes())
			}
		}
		out = append(out, entry)
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *ViewerHandler) writeViewerError(w http.ResponseWriter, err error) {
	var loadErr *viewer.LoadError
	switch {
	case errors.As(err, &loadErr):
		writeError(w, http.StatusBadGateway, loadErr.Error())
	case errors.Is(err, viewer.ErrPageOutOfRange):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, viewer.ErrSurfaceNotReady):
		writeError(w, http.StatusBadRequest, "width and height are required for this fit mode")
	case errors.Is(err, viewer.ErrRenderInFlight), errors.Is(err, viewer.ErrRenderCancelled):
		// Benign render races never surface as failures.
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
