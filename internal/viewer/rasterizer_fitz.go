package viewer

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/gen2brain/go-fitz"
)

// fitz renders at 72 DPI for scale 1.0.
const baseDPI = 72

// maxDocumentBytes caps how much of a remote document the loader will pull.
const maxDocumentBytes = 64 << 20

// FitzRasterizer implements PageRasterizer on top of MuPDF via go-fitz.
type FitzRasterizer struct {
	doc *fitz.Document
}

// NewFitzRasterizer parses a PDF held in memory.
func NewFitzRasterizer(pdf []byte) (*FitzRasterizer, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &FitzRasterizer{doc: doc}, nil
}

// PageCount returns the total number of pages.
func (f *FitzRasterizer) PageCount() int {
	return f.doc.NumPage()
}

// PageSize returns the natural page dimensions in points. Pages are
// 1-indexed at this boundary; go-fitz counts from zero.
func (f *FitzRasterizer) PageSize(page int) (float64, float64, error) {
	bounds, err := f.doc.Bound(page - 1)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to measure page %d: %w", page, err)
	}
	return float64(bounds.Dx()), float64(bounds.Dy()), nil
}

// Rasterize renders one page at the given scale. MuPDF calls are not
// cancellable mid-render; the context is checked before the call so a
// cancelled render at least never starts.
func (f *FitzRasterizer) Rasterize(ctx context.Context, page int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scale <= 0 {
		scale = 1
	}
	img, err := f.doc.ImageDPI(page-1, baseDPI*scale)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	return img, nil
}

// Close releases the MuPDF document.
func (f *FitzRasterizer) Close() error {
	return f.doc.Close()
}

// Loader fetches remote documents and opens renderers over them.
type Loader struct {
	httpClient *http.Client
}

// NewLoader creates a document loader with a bounded fetch timeout.
func NewLoader() *Loader {
	return &Loader{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch downloads the document at url. Failures are LoadError.
func (l *Loader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{URL: url, Cause: err}
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, &LoadError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, &LoadError{URL: url, Cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, &LoadError{URL: url, Cause: err}
	}
	return data, nil
}

// Open fetches and parses the document at url.
func (l *Loader) Open(ctx context.Context, url string) (*FitzRasterizer, error) {
	data, err := l.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	raster, err := NewFitzRasterizer(data)
	if err != nil {
		return nil, &LoadError{URL: url, Cause: err}
	}
	return raster, nil
}
