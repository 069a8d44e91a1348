// Package viewer renders brochure PDFs server-side: single pages,
// two-page flipbook spreads, and thumbnail grids.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"memoria-server/internal/domain"
)

// FitMode controls how a page is scaled into a surface.
type FitMode string

const (
	FitCover   FitMode = "cover"
	FitContain FitMode = "contain"
	FitWidth   FitMode = "width"
	FitHeight  FitMode = "height"
	FitActual  FitMode = "actual"
)

var (
	// ErrRenderInFlight reports a dropped duplicate render. Benign: rapid
	// navigation and resize bursts produce these; they are never surfaced
	// to users or logged as failures.
	ErrRenderInFlight = errors.New("render already in flight for this page and surface")

	// ErrRenderCancelled reports a render superseded by navigation or
	// viewer teardown. Benign, like ErrRenderInFlight.
	ErrRenderCancelled = errors.New("render cancelled")

	// ErrPageOutOfRange reports a page index outside 1..PageCount.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrSurfaceNotReady reports a surface that has not been measured yet.
	// The caller should defer the render rather than draw at a degenerate
	// scale.
	ErrSurfaceNotReady = errors.New("surface has no measured dimensions")
)

// LoadError reports a document that failed to fetch or parse. Callers
// should offer "retry" and "download instead" rather than a raw cause.
type LoadError struct {
	URL   string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load document %s: %v", e.URL, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Surface is a drawable target with measured pixel dimensions.
type Surface interface {
	ID() string
	Size() (width, height int)
	Draw(img image.Image)
}

// PageRasterizer parses a PDF and rasterizes single pages.
// Pages are 1-indexed at this boundary.
type PageRasterizer interface {
	PageCount() int
	PageSize(page int) (width, height float64, err error)
	Rasterize(ctx context.Context, page int, scale float64) (image.Image, error)
	Close() error
}

// DocumentInfo is the result of loading a document.
type DocumentInfo struct {
	PageCount int `json:"page_count"`
}

// RenderOptions selects scale, rotation and fit for a single page render.
type RenderOptions struct {
	Scale    float64
	Rotation int // degrees, multiple of 90
	Fit      FitMode
}

type renderPhase int

const (
	phaseIdle renderPhase = iota
	phaseRendering
	phaseCancelled
)

type renderKey struct {
	page      int
	surfaceID string
}

type renderState struct {
	phase  renderPhase
	cancel context.CancelFunc
}

// Renderer renders pages of one loaded document. Render calls are
// deduplicated per (page, surface) pair: a second call while the first is
// in flight is dropped, which prevents torn frames during rapid
// navigation. Cancel must be wired to viewer teardown so a superseded
// render cannot land on a surface reused for a different page.
type Renderer struct {
	raster PageRasterizer
	logger domain.Logger

	mu       sync.Mutex
	inflight map[renderKey]*renderState
}

// NewRenderer wraps a parsed document.
func NewRenderer(raster PageRasterizer, logger domain.Logger) *Renderer {
	return &Renderer{
		raster:   raster,
		logger:   logger,
		inflight: make(map[renderKey]*renderState),
	}
}

// Info returns document-level facts.
func (r *Renderer) Info() DocumentInfo {
	return DocumentInfo{PageCount: r.raster.PageCount()}
}

// RenderPage rasterizes page onto surface. Returns ErrRenderInFlight when
// the same page is already rendering on the same surface, and
// ErrRenderCancelled when the render was superseded before completion.
func (r *Renderer) RenderPage(ctx context.Context, page int, surface Surface, opts RenderOptions) error {
	if page < 1 || page > r.raster.PageCount() {
		return fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, r.raster.PageCount())
	}

	scale, err := r.resolveScale(page, surface, opts)
	if err != nil {
		return err
	}

	key := renderKey{page: page, surfaceID: surface.ID()}
	renderCtx, cancel := context.WithCancel(ctx)
	state := &renderState{phase: phaseRendering, cancel: cancel}

	r.mu.Lock()
	if cur, ok := r.inflight[key]; ok && cur.phase == phaseRendering {
		r.mu.Unlock()
		cancel()
		return ErrRenderInFlight
	}
	r.inflight[key] = state
	r.mu.Unlock()

	// The in-flight mark must be cleared on every exit path, success or
	// not, or the page number stays wedged as "stuck rendering". A
	// cancelled render can outlive its own cancellation: a retry for the
	// same key may own the slot by the time this call unwinds, so only
	// this call's own mark may be removed.
	defer func() {
		cancel()
		r.mu.Lock()
		if r.inflight[key] == state {
			delete(r.inflight, key)
		}
		r.mu.Unlock()
	}()

	img, err := r.raster.Rasterize(renderCtx, page, scale)

	r.mu.Lock()
	cancelled := state.phase == phaseCancelled
	r.mu.Unlock()

	if cancelled || errors.Is(renderCtx.Err(), context.Canceled) {
		return ErrRenderCancelled
	}
	if err != nil {
		return fmt.Errorf("failed to rasterize page %d: %w", page, err)
	}

	if opts.Rotation%360 != 0 {
		img = rotateImage(img, opts.Rotation)
	}

	surface.Draw(img)
	return nil
}

// Cancel aborts every in-flight render targeting the given surface.
// Wire this to viewer teardown.
func (r *Renderer) Cancel(surfaceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, state := range r.inflight {
		if key.surfaceID == surfaceID && state.phase == phaseRendering {
			state.phase = phaseCancelled
			state.cancel()
		}
	}
}

// Close releases the underlying document.
func (r *Renderer) Close() error {
	return r.raster.Close()
}

// resolveScale turns a fit mode into a concrete scale factor from the
// surface's measured dimensions and the page's natural dimensions.
func (r *Renderer) resolveScale(page int, surface Surface, opts RenderOptions) (float64, error) {
	if opts.Fit == "" || opts.Fit == FitActual {
		if opts.Scale <= 0 {
			return 1, nil
		}
		return opts.Scale, nil
	}

	surfaceW, surfaceH := surface.Size()
	if surfaceW <= 0 || surfaceH <= 0 {
		return 0, ErrSurfaceNotReady
	}

	pageW, pageH, err := r.raster.PageSize(page)
	if err != nil {
		return 0, fmt.Errorf("failed to measure page %d: %w", page, err)
	}
	if opts.Rotation%180 != 0 {
		pageW, pageH = pageH, pageW
	}

	scaleW := float64(surfaceW) / pageW
	scaleH := float64(surfaceH) / pageH

	switch opts.Fit {
	case FitCover:
		if scaleW > scaleH {
			return scaleW, nil
		}
		return scaleH, nil
	case FitContain:
		if scaleW < scaleH {
			return scaleW, nil
		}
		return scaleH, nil
	case FitWidth:
		return scaleW, nil
	case FitHeight:
		return scaleH, nil
	default:
		return 0, fmt.Errorf("unknown fit mode %q", opts.Fit)
	}
}

// rotateImage rotates img by rotation degrees (rounded to multiples of 90).
func rotateImage(img image.Image, rotation int) image.Image {
	turns := ((rotation/90)%4 + 4) % 4
	if turns == 0 {
		return img
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var out *image.RGBA
	if turns%2 == 0 {
		out = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		out = image.NewRGBA(image.Rect(0, 0, h, w))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			switch turns {
			case 1:
				out.Set(h-1-y, x, c)
			case 2:
				out.Set(w-1-x, h-1-y, c)
			case 3:
				out.Set(y, w-1-x, c)
			}
		}
	}
	return out
}
