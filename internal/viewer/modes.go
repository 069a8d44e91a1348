package viewer

import (
	"context"
	"image"
	"sync"

	"memoria-server/internal/domain"
)

// Presentation modes layered on the renderer: single page, two-page
// flipbook spread, and thumbnail grid.

// maxThumbnailPages bounds thumbnail generation regardless of document
// length, to keep memory and render time predictable.
const maxThumbnailPages = 20

// thumbnailScale keeps thumbnails small and cheap.
const thumbnailScale = 0.2

// Spread describes a two-page flipbook layout. Right is zero when the
// spread has no right page (last odd page).
type Spread struct {
	Left  int `json:"left"`
	Right int `json:"right,omitempty"`
}

// FlipbookSpread pairs pages literally: left = current, right = current+1
// only when current+1 still exists.
func FlipbookSpread(current, pageCount int) Spread {
	current = clampPage(current, pageCount)
	spread := Spread{Left: current}
	if current+1 <= pageCount {
		spread.Right = current + 1
	}
	return spread
}

// NextSpread advances by two pages, clamped so a spread never requests a
// left page beyond the document.
func NextSpread(current, pageCount int) int {
	next := clampPage(current, pageCount) + 2
	if next > pageCount {
		return pageCount
	}
	return next
}

// PrevSpread retreats by two pages, clamped to the first page.
func PrevSpread(current, pageCount int) int {
	prev := clampPage(current, pageCount) - 2
	if prev < 1 {
		return 1
	}
	return prev
}

func clampPage(page, pageCount int) int {
	if page < 1 {
		return 1
	}
	if pageCount > 0 && page > pageCount {
		return pageCount
	}
	return page
}

// Thumbnail is one entry of a thumbnail grid. Placeholder is set when the
// page failed to render; the batch keeps going instead of aborting.
type Thumbnail struct {
	Page        int
	Image       image.Image
	Placeholder bool
}

// RenderThumbnails rasterizes the first pages of the document at a fixed
// small scale, capped at maxThumbnailPages.
func RenderThumbnails(ctx context.Context, raster PageRasterizer, logger domain.Logger) []Thumbnail {
	count := raster.PageCount()
	if count > maxThumbnailPages {
		count = maxThumbnailPages
	}

	thumbnails := make([]Thumbnail, 0, count)
	for page := 1; page <= count; page++ {
		if ctx.Err() != nil {
			break
		}
		img, err := raster.Rasterize(ctx, page, thumbnailScale)
		if err != nil {
			logger.Warn("Thumbnail render failed; using placeholder", "page", page, "error", err)
			thumbnails = append(thumbnails, Thumbnail{Page: page, Placeholder: true})
			continue
		}
		thumbnails = append(thumbnails, Thumbnail{Page: page, Image: img})
	}
	return thumbnails
}

// ImageSurface is an in-memory Surface that captures the drawn image,
// used by HTTP handlers to encode the result.
type ImageSurface struct {
	id     string
	width  int
	height int

	mu  sync.Mutex
	img image.Image
}

// NewImageSurface creates a measured surface. Zero dimensions model an
// unmeasured surface; fit-mode renders against it are deferred.
func NewImageSurface(id string, width, height int) *ImageSurface {
	return &ImageSurface{id: id, width: width, height: height}
}

func (s *ImageSurface) ID() string {
	return s.id
}

func (s *ImageSurface) Size() (int, int) {
	return s.width, s.height
}

func (s *ImageSurface) Draw(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = img
}

// Image returns the last drawn image, or nil when nothing landed.
func (s *ImageSurface) Image() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}
