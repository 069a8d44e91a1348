package storage

import (
	"context"
	"math"

	"memoria-server/internal/domain"
)

// maxCompressionAttempts bounds the rewrite loop. Page-area shrink does not
// guarantee proportional byte reduction (embedded raster images dominate),
// so the loop accepts a best-effort result after the last attempt.
const maxCompressionAttempts = 5

// Compressor performs iterative lossy size reduction on PDF payloads:
// metadata strip first, then progressive content scaling.
type Compressor struct {
	rewriter domain.DocumentRewriter
	logger   domain.Logger
}

// NewCompressor creates a compressor backed by the given rewriter.
func NewCompressor(rewriter domain.DocumentRewriter, logger domain.Logger) *Compressor {
	return &Compressor{
		rewriter: rewriter,
		logger:   logger,
	}
}

// Compress shrinks pdf toward targetCeilingMB. A file already under the
// ceiling is returned untouched with WasCompressed=false. Rewriter failures
// fall back to the original bytes when those already fit; when they don't,
// the error is a CompressionFailedError and must stop the upload.
func (c *Compressor) Compress(ctx context.Context, pdf []byte, targetCeilingMB float64) (domain.CompressionOutcome, []byte, error) {
	originalSize := int64(len(pdf))
	ceilingBytes := int64(targetCeilingMB * bytesPerMB)

	outcome := domain.CompressionOutcome{
		OriginalSize:   originalSize,
		CompressedSize: originalSize,
		Ratio:          1.0,
	}

	if originalSize <= ceilingBytes {
		return outcome, pdf, nil
	}

	current, err := c.rewriter.StripMetadata(pdf)
	if err != nil {
		return outcome, pdf, c.rewriteFailure(originalSize, ceilingBytes, err)
	}
	attempts := 1
	c.logger.Debug("Compression: metadata stripped",
		"original_size", originalSize,
		"size", len(current),
	)

	for int64(len(current)) > ceilingBytes && attempts < maxCompressionAttempts {
		if err := ctx.Err(); err != nil {
			return outcome, pdf, err
		}

		// Geometric heuristic: shrink page area toward the byte target.
		// Clamped to <=1 so pages are never upscaled.
		factor := math.Sqrt(float64(ceilingBytes) / float64(len(current)))
		if factor > 1 {
			factor = 1
		}

		scaled, err := c.rewriter.ScaleContent(current, factor)
		if err != nil {
			return outcome, pdf, c.rewriteFailure(originalSize, ceilingBytes, err)
		}
		attempts++

		c.logger.Debug("Compression: content scaled",
			"attempt", attempts,
			"factor", factor,
			"size", len(scaled),
		)

		// Keep the smaller of the two; a rewrite pass can grow a file
		// when object streams get re-encoded less favorably.
		if len(scaled) < len(current) {
			current = scaled
		}
	}

	outcome.CompressedSize = int64(len(current))
	outcome.Ratio = float64(outcome.CompressedSize) / float64(originalSize)
	outcome.WasCompressed = true

	if outcome.CompressedSize > ceilingBytes {
		c.logger.Warn("Compression stopped above target ceiling",
			"attempts", attempts,
			"final_size", outcome.CompressedSize,
			"ceiling_bytes", ceilingBytes,
		)
	}

	return outcome, current, nil
}

// rewriteFailure maps a rewriter error per the fallback rule: original
// bytes that already fit are safe to pass through untouched.
func (c *Compressor) rewriteFailure(originalSize, ceilingBytes int64, err error) error {
	if originalSize <= ceilingBytes {
		c.logger.Warn("PDF rewrite failed; using original file", "error", err)
		return nil
	}
	return &domain.CompressionFailedError{
		OriginalSize: originalSize,
		CeilingBytes: ceilingBytes,
		Cause:        err,
	}
}
