package storage

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"memoria-server/internal/domain"
)

// PdfcpuRewriter implements domain.DocumentRewriter on top of pdfcpu.
type PdfcpuRewriter struct {
	conf *model.Configuration
}

// NewPdfcpuRewriter creates a rewriter with relaxed validation, since
// user-supplied brochures are frequently produced by sloppy generators.
func NewPdfcpuRewriter() *PdfcpuRewriter {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PdfcpuRewriter{conf: conf}
}

// StripMetadata drops document info properties and annotations, then
// optimizes the cross-reference table and prunes unused objects.
func (r *PdfcpuRewriter) StripMetadata(pdf []byte) ([]byte, error) {
	var withoutProps bytes.Buffer
	// nil property list removes every document info property.
	if err := api.RemoveProperties(bytes.NewReader(pdf), &withoutProps, nil, r.conf); err != nil {
		return nil, fmt.Errorf("failed to remove document properties: %w", err)
	}

	var optimized bytes.Buffer
	if err := api.Optimize(bytes.NewReader(withoutProps.Bytes()), &optimized, r.conf); err != nil {
		return nil, fmt.Errorf("failed to optimize document: %w", err)
	}

	return optimized.Bytes(), nil
}

// ScaleContent shrinks every page's content stream and dimensions by factor.
func (r *PdfcpuRewriter) ScaleContent(pdf []byte, factor float64) ([]byte, error) {
	if factor <= 0 || factor > 1 {
		return nil, fmt.Errorf("invalid scale factor %g: must be in (0, 1]", factor)
	}

	zoom, err := pdfcpu.ParseZoomConfig(fmt.Sprintf("factor: %.4f", factor), types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build zoom config: %w", err)
	}

	var out bytes.Buffer
	if err := api.Zoom(bytes.NewReader(pdf), &out, nil, zoom, r.conf); err != nil {
		return nil, fmt.Errorf("failed to scale page content: %w", err)
	}

	return out.Bytes(), nil
}

var _ domain.DocumentRewriter = (*PdfcpuRewriter)(nil)
