package domain

import (
	"context"
	"fmt"
	"strings"
)

// Provider identifies which object storage backend served a request.
type Provider string

const (
	ProviderCDN  Provider = "cdn"
	ProviderBulk Provider = "bulk"
)

// StoragePolicy holds the size thresholds that drive provider routing.
// It is an immutable value handed to the orchestrator at construction;
// there is no module-level singleton, so tests can inject their own.
type StoragePolicy struct {
	RoutingThresholdMB float64
	CDNMaxSizeMB       float64
	BulkMaxSizeMB      float64
}

// DefaultStoragePolicy returns the thresholds used in production.
func DefaultStoragePolicy() StoragePolicy {
	return StoragePolicy{
		RoutingThresholdMB: 10,
		CDNMaxSizeMB:       10,
		BulkMaxSizeMB:      50,
	}
}

// UploadCandidate is the in-memory payload handed to the upload pipeline.
type UploadCandidate struct {
	Data      []byte
	MediaType string
	FileName  string
}

// Size returns the byte length of the payload.
func (c UploadCandidate) Size() int64 {
	return int64(len(c.Data))
}

// SizeClassification is the routing decision derived from a byte size.
// Recomputed on every call; never cached, since compression changes the size.
type SizeClassification struct {
	SizeMB              float64  `json:"size_mb"`
	RecommendedProvider Provider `json:"recommended_provider"`
	NeedsCompression    bool     `json:"needs_compression"`
	MaxAllowedSizeMB    float64  `json:"max_allowed_size_mb"`
}

// CompressionOutcome describes what compression, if any, happened during
// a single upload attempt. Ratio is 1.0 when the file was left untouched.
type CompressionOutcome struct {
	OriginalSize   int64   `json:"original_size"`
	CompressedSize int64   `json:"compressed_size"`
	Ratio          float64 `json:"ratio"`
	WasCompressed  bool    `json:"was_compressed"`
}

// ProviderMetadata carries provider-specific details, normalized at the
// adapter boundary so nothing vendor-shaped leaks past it.
type ProviderMetadata struct {
	StoragePath   string   `json:"storage_path,omitempty"`
	ExternalID    string   `json:"external_id,omitempty"`
	ThumbnailURLs []string `json:"thumbnail_urls,omitempty"`
	ByteSize      int64    `json:"byte_size"`
}

// StoredObject is the uniform result every storage adapter returns.
type StoredObject struct {
	URL      string
	Provider Provider
	Metadata ProviderMetadata
}

// UploadResult is the contract returned to callers of the upload pipeline.
// Created once per successful upload and never mutated afterward.
type UploadResult struct {
	URL             string              `json:"url"`
	Provider        Provider            `json:"provider"`
	CompressionInfo *CompressionOutcome `json:"compression_info,omitempty"`
	Metadata        ProviderMetadata    `json:"provider_metadata"`
}

// StorageAdapter is the uniform contract both backends implement.
// The routing hint namespaces generated object paths by owning entity.
type StorageAdapter interface {
	Provider() Provider
	Store(ctx context.Context, data []byte, routingHint string) (*StoredObject, error)
}

// UploadOrchestrator routes a candidate through compression and the
// provider fallback chain.
type UploadOrchestrator interface {
	UploadSmart(ctx context.Context, candidate UploadCandidate, routingHint string) (*UploadResult, error)
}

// DocumentRewriter rewrites PDF bytes for best-effort size reduction.
type DocumentRewriter interface {
	// StripMetadata removes document info fields and unused objects.
	StripMetadata(pdf []byte) ([]byte, error)
	// ScaleContent scales page content and dimensions by factor (0 < f <= 1).
	ScaleContent(pdf []byte, factor float64) ([]byte, error)
}

// UnsupportedTypeError rejects a non-PDF payload before any network call.
type UnsupportedTypeError struct {
	MediaType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported media type %q: only application/pdf is accepted", e.MediaType)
}

// ProviderError wraps a single backend's rejection or network failure.
type ProviderError struct {
	Provider Provider
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// AllProvidersFailedError is the terminal upload failure. Attempts holds
// one entry per candidate actually tried, in attempt order.
type AllProvidersFailedError struct {
	Attempts []*ProviderError
}

func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return "all storage providers failed: " + strings.Join(parts, "; ")
}

// CompressionFailedError is fatal only when the original file also exceeds
// the target ceiling, i.e. there is no safe fallback.
type CompressionFailedError struct {
	OriginalSize int64
	CeilingBytes int64
	Cause        error
}

func (e *CompressionFailedError) Error() string {
	return fmt.Sprintf("cannot satisfy size constraint: %d bytes exceeds ceiling %d and rewriting failed: %v",
		e.OriginalSize, e.CeilingBytes, e.Cause)
}

func (e *CompressionFailedError) Unwrap() error {
	return e.Cause
}
