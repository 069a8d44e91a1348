package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoria-server/internal/domain"
)

// nopLogger is a no-op domain.Logger for package tests.
type nopLogger struct{}

func NewNopLogger() domain.Logger { return &nopLogger{} }

func (l *nopLogger) Info(msg string, fields ...interface{})             {}
func (l *nopLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *nopLogger) Debug(msg string, fields ...interface{})            {}
func (l *nopLogger) Warn(msg string, fields ...interface{})             {}

// fakeAdapter records Store calls and returns a canned result or error.
type fakeAdapter struct {
	provider domain.Provider
	err      error
	calls    int
	lastSize int
}

func (f *fakeAdapter) Provider() domain.Provider { return f.provider }

func (f *fakeAdapter) Store(ctx context.Context, data []byte, routingHint string) (*domain.StoredObject, error) {
	f.calls++
	f.lastSize = len(data)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.StoredObject{
		URL:      "https://example.test/" + string(f.provider) + "/object.pdf",
		Provider: f.provider,
		Metadata: domain.ProviderMetadata{ByteSize: int64(len(data))},
	}, nil
}

func newTestOrchestrator(rewriter domain.DocumentRewriter, adapters ...domain.StorageAdapter) *Orchestrator {
	logger := NewNopLogger()
	classifier := NewSizeClassifier(domain.DefaultStoragePolicy())
	return NewOrchestrator(classifier, NewCompressor(rewriter, logger), adapters, logger)
}

func pdfCandidate(sizeMB int) domain.UploadCandidate {
	return domain.UploadCandidate{
		Data:      make([]byte, sizeMB*bytesPerMB),
		MediaType: "application/pdf",
		FileName:  "brochure.pdf",
	}
}

func TestUploadSmart_RejectsUnsupportedType(t *testing.T) {
	cdn := &fakeAdapter{provider: domain.ProviderCDN}
	bulk := &fakeAdapter{provider: domain.ProviderBulk}
	orchestrator := newTestOrchestrator(&fakeRewriter{}, cdn, bulk)

	candidate := domain.UploadCandidate{Data: []byte("GIF89a"), MediaType: "image/gif"}
	_, err := orchestrator.UploadSmart(context.Background(), candidate, "")

	var unsupported *domain.UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "image/gif", unsupported.MediaType)
	assert.Zero(t, cdn.calls, "no network calls after type rejection")
	assert.Zero(t, bulk.calls)
}

func TestUploadSmart_SmallFileGoesToCDNFirst(t *testing.T) {
	cdn := &fakeAdapter{provider: domain.ProviderCDN}
	bulk := &fakeAdapter{provider: domain.ProviderBulk}
	orchestrator := newTestOrchestrator(&fakeRewriter{}, cdn, bulk)

	result, err := orchestrator.UploadSmart(context.Background(), pdfCandidate(3), "funeral-1")

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderCDN, result.Provider)
	assert.Equal(t, 1, cdn.calls)
	assert.Zero(t, bulk.calls, "success short-circuits remaining candidates")
	require.NotNil(t, result.CompressionInfo)
	assert.False(t, result.CompressionInfo.WasCompressed)
}

func TestUploadSmart_CompressionReroutesToCDN(t *testing.T) {
	// 15MB shrinks to 8MB: routing must follow the post-compression size.
	cdn := &fakeAdapter{provider: domain.ProviderCDN}
	bulk := &fakeAdapter{provider: domain.ProviderBulk}
	rewriter := &fakeRewriter{stripShrink: 8.0 / 15.0, scaleShrink: 1}
	orchestrator := newTestOrchestrator(rewriter, cdn, bulk)

	result, err := orchestrator.UploadSmart(context.Background(), pdfCandidate(15), "")

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderCDN, result.Provider)
	assert.Equal(t, 1, cdn.calls)
	assert.Zero(t, bulk.calls)
	assert.Equal(t, 8*bytesPerMB, cdn.lastSize, "compressed bytes are what gets uploaded")
	require.NotNil(t, result.CompressionInfo)
	assert.True(t, result.CompressionInfo.WasCompressed)
	assert.Equal(t, int64(15*bytesPerMB), result.CompressionInfo.OriginalSize)
}

func TestUploadSmart_OversizedExcludesCDNEntirely(t *testing.T) {
	// Compression can't get a 45MB file under 10MB; CDN must never be tried.
	cdn := &fakeAdapter{provider: domain.ProviderCDN}
	bulk := &fakeAdapter{provider: domain.ProviderBulk}
	rewriter := &fakeRewriter{stripShrink: 32.0 / 45.0, scaleShrink: 1}
	orchestrator := newTestOrchestrator(rewriter, cdn, bulk)

	result, err := orchestrator.UploadSmart(context.Background(), pdfCandidate(45), "")

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderBulk, result.Provider)
	assert.Zero(t, cdn.calls, "CDN excluded from candidates while oversized")
	assert.Equal(t, 1, bulk.calls)
}

func TestUploadSmart_FallsBackOnProviderFailure(t *testing.T) {
	cdnErr := &domain.ProviderError{Provider: domain.ProviderCDN, Cause: errors.New("network unreachable")}
	cdn := &fakeAdapter{provider: domain.ProviderCDN, err: cdnErr}
	bulk := &fakeAdapter{provider: domain.ProviderBulk}
	orchestrator := newTestOrchestrator(&fakeRewriter{}, cdn, bulk)

	result, err := orchestrator.UploadSmart(context.Background(), pdfCandidate(3), "")

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderBulk, result.Provider)
	assert.Equal(t, 1, cdn.calls)
	assert.Equal(t, 1, bulk.calls)
	require.NotNil(t, result.CompressionInfo)
	assert.False(t, result.CompressionInfo.WasCompressed)
}

func TestUploadSmart_AllProvidersFailed(t *testing.T) {
	cdn := &fakeAdapter{provider: domain.ProviderCDN, err: &domain.ProviderError{
		Provider: domain.ProviderCDN, Cause: errors.New("quota exceeded"),
	}}
	bulk := &fakeAdapter{provider: domain.ProviderBulk, err: &domain.ProviderError{
		Provider: domain.ProviderBulk, Cause: errors.New("bucket missing"),
	}}
	orchestrator := newTestOrchestrator(&fakeRewriter{}, cdn, bulk)

	_, err := orchestrator.UploadSmart(context.Background(), pdfCandidate(3), "")

	var allFailed *domain.AllProvidersFailedError
	require.ErrorAs(t, err, &allFailed)
	require.Len(t, allFailed.Attempts, 2, "one entry per candidate tried")
	assert.Equal(t, domain.ProviderCDN, allFailed.Attempts[0].Provider, "attempts recorded in order")
	assert.Equal(t, domain.ProviderBulk, allFailed.Attempts[1].Provider)
}

func TestUploadSmart_CompressionFailureStopsUpload(t *testing.T) {
	cdn := &fakeAdapter{provider: domain.ProviderCDN}
	bulk := &fakeAdapter{provider: domain.ProviderBulk}
	rewriter := &fakeRewriter{stripErr: errors.New("encrypted document")}
	orchestrator := newTestOrchestrator(rewriter, cdn, bulk)

	_, err := orchestrator.UploadSmart(context.Background(), pdfCandidate(15), "")

	var failed *domain.CompressionFailedError
	require.ErrorAs(t, err, &failed)
	assert.Zero(t, cdn.calls)
	assert.Zero(t, bulk.calls)
}
