package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"

	"memoria-server/internal/domain"
)

// defaultNamespace is used when no routing hint is supplied.
const defaultNamespace = "brochures"

// bulkStoreClient is the slice of the storage-go client the adapter needs.
// Narrowed to an interface so tests can count network invocations.
type bulkStoreClient interface {
	GetBucket(id string) (storage_go.Bucket, error)
	UploadFile(bucketID string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketID string, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// BulkAdapter stores arbitrary-size brochures in Supabase Storage.
// The bucket must pre-exist; it is probed, never created, by this code.
type BulkAdapter struct {
	client  bulkStoreClient
	bucket  string
	maxMB   float64
	timeout time.Duration
	logger  domain.Logger
}

// NewBulkAdapter creates the Supabase Storage adapter.
func NewBulkAdapter(supabaseURL, apiKey, bucket string, policy domain.StoragePolicy, logger domain.Logger) *BulkAdapter {
	return &BulkAdapter{
		client:  storage_go.NewClient(supabaseURL+"/storage/v1", apiKey, nil),
		bucket:  bucket,
		maxMB:   policy.BulkMaxSizeMB,
		timeout: attemptTimeout,
		logger:  logger,
	}
}

// newBulkAdapterWithClient is used by tests to substitute a fake client.
func newBulkAdapterWithClient(client bulkStoreClient, bucket string, policy domain.StoragePolicy, logger domain.Logger) *BulkAdapter {
	return &BulkAdapter{
		client:  client,
		bucket:  bucket,
		maxMB:   policy.BulkMaxSizeMB,
		timeout: attemptTimeout,
		logger:  logger,
	}
}

// Provider identifies this adapter in candidate lists and error reports.
func (a *BulkAdapter) Provider() domain.Provider {
	return domain.ProviderBulk
}

// Store uploads the payload under a hint-derived path and returns the
// derived public URL. The bulk store generates no thumbnails.
func (a *BulkAdapter) Store(ctx context.Context, data []byte, routingHint string) (*domain.StoredObject, error) {
	if sizeMB := float64(len(data)) / bytesPerMB; sizeMB > a.maxMB {
		return nil, &domain.ProviderError{
			Provider: domain.ProviderBulk,
			Cause:    fmt.Errorf("payload %.1fMB exceeds bulk store ceiling %.0fMB", sizeMB, a.maxMB),
		}
	}

	if _, err := a.client.GetBucket(a.bucket); err != nil {
		return nil, &domain.ProviderError{
			Provider: domain.ProviderBulk,
			Cause:    fmt.Errorf("bucket %q not reachable: %w", a.bucket, err),
		}
	}

	path := objectPath(routingHint)
	contentType := "application/pdf"
	cacheControl := "3600"
	upsert := false

	// storage-go is not context-aware; bound the attempt the same way the
	// page extraction timeout works, so a hung upload counts as a provider
	// failure and the orchestrator can advance to the next candidate.
	uploadCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := a.client.UploadFile(a.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
			ContentType:  &contentType,
			CacheControl: &cacheControl,
			Upsert:       &upsert,
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, &domain.ProviderError{
				Provider: domain.ProviderBulk,
				Cause:    fmt.Errorf("upload failed: %w", err),
			}
		}
	case <-uploadCtx.Done():
		go func() { <-done }() // drain so the goroutine can exit
		return nil, &domain.ProviderError{
			Provider: domain.ProviderBulk,
			Cause:    fmt.Errorf("upload timed out: %w", uploadCtx.Err()),
		}
	}

	publicURL := a.client.GetPublicUrl(a.bucket, path).SignedURL
	if publicURL == "" {
		return nil, &domain.ProviderError{
			Provider: domain.ProviderBulk,
			Cause:    fmt.Errorf("no public URL returned for %s", path),
		}
	}

	a.logger.Info("Brochure stored in bulk backend", "path", path, "size", len(data))

	return &domain.StoredObject{
		URL:      publicURL,
		Provider: domain.ProviderBulk,
		Metadata: domain.ProviderMetadata{
			StoragePath: path,
			ByteSize:    int64(len(data)),
		},
	}, nil
}

// objectPath namespaces generated objects by the owning entity so humans
// can tell uploads apart in the storage console.
func objectPath(routingHint string) string {
	namespace := routingHint
	if namespace == "" {
		namespace = defaultNamespace
	}
	return fmt.Sprintf("%s/%s.pdf", namespace, uuid.New().String())
}
