package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"memoria-server/internal/domain"
)

// CDNAdapter uploads brochures to the CDN backend through its unsigned
// upload endpoint. The CDN enforces a hard size ceiling at upload time and
// derives raster thumbnails of the first page on its side.
type CDNAdapter struct {
	uploadURL    string
	uploadPreset string
	maxMB        float64
	httpClient   *http.Client
	logger       domain.Logger
}

// cdnUploadResponse is the provider's wire shape. It never leaks past this
// file; Store normalizes it into a domain.StoredObject immediately.
type cdnUploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Bytes     int64  `json:"bytes"`
	Eager     []struct {
		SecureURL string `json:"secure_url"`
	} `json:"eager"`
}

// NewCDNAdapter creates the CDN adapter.
func NewCDNAdapter(uploadURL, uploadPreset string, policy domain.StoragePolicy, logger domain.Logger) *CDNAdapter {
	return &CDNAdapter{
		uploadURL:    uploadURL,
		uploadPreset: uploadPreset,
		maxMB:        policy.CDNMaxSizeMB,
		httpClient:   &http.Client{Timeout: attemptTimeout},
		logger:       logger,
	}
}

// newCDNAdapterWithClient is used by tests to intercept the network layer.
func newCDNAdapterWithClient(uploadURL, uploadPreset string, policy domain.StoragePolicy, client *http.Client, logger domain.Logger) *CDNAdapter {
	a := NewCDNAdapter(uploadURL, uploadPreset, policy, logger)
	a.httpClient = client
	return a
}

// Provider identifies this adapter in candidate lists and error reports.
func (a *CDNAdapter) Provider() domain.Provider {
	return domain.ProviderCDN
}

// Store uploads the payload to the CDN. Payloads over the CDN ceiling are
// rejected locally before any network call; the orchestrator relies on this
// pre-flight guard to avoid a round-trip that is certain to fail.
func (a *CDNAdapter) Store(ctx context.Context, data []byte, routingHint string) (*domain.StoredObject, error) {
	if sizeMB := float64(len(data)) / bytesPerMB; sizeMB > a.maxMB {
		return nil, &domain.ProviderError{
			Provider: domain.ProviderCDN,
			Cause:    fmt.Errorf("payload %.1fMB exceeds CDN ceiling %.0fMB", sizeMB, a.maxMB),
		}
	}

	namespace := routingHint
	if namespace == "" {
		namespace = defaultNamespace
	}
	publicID := fmt.Sprintf("%s/%s", namespace, uuid.New().String())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", publicID+".pdf")
	if err != nil {
		return nil, &domain.ProviderError{Provider: domain.ProviderCDN, Cause: err}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &domain.ProviderError{Provider: domain.ProviderCDN, Cause: err}
	}
	_ = writer.WriteField("upload_preset", a.uploadPreset)
	_ = writer.WriteField("public_id", publicID)
	_ = writer.WriteField("resource_type", "image")
	_ = writer.WriteField("format", "pdf")
	if err := writer.Close(); err != nil {
		return nil, &domain.ProviderError{Provider: domain.ProviderCDN, Cause: err}
	}

	uploadCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(uploadCtx, http.MethodPost, a.uploadURL, body)
	if err != nil {
		return nil, &domain.ProviderError{Provider: domain.ProviderCDN, Cause: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{
			Provider: domain.ProviderCDN,
			Cause:    fmt.Errorf("upload request failed: %w", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.ProviderError{
			Provider: domain.ProviderCDN,
			Cause:    fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, string(msg)),
		}
	}

	var uploaded cdnUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, &domain.ProviderError{
			Provider: domain.ProviderCDN,
			Cause:    fmt.Errorf("malformed upload response: %w", err),
		}
	}
	if uploaded.SecureURL == "" {
		return nil, &domain.ProviderError{
			Provider: domain.ProviderCDN,
			Cause:    fmt.Errorf("upload response missing secure_url"),
		}
	}

	thumbnails := make([]string, 0, len(uploaded.Eager))
	for _, derivative := range uploaded.Eager {
		if derivative.SecureURL != "" {
			thumbnails = append(thumbnails, derivative.SecureURL)
		}
	}

	a.logger.Info("Brochure stored in CDN backend",
		"public_id", uploaded.PublicID,
		"size", len(data),
		"thumbnails", len(thumbnails),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	byteSize := uploaded.Bytes
	if byteSize == 0 {
		byteSize = int64(len(data))
	}

	return &domain.StoredObject{
		URL:      uploaded.SecureURL,
		Provider: domain.ProviderCDN,
		Metadata: domain.ProviderMetadata{
			ExternalID:    uploaded.PublicID,
			ThumbnailURLs: thumbnails,
			ByteSize:      byteSize,
		},
	}, nil
}
