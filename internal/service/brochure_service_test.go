package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"memoria-server/internal/domain"
)

// Mock implementations for testing
type MockBrochureRepository struct {
	brochures map[string][]*domain.Brochure
	created   []*domain.Brochure
	patches   map[string]*domain.BrochurePatch
	failNext  error
}

func NewMockBrochureRepository() *MockBrochureRepository {
	return &MockBrochureRepository{
		brochures: make(map[string][]*domain.Brochure),
		patches:   make(map[string]*domain.BrochurePatch),
	}
}

func (m *MockBrochureRepository) Create(brochure *domain.Brochure, token string) error {
	if m.failNext != nil {
		return m.failNext
	}
	brochure.ID = fmt.Sprintf("brochure-%d", len(m.created)+1)
	m.created = append(m.created, brochure)
	m.brochures[brochure.FuneralID] = append(m.brochures[brochure.FuneralID], brochure)
	return nil
}

func (m *MockBrochureRepository) Update(id string, patch *domain.BrochurePatch, token string) error {
	m.patches[id] = patch
	return nil
}

func (m *MockBrochureRepository) Delete(id string, token string) error {
	return nil
}

func (m *MockBrochureRepository) GetByFuneralID(funeralID string) ([]*domain.Brochure, error) {
	return m.brochures[funeralID], nil
}

func (m *MockBrochureRepository) ToggleActive(id string, isActive bool, token string) error {
	m.patches[id] = &domain.BrochurePatch{IsActive: &isActive}
	return nil
}

func (m *MockBrochureRepository) UpdateDisplayOrder(id string, displayOrder int, token string) error {
	m.patches[id] = &domain.BrochurePatch{DisplayOrder: &displayOrder}
	return nil
}

type MockUploader struct {
	result   *domain.UploadResult
	err      error
	calls    int
	lastHint string
	lastData []byte
}

func (m *MockUploader) UploadSmart(ctx context.Context, candidate domain.UploadCandidate, routingHint string) (*domain.UploadResult, error) {
	m.calls++
	m.lastHint = routingHint
	m.lastData = candidate.Data
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type MockLogger struct {
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.messages = append(m.messages, "INFO: "+msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	m.messages = append(m.messages, "ERROR: "+msg)
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.messages = append(m.messages, "DEBUG: "+msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.messages = append(m.messages, "WARN: "+msg)
}

func fixedPageCount(pages int) pageCounter {
	return func(pdf []byte) (int, error) {
		return pages, nil
	}
}

func uploadResult() *domain.UploadResult {
	return &domain.UploadResult{
		URL:      "https://cdn.example.com/funerals/f1/abc.pdf",
		Provider: domain.ProviderCDN,
		Metadata: domain.ProviderMetadata{
			ExternalID:    "funerals/f1/abc",
			ByteSize:      1024,
			ThumbnailURLs: []string{"https://cdn.example.com/funerals/f1/abc.png"},
		},
	}
}

func TestBrochureUpload(t *testing.T) {
	repo := NewMockBrochureRepository()
	uploader := &MockUploader{result: uploadResult()}
	svc := NewBrochureService(uploader, repo, fixedPageCount(8), NewMockLogger())

	candidate := domain.UploadCandidate{
		Data:      bytes.Repeat([]byte("x"), 100),
		MediaType: "application/pdf",
		FileName:  "memorial.pdf",
	}
	input := domain.BrochureInput{FuneralID: "f1", Title: "  In Loving Memory  "}

	brochure, err := svc.Upload(context.Background(), candidate, input, "token")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if brochure.Title != "In Loving Memory" {
		t.Errorf("expected trimmed title, got %q", brochure.Title)
	}
	if brochure.PageCount != 8 {
		t.Errorf("expected page count 8, got %d", brochure.PageCount)
	}
	if brochure.ProviderTag != domain.ProviderCDN {
		t.Errorf("expected cdn provider tag, got %q", brochure.ProviderTag)
	}
	if brochure.ThumbnailURL == "" {
		t.Error("expected thumbnail URL from provider metadata")
	}
	if !brochure.IsActive {
		t.Error("expected brochure active by default")
	}
	if uploader.lastHint != "funerals/f1" {
		t.Errorf("expected routing hint scoped to funeral, got %q", uploader.lastHint)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 created row, got %d", len(repo.created))
	}
}

func TestBrochureUploadAppendsDisplayOrder(t *testing.T) {
	repo := NewMockBrochureRepository()
	repo.brochures["f1"] = []*domain.Brochure{{ID: "b1"}, {ID: "b2"}}
	uploader := &MockUploader{result: uploadResult()}
	svc := NewBrochureService(uploader, repo, fixedPageCount(1), NewMockLogger())

	candidate := domain.UploadCandidate{Data: []byte("pdf"), MediaType: "application/pdf"}
	brochure, err := svc.Upload(context.Background(), candidate, domain.BrochureInput{FuneralID: "f1", Title: "Third"}, "token")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if brochure.DisplayOrder != 2 {
		t.Errorf("expected display order 2 (appended), got %d", brochure.DisplayOrder)
	}
}

func TestBrochureUploadValidation(t *testing.T) {
	repo := NewMockBrochureRepository()
	uploader := &MockUploader{result: uploadResult()}
	svc := NewBrochureService(uploader, repo, fixedPageCount(1), NewMockLogger())

	candidate := domain.UploadCandidate{Data: []byte("pdf"), MediaType: "application/pdf"}

	if _, err := svc.Upload(context.Background(), candidate, domain.BrochureInput{FuneralID: "f1"}, "t"); err == nil {
		t.Error("expected error for missing title")
	}
	if _, err := svc.Upload(context.Background(), candidate, domain.BrochureInput{Title: "x"}, "t"); err == nil {
		t.Error("expected error for missing funeral_id")
	}
	if uploader.calls != 0 {
		t.Errorf("expected no upload attempts on validation failure, got %d", uploader.calls)
	}
}

func TestBrochureUploadRejectsEmptyFile(t *testing.T) {
	repo := NewMockBrochureRepository()
	uploader := &MockUploader{result: uploadResult()}
	svc := NewBrochureService(uploader, repo, fixedPageCount(1), NewMockLogger())

	candidate := domain.UploadCandidate{Data: nil, MediaType: "application/pdf", FileName: "empty.pdf"}
	_, err := svc.Upload(context.Background(), candidate, domain.BrochureInput{FuneralID: "f1", Title: "x"}, "t")
	if !errors.Is(err, domain.ErrInvalidFile) {
		t.Fatalf("expected ErrInvalidFile, got %v", err)
	}
	if uploader.calls != 0 {
		t.Errorf("expected no upload attempts for an empty file, got %d", uploader.calls)
	}
}

func TestBrochureUploadPropagatesUploaderError(t *testing.T) {
	repo := NewMockBrochureRepository()
	wantErr := errors.New("all providers failed")
	uploader := &MockUploader{err: wantErr}
	svc := NewBrochureService(uploader, repo, fixedPageCount(1), NewMockLogger())

	candidate := domain.UploadCandidate{Data: []byte("pdf"), MediaType: "application/pdf"}
	_, err := svc.Upload(context.Background(), candidate, domain.BrochureInput{FuneralID: "f1", Title: "x"}, "t")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected uploader error propagated, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Error("expected no row created when upload fails")
	}
}

func TestBrochureUploadDegradesPageCount(t *testing.T) {
	repo := NewMockBrochureRepository()
	uploader := &MockUploader{result: uploadResult()}
	failing := func(pdf []byte) (int, error) { return 0, errors.New("parse error") }
	svc := NewBrochureService(uploader, repo, failing, NewMockLogger())

	candidate := domain.UploadCandidate{Data: []byte("pdf"), MediaType: "application/pdf"}
	brochure, err := svc.Upload(context.Background(), candidate, domain.BrochureInput{FuneralID: "f1", Title: "x"}, "t")
	if err != nil {
		t.Fatalf("expected upload to survive page count failure, got %v", err)
	}
	if brochure.PageCount != 0 {
		t.Errorf("expected page count 0 on extraction failure, got %d", brochure.PageCount)
	}
}

func TestBrochureReorderValidation(t *testing.T) {
	repo := NewMockBrochureRepository()
	svc := NewBrochureService(&MockUploader{}, repo, fixedPageCount(1), NewMockLogger())

	if err := svc.Reorder("b1", -1, "t"); err == nil {
		t.Error("expected error for negative display order")
	}
	if err := svc.Reorder("b1", 3, "t"); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	patch := repo.patches["b1"]
	if patch == nil || patch.DisplayOrder == nil || *patch.DisplayOrder != 3 {
		t.Errorf("expected display order patch 3, got %+v", patch)
	}
}
