package handler

import (
	"context"

	"memoria-server/internal/domain"
)

// Mock services shared by handler tests.

type MockFuneralService struct {
	funerals map[string]*domain.Funeral
	err      error
}

func NewMockFuneralService() *MockFuneralService {
	return &MockFuneralService{funerals: make(map[string]*domain.Funeral)}
}

func (m *MockFuneralService) Create(funeral *domain.Funeral, token string) (*domain.Funeral, error) {
	if m.err != nil {
		return nil, m.err
	}
	funeral.ID = "f1"
	m.funerals[funeral.ID] = funeral
	return funeral, nil
}

func (m *MockFuneralService) GetByID(id string) (*domain.Funeral, error) {
	if f, exists := m.funerals[id]; exists {
		return f, nil
	}
	return nil, domain.ErrFuneralNotFound
}

func (m *MockFuneralService) ListVisible() ([]*domain.Funeral, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Funeral
	for _, f := range m.funerals {
		out = append(out, f)
	}
	return out, nil
}

func (m *MockFuneralService) Update(id string, patch *domain.FuneralPatch, token string) error {
	return m.err
}

func (m *MockFuneralService) Delete(id string, token string) error {
	return m.err
}

type MockBrochureService struct {
	brochure *domain.Brochure
	err      error
	lastData []byte
}

func NewMockBrochureService() *MockBrochureService {
	return &MockBrochureService{}
}

func (m *MockBrochureService) Upload(ctx context.Context, candidate domain.UploadCandidate, input domain.BrochureInput, token string) (*domain.Brochure, error) {
	m.lastData = candidate.Data
	if m.err != nil {
		return nil, m.err
	}
	return m.brochure, nil
}

func (m *MockBrochureService) GetForFuneral(funeralID string) ([]*domain.Brochure, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.brochure == nil {
		return nil, nil
	}
	return []*domain.Brochure{m.brochure}, nil
}

func (m *MockBrochureService) UpdateDetails(id string, patch *domain.BrochurePatch, token string) error {
	return m.err
}

func (m *MockBrochureService) Delete(id string, token string) error {
	return m.err
}

func (m *MockBrochureService) ToggleActive(id string, isActive bool, token string) error {
	return m.err
}

func (m *MockBrochureService) Reorder(id string, displayOrder int, token string) error {
	return m.err
}

type MockCondolenceService struct {
	condolences []*domain.Condolence
	err         error
}

func NewMockCondolenceService() *MockCondolenceService {
	return &MockCondolenceService{}
}

func (m *MockCondolenceService) Submit(funeralID, authorName, message string) (*domain.Condolence, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Condolence{ID: "c1", FuneralID: funeralID, AuthorName: authorName, Message: message, Status: domain.CondolencePending}, nil
}

func (m *MockCondolenceService) ListApproved(funeralID string) ([]*domain.Condolence, error) {
	return m.condolences, m.err
}

func (m *MockCondolenceService) ListPending(token string) ([]*domain.Condolence, error) {
	return m.condolences, m.err
}

func (m *MockCondolenceService) Moderate(id string, status domain.CondolenceStatus, token string) error {
	return m.err
}

type MockDonationService struct {
	total int64
	err   error
}

func NewMockDonationService() *MockDonationService {
	return &MockDonationService{}
}

func (m *MockDonationService) Record(funeralID, donorName, message string, amountCents int64) (*domain.Donation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Donation{ID: "d1", FuneralID: funeralID, DonorName: donorName, AmountCents: amountCents}, nil
}

func (m *MockDonationService) ListForFuneral(funeralID string, token string) ([]*domain.Donation, error) {
	return nil, m.err
}

func (m *MockDonationService) Total(funeralID string) (int64, error) {
	return m.total, m.err
}
