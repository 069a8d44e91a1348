package service

import (
	"strings"

	"memoria-server/internal/domain"
	"memoria-server/pkg/errors"
)

type DonationService struct {
	repo   domain.DonationRepository
	logger domain.Logger
}

func NewDonationService(repo domain.DonationRepository, logger domain.Logger) *DonationService {
	return &DonationService{
		repo:   repo,
		logger: logger,
	}
}

// Record persists a donation stub. The per-funeral total is incremented
// store-side in the same call, so concurrent donations never lose updates.
func (s *DonationService) Record(funeralID, donorName, message string, amountCents int64) (*domain.Donation, error) {
	if strings.TrimSpace(funeralID) == "" {
		return nil, errors.NewValidationError("funeral_id is required")
	}
	if amountCents <= 0 {
		return nil, errors.NewValidationError("amount must be positive")
	}

	donation := &domain.Donation{
		FuneralID:   funeralID,
		DonorName:   strings.TrimSpace(donorName),
		AmountCents: amountCents,
		Message:     strings.TrimSpace(message),
	}
	if err := s.repo.Create(donation); err != nil {
		return nil, err
	}

	s.logger.Info("donation recorded", "funeral_id", funeralID, "amount_cents", amountCents)
	return donation, nil
}

func (s *DonationService) ListForFuneral(funeralID string, token string) ([]*domain.Donation, error) {
	return s.repo.GetByFuneralID(funeralID, token)
}

func (s *DonationService) Total(funeralID string) (int64, error) {
	return s.repo.TotalForFuneral(funeralID)
}
