package service

import (
	"strings"

	"memoria-server/internal/domain"
	"memoria-server/pkg/errors"
)

const maxCondolenceLength = 2000

type CondolenceService struct {
	repo   domain.CondolenceRepository
	logger domain.Logger
}

func NewCondolenceService(repo domain.CondolenceRepository, logger domain.Logger) *CondolenceService {
	return &CondolenceService{
		repo:   repo,
		logger: logger,
	}
}

// Submit stores a visitor message in pending state. No authentication is
// required; moderation happens before anything becomes public.
func (s *CondolenceService) Submit(funeralID, authorName, message string) (*domain.Condolence, error) {
	if strings.TrimSpace(funeralID) == "" {
		return nil, errors.NewValidationError("funeral_id is required")
	}
	if strings.TrimSpace(authorName) == "" {
		return nil, errors.NewValidationError("author_name is required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.NewValidationError("message is required")
	}
	if len(message) > maxCondolenceLength {
		return nil, errors.NewValidationError("message too long", "maximum 2000 characters")
	}

	condolence := &domain.Condolence{
		FuneralID:  funeralID,
		AuthorName: strings.TrimSpace(authorName),
		Message:    message,
		Status:     domain.CondolencePending,
	}
	if err := s.repo.Create(condolence); err != nil {
		return nil, err
	}

	s.logger.Info("condolence submitted", "funeral_id", funeralID)
	return condolence, nil
}

func (s *CondolenceService) ListApproved(funeralID string) ([]*domain.Condolence, error) {
	return s.repo.GetApprovedByFuneralID(funeralID)
}

func (s *CondolenceService) ListPending(token string) ([]*domain.Condolence, error) {
	return s.repo.GetPending(token)
}

func (s *CondolenceService) Moderate(id string, status domain.CondolenceStatus, token string) error {
	switch status {
	case domain.CondolenceApproved, domain.CondolenceRejected:
	default:
		return errors.NewValidationError("invalid moderation status", string(status))
	}
	if err := s.repo.SetStatus(id, status, token); err != nil {
		return err
	}
	s.logger.Info("condolence moderated", "id", id, "status", string(status))
	return nil
}
