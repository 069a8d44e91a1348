package service

import (
	"strings"

	"memoria-server/internal/domain"
	"memoria-server/pkg/errors"
)

type FuneralService struct {
	repo   domain.FuneralRepository
	logger domain.Logger
}

func NewFuneralService(repo domain.FuneralRepository, logger domain.Logger) *FuneralService {
	return &FuneralService{
		repo:   repo,
		logger: logger,
	}
}

func (s *FuneralService) Create(funeral *domain.Funeral, token string) (*domain.Funeral, error) {
	if strings.TrimSpace(funeral.DeceasedName) == "" {
		return nil, errors.NewValidationError("deceased_name is required")
	}
	if funeral.Slug == "" {
		funeral.Slug = slugify(funeral.DeceasedName)
	}

	if err := s.repo.Create(funeral, token); err != nil {
		return nil, err
	}

	s.logger.Info("funeral created", "id", funeral.ID, "slug", funeral.Slug)
	return funeral, nil
}

func (s *FuneralService) GetByID(id string) (*domain.Funeral, error) {
	return s.repo.GetByID(id)
}

func (s *FuneralService) ListVisible() ([]*domain.Funeral, error) {
	return s.repo.GetVisible()
}

func (s *FuneralService) Update(id string, patch *domain.FuneralPatch, token string) error {
	if patch == nil {
		return errors.NewValidationError("no fields to update")
	}
	if patch.DeceasedName != nil && strings.TrimSpace(*patch.DeceasedName) == "" {
		return errors.NewValidationError("deceased_name cannot be empty")
	}
	return s.repo.Update(id, patch, token)
}

func (s *FuneralService) Delete(id string, token string) error {
	return s.repo.Delete(id, token)
}

// slugify lowercases the name and collapses anything non-alphanumeric
// into single hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
