package service

import (
	"context"
	"strings"
	"time"

	"memoria-server/internal/domain"
	"memoria-server/pkg/errors"
)

// pageCounter extracts the page count from raw PDF bytes. Satisfied by the
// viewer's rasterizer; a function type keeps the service testable without
// native rendering libraries.
type pageCounter func(pdf []byte) (int, error)

type BrochureService struct {
	uploader  domain.UploadOrchestrator
	repo      domain.BrochureRepository
	logger    domain.Logger
	pageCount pageCounter
}

func NewBrochureService(
	uploader domain.UploadOrchestrator,
	repo domain.BrochureRepository,
	pageCount pageCounter,
	logger domain.Logger,
) *BrochureService {
	return &BrochureService{
		uploader:  uploader,
		repo:      repo,
		logger:    logger,
		pageCount: pageCount,
	}
}

func (s *BrochureService) Upload(ctx context.Context, candidate domain.UploadCandidate, input domain.BrochureInput, token string) (*domain.Brochure, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.NewValidationError("title is required")
	}
	if strings.TrimSpace(input.FuneralID) == "" {
		return nil, errors.NewValidationError("funeral_id is required")
	}
	if len(candidate.Data) == 0 {
		return nil, domain.ErrInvalidFile
	}

	result, err := s.uploader.UploadSmart(ctx, candidate, "funerals/"+input.FuneralID)
	if err != nil {
		return nil, err
	}

	// Page geometry survives compression, so the original bytes are as
	// good a source as the stored ones.
	pages, err := s.pageCount(candidate.Data)
	if err != nil {
		s.logger.Warn("page count extraction failed, storing zero", "error", err.Error())
		pages = 0
	}

	brochure := &domain.Brochure{
		FuneralID:   input.FuneralID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		PDFURL:      result.URL,
		ExternalID:  result.Metadata.ExternalID,
		ByteSize:    result.Metadata.ByteSize,
		PageCount:   pages,
		ProviderTag: result.Provider,
		IsActive:    true,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if len(result.Metadata.ThumbnailURLs) > 0 {
		brochure.ThumbnailURL = result.Metadata.ThumbnailURLs[0]
	}
	if input.IsActive != nil {
		brochure.IsActive = *input.IsActive
	}
	if input.DisplayOrder != nil {
		brochure.DisplayOrder = *input.DisplayOrder
	} else {
		existing, err := s.repo.GetByFuneralID(input.FuneralID)
		if err != nil {
			s.logger.Warn("could not determine display order, appending at zero", "error", err.Error())
		} else {
			brochure.DisplayOrder = len(existing)
		}
	}

	if err := s.repo.Create(brochure, token); err != nil {
		return nil, err
	}

	s.logger.Info("brochure created",
		"funeral_id", brochure.FuneralID,
		"provider", string(brochure.ProviderTag),
		"byte_size", brochure.ByteSize,
		"pages", brochure.PageCount)

	return brochure, nil
}

func (s *BrochureService) GetForFuneral(funeralID string) ([]*domain.Brochure, error) {
	return s.repo.GetByFuneralID(funeralID)
}

func (s *BrochureService) UpdateDetails(id string, patch *domain.BrochurePatch, token string) error {
	if patch == nil {
		return errors.NewValidationError("no fields to update")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return errors.NewValidationError("title cannot be empty")
	}
	return s.repo.Update(id, patch, token)
}

func (s *BrochureService) Delete(id string, token string) error {
	return s.repo.Delete(id, token)
}

func (s *BrochureService) ToggleActive(id string, isActive bool, token string) error {
	return s.repo.ToggleActive(id, isActive, token)
}

func (s *BrochureService) Reorder(id string, displayOrder int, token string) error {
	if displayOrder < 0 {
		return errors.NewValidationError("display_order cannot be negative")
	}
	return s.repo.UpdateDisplayOrder(id, displayOrder, token)
}
