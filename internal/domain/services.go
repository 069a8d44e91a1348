package domain

import "context"

// BrochureService drives the brochure upload pipeline and CRUD.
type BrochureService interface {
	Upload(ctx context.Context, candidate UploadCandidate, input BrochureInput, token string) (*Brochure, error)
	GetForFuneral(funeralID string) ([]*Brochure, error)
	UpdateDetails(id string, patch *BrochurePatch, token string) error
	Delete(id string, token string) error
	ToggleActive(id string, isActive bool, token string) error
	Reorder(id string, displayOrder int, token string) error
}

// FuneralService manages memorial page listings.
type FuneralService interface {
	Create(funeral *Funeral, token string) (*Funeral, error)
	GetByID(id string) (*Funeral, error)
	ListVisible() ([]*Funeral, error)
	Update(id string, patch *FuneralPatch, token string) error
	Delete(id string, token string) error
}

// CondolenceService manages visitor messages and their moderation.
type CondolenceService interface {
	Submit(funeralID, authorName, message string) (*Condolence, error)
	ListApproved(funeralID string) ([]*Condolence, error)
	ListPending(token string) ([]*Condolence, error)
	Moderate(id string, status CondolenceStatus, token string) error
}

// DonationService records stub donations and exposes per-funeral totals.
type DonationService interface {
	Record(funeralID, donorName, message string, amountCents int64) (*Donation, error)
	ListForFuneral(funeralID string, token string) ([]*Donation, error)
	Total(funeralID string) (int64, error)
}
