package domain

import "time"

// Brochure represents a memorial PDF brochure attached to a funeral page.
// Many brochures may belong to one funeral, ordered by DisplayOrder with
// ties broken by creation order.
type Brochure struct {
	ID           string    `json:"id"`
	FuneralID    string    `json:"funeral_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	PDFURL       string    `json:"pdf_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	ExternalID   string    `json:"external_id,omitempty"`
	ByteSize     int64     `json:"byte_size"`
	PageCount    int       `json:"page_count"`
	ProviderTag  Provider  `json:"provider_tag"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int       `json:"display_order"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BrochureInput carries the user-entered fields combined with an
// UploadResult to create a brochure row.
type BrochureInput struct {
	FuneralID    string
	Title        string
	Description  string
	DisplayOrder *int
	IsActive     *bool
	CreatedBy    string
}

// BrochurePatch is a partial update applied to an existing brochure.
type BrochurePatch struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
}

// BrochureRepository defines persistence operations for brochures.
type BrochureRepository interface {
	Create(brochure *Brochure, token string) error
	Update(id string, patch *BrochurePatch, token string) error
	Delete(id string, token string) error
	GetByFuneralID(funeralID string) ([]*Brochure, error)
	ToggleActive(id string, isActive bool, token string) error
	UpdateDisplayOrder(id string, displayOrder int, token string) error
}
