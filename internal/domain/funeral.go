package domain

import "time"

// Funeral represents a memorial page listing.
type Funeral struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	DeceasedName  string     `json:"deceased_name"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	DateOfDeath   *time.Time `json:"date_of_death,omitempty"`
	ServiceDate   *time.Time `json:"service_date,omitempty"`
	ServicePlace  string     `json:"service_place,omitempty"`
	Obituary      string     `json:"obituary,omitempty"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	IsVisible     bool       `json:"is_visible"`
	CreatedBy     string     `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FuneralPatch is a partial update applied to an existing funeral.
type FuneralPatch struct {
	DeceasedName *string    `json:"deceased_name,omitempty"`
	ServiceDate  *time.Time `json:"service_date,omitempty"`
	ServicePlace *string    `json:"service_place,omitempty"`
	Obituary     *string    `json:"obituary,omitempty"`
	IsVisible    *bool      `json:"is_visible,omitempty"`
}

// FuneralRepository defines persistence operations for funerals.
type FuneralRepository interface {
	Create(funeral *Funeral, token string) error
	GetByID(id string) (*Funeral, error)
	GetVisible() ([]*Funeral, error)
	Update(id string, patch *FuneralPatch, token string) error
	Delete(id string, token string) error
}
