package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"memoria-server/internal/domain"
	apperrors "memoria-server/pkg/errors"
)

// BrochureRepository implements domain.BrochureRepository over the
// brochure stored procedures. Identifiers that are not well-formed UUIDs
// are rejected locally with an empty result instead of being forwarded,
// which avoids a class of store-level type-mismatch errors.
type BrochureRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewBrochureRepository creates a new brochure repository
func NewBrochureRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.BrochureRepository {
	return &BrochureRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// brochureRow is the wire shape returned by the brochure RPCs.
type brochureRow struct {
	ID           string    `json:"id"`
	FuneralID    string    `json:"funeral_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PDFURL       string    `json:"pdf_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	ExternalID   string    `json:"external_id"`
	ByteSize     int64     `json:"byte_size"`
	PageCount    int       `json:"page_count"`
	ProviderTag  string    `json:"provider_tag"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int       `json:"display_order"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (row brochureRow) toDomain() *domain.Brochure {
	return &domain.Brochure{
		ID:           row.ID,
		FuneralID:    row.FuneralID,
		Title:        row.Title,
		Description:  row.Description,
		PDFURL:       row.PDFURL,
		ThumbnailURL: row.ThumbnailURL,
		ExternalID:   row.ExternalID,
		ByteSize:     row.ByteSize,
		PageCount:    row.PageCount,
		ProviderTag:  domain.Provider(row.ProviderTag),
		IsActive:     row.IsActive,
		DisplayOrder: row.DisplayOrder,
		CreatedBy:    row.CreatedBy,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// isStoreKey reports whether id is a well-formed store-native key.
func isStoreKey(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// GetByFuneralID returns the funeral's brochures ordered by display order.
func (r *BrochureRepository) GetByFuneralID(funeralID string) ([]*domain.Brochure, error) {
	if !isStoreKey(funeralID) {
		r.logger.Debug("Skipping brochure fetch for malformed funeral id", "funeral_id", funeralID)
		return []*domain.Brochure{}, nil
	}

	client := r.supabaseClient.DB()
	if client == nil {
		return nil, apperrors.NewInternalError("supabase client not initialized", nil)
	}

	resp := client.Rpc("get_brochures_for_funeral", "", map[string]interface{}{
		"p_funeral_id": funeralID,
	})
	if resp == "" {
		return []*domain.Brochure{}, nil
	}

	var rows []brochureRow
	if err := json.Unmarshal([]byte(resp), &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal brochures: %w", err)
	}

	brochures := make([]*domain.Brochure, 0, len(rows))
	for _, row := range rows {
		brochures = append(brochures, row.toDomain())
	}
	return brochures, nil
}

// Create inserts a brochure row via the create_brochure procedure.
// IsActive defaults to true and DisplayOrder to the current count when the
// caller supplied neither.
func (r *BrochureRepository) Create(brochure *domain.Brochure, token string) error {
	if !isStoreKey(brochure.FuneralID) {
		return &domain.ValidationError{Field: "funeral_id", Message: "not a well-formed identifier"}
	}

	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	resp := client.Rpc("create_brochure", "", map[string]interface{}{
		"p_funeral_id":    brochure.FuneralID,
		"p_title":         brochure.Title,
		"p_description":   brochure.Description,
		"p_pdf_url":       brochure.PDFURL,
		"p_thumbnail_url": brochure.ThumbnailURL,
		"p_external_id":   brochure.ExternalID,
		"p_byte_size":     brochure.ByteSize,
		"p_page_count":    brochure.PageCount,
		"p_provider_tag":  string(brochure.ProviderTag),
		"p_is_active":     brochure.IsActive,
		"p_display_order": brochure.DisplayOrder,
	})
	if resp == "" {
		return apperrors.NewNetworkError("failed to create brochure", nil)
	}

	var rows []brochureRow
	if err := json.Unmarshal([]byte(resp), &rows); err != nil {
		// Some procedures return a single object rather than a set.
		var row brochureRow
		if err := json.Unmarshal([]byte(resp), &row); err != nil {
			return fmt.Errorf("failed to unmarshal created brochure: %w", err)
		}
		rows = []brochureRow{row}
	}
	if len(rows) == 0 {
		return fmt.Errorf("failed to create brochure: empty response")
	}

	created := rows[0].toDomain()
	brochure.ID = created.ID
	brochure.CreatedAt = created.CreatedAt
	brochure.UpdatedAt = created.UpdatedAt

	r.logger.Info("Brochure created", "id", brochure.ID, "funeral_id", brochure.FuneralID)
	return nil
}

// Update applies a partial patch via the update_brochure procedure.
func (r *BrochureRepository) Update(id string, patch *domain.BrochurePatch, token string) error {
	if !isStoreKey(id) {
		return &domain.ValidationError{Field: "id", Message: "not a well-formed identifier"}
	}

	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	params := map[string]interface{}{"p_id": id}
	if patch.Title != nil {
		params["p_title"] = *patch.Title
	}
	if patch.Description != nil {
		params["p_description"] = *patch.Description
	}
	if patch.IsActive != nil {
		params["p_is_active"] = *patch.IsActive
	}
	if patch.DisplayOrder != nil {
		params["p_display_order"] = *patch.DisplayOrder
	}

	if resp := client.Rpc("update_brochure", "", params); resp == "" {
		return apperrors.NewNetworkError(fmt.Sprintf("failed to update brochure %s", id), nil)
	}
	return nil
}

// Delete removes a brochure via the delete_brochure procedure.
func (r *BrochureRepository) Delete(id string, token string) error {
	if !isStoreKey(id) {
		return &domain.ValidationError{Field: "id", Message: "not a well-formed identifier"}
	}

	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	if resp := client.Rpc("delete_brochure", "", map[string]interface{}{"p_id": id}); resp == "" {
		return apperrors.NewNetworkError(fmt.Sprintf("failed to delete brochure %s", id), nil)
	}

	r.logger.Info("Brochure deleted", "id", id)
	return nil
}

// ToggleActive flips the visibility flag of one brochure.
func (r *BrochureRepository) ToggleActive(id string, isActive bool, token string) error {
	return r.Update(id, &domain.BrochurePatch{IsActive: &isActive}, token)
}

// UpdateDisplayOrder moves a brochure within its funeral's ordering.
func (r *BrochureRepository) UpdateDisplayOrder(id string, displayOrder int, token string) error {
	return r.Update(id, &domain.BrochurePatch{DisplayOrder: &displayOrder}, token)
}
