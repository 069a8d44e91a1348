package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"

	"memoria-server/internal/domain"
	apperrors "memoria-server/pkg/errors"
)

// FuneralRepository implements domain.FuneralRepository using Supabase.
type FuneralRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewFuneralRepository creates a new funeral repository
func NewFuneralRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.FuneralRepository {
	return &FuneralRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Create inserts a new funeral listing.
func (r *FuneralRepository) Create(funeral *domain.Funeral, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	if funeral.ID == "" {
		funeral.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	funeral.CreatedAt = now
	funeral.UpdatedAt = now

	row := map[string]interface{}{
		"id":            funeral.ID,
		"slug":          funeral.Slug,
		"deceased_name": funeral.DeceasedName,
		"obituary":      funeral.Obituary,
		"service_place": funeral.ServicePlace,
		"is_visible":    funeral.IsVisible,
		"created_by":    funeral.CreatedBy,
		"created_at":    funeral.CreatedAt,
		"updated_at":    funeral.UpdatedAt,
	}
	if funeral.DateOfBirth != nil {
		row["date_of_birth"] = funeral.DateOfBirth.Format("2006-01-02")
	}
	if funeral.DateOfDeath != nil {
		row["date_of_death"] = funeral.DateOfDeath.Format("2006-01-02")
	}
	if funeral.ServiceDate != nil {
		row["service_date"] = *funeral.ServiceDate
	}
	if funeral.CoverImageURL != "" {
		row["cover_image_url"] = funeral.CoverImageURL
	}

	_, _, err = client.From("funerals").Insert(row, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create funeral: %w", err)
	}

	r.logger.Info("Funeral created", "id", funeral.ID, "slug", funeral.Slug)
	return nil
}

// GetByID returns one funeral regardless of visibility.
func (r *FuneralRepository) GetByID(id string) (*domain.Funeral, error) {
	if !isStoreKey(id) {
		return nil, domain.ErrFuneralNotFound
	}

	client := r.supabaseClient.DB()
	if client == nil {
		return nil, apperrors.NewInternalError("supabase client not initialized", nil)
	}

	data, _, err := client.From("funerals").
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch funeral: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal funeral: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrFuneralNotFound
	}
	return mapToFuneral(rows[0]), nil
}

// GetVisible returns publicly listed funerals, newest first.
func (r *FuneralRepository) GetVisible() ([]*domain.Funeral, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, apperrors.NewInternalError("supabase client not initialized", nil)
	}

	data, _, err := client.From("funerals").
		Select("*", "", false).
		Eq("is_visible", "true").
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list funerals: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal funerals: %w", err)
	}

	funerals := make([]*domain.Funeral, 0, len(rows))
	for _, row := range rows {
		funerals = append(funerals, mapToFuneral(row))
	}
	return funerals, nil
}

// Update applies a partial patch to a funeral.
func (r *FuneralRepository) Update(id string, patch *domain.FuneralPatch, token string) error {
	if !isStoreKey(id) {
		return domain.ErrFuneralNotFound
	}

	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	row := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if patch.DeceasedName != nil {
		row["deceased_name"] = *patch.DeceasedName
	}
	if patch.ServiceDate != nil {
		row["service_date"] = *patch.ServiceDate
	}
	if patch.ServicePlace != nil {
		row["service_place"] = *patch.ServicePlace
	}
	if patch.Obituary != nil {
		row["obituary"] = *patch.Obituary
	}
	if patch.IsVisible != nil {
		row["is_visible"] = *patch.IsVisible
	}

	_, _, err = client.From("funerals").Update(row, "", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to update funeral: %w", err)
	}
	return nil
}

// Delete removes a funeral listing.
func (r *FuneralRepository) Delete(id string, token string) error {
	if !isStoreKey(id) {
		return domain.ErrFuneralNotFound
	}

	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("funerals").Delete("", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to delete funeral: %w", err)
	}

	r.logger.Info("Funeral deleted", "id", id)
	return nil
}

func mapToFuneral(row map[string]interface{}) *domain.Funeral {
	funeral := &domain.Funeral{}

	if v, ok := row["id"].(string); ok {
		funeral.ID = v
	}
	if v, ok := row["slug"].(string); ok {
		funeral.Slug = v
	}
	if v, ok := row["deceased_name"].(string); ok {
		funeral.DeceasedName = v
	}
	if v, ok := row["obituary"].(string); ok {
		funeral.Obituary = v
	}
	if v, ok := row["service_place"].(string); ok {
		funeral.ServicePlace = v
	}
	if v, ok := row["cover_image_url"].(string); ok {
		funeral.CoverImageURL = v
	}
	if v, ok := row["is_visible"].(bool); ok {
		funeral.IsVisible = v
	}
	if v, ok := row["created_by"].(string); ok {
		funeral.CreatedBy = v
	}
	if v, ok := row["date_of_birth"].(string); ok {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			funeral.DateOfBirth = &parsed
		}
	}
	if v, ok := row["date_of_death"].(string); ok {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			funeral.DateOfDeath = &parsed
		}
	}
	if v, ok := row["service_date"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			funeral.ServiceDate = &parsed
		}
	}
	if v, ok := row["created_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			funeral.CreatedAt = parsed
		}
	}
	if v, ok := row["updated_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			funeral.UpdatedAt = parsed
		}
	}

	return funeral
}
