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

// CondolenceRepository implements domain.CondolenceRepository using Supabase.
// Visitor submissions go through the anon client; moderation requires the
// service-role client and degrades to ErrServiceKeyMissing without it.
type CondolenceRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewCondolenceRepository creates a new condolence repository
func NewCondolenceRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.CondolenceRepository {
	return &CondolenceRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Create stores a visitor-submitted condolence in pending state.
func (r *CondolenceRepository) Create(condolence *domain.Condolence) error {
	if !isStoreKey(condolence.FuneralID) {
		return &domain.ValidationError{Field: "funeral_id", Message: "not a well-formed identifier"}
	}

	client := r.supabaseClient.DB()
	if client == nil {
		return apperrors.NewInternalError("supabase client not initialized", nil)
	}

	if condolence.ID == "" {
		condolence.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	condolence.CreatedAt = now
	condolence.UpdatedAt = now

	row := map[string]interface{}{
		"id":          condolence.ID,
		"funeral_id":  condolence.FuneralID,
		"author_name": condolence.AuthorName,
		"message":     condolence.Message,
		"status":      string(domain.CondolencePending),
		"created_at":  condolence.CreatedAt,
		"updated_at":  condolence.UpdatedAt,
	}

	_, _, err := client.From("condolences").Insert(row, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create condolence: %w", err)
	}

	r.logger.Info("Condolence submitted", "id", condolence.ID, "funeral_id", condolence.FuneralID)
	return nil
}

// GetApprovedByFuneralID returns the moderated messages visitors see.
func (r *CondolenceRepository) GetApprovedByFuneralID(funeralID string) ([]*domain.Condolence, error) {
	if !isStoreKey(funeralID) {
		return []*domain.Condolence{}, nil
	}

	client := r.supabaseClient.DB()
	if client == nil {
		return nil, apperrors.NewInternalError("supabase client not initialized", nil)
	}

	data, _, err := client.From("condolences").
		Select("*", "", false).
		Eq("funeral_id", funeralID).
		Eq("status", string(domain.CondolenceApproved)).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list condolences: %w", err)
	}

	return unmarshalCondolences(data)
}

// GetPending returns the moderation queue.
func (r *CondolenceRepository) GetPending(token string) ([]*domain.Condolence, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("condolences").
		Select("*", "", false).
		Eq("status", string(domain.CondolencePending)).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending condolences: %w", err)
	}

	return unmarshalCondolences(data)
}

// SetStatus approves or rejects one condolence. Moderation writes rows the
// moderator does not own, so it requires the service-role client; without
// one the deployment cannot moderate and the caller gets
// ErrServiceKeyMissing rather than a row-level permission failure.
func (r *CondolenceRepository) SetStatus(id string, status domain.CondolenceStatus, token string) error {
	if !isStoreKey(id) {
		return domain.ErrCondolenceNotFound
	}

	client := r.supabaseClient.AdminDB()
	if client == nil {
		return domain.ErrServiceKeyMissing
	}

	row := map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}

	_, _, err := client.From("condolences").Update(row, "", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to update condolence status: %w", err)
	}

	r.logger.Info("Condolence moderated", "id", id, "status", status)
	return nil
}

// Delete removes a condolence outright.
func (r *CondolenceRepository) Delete(id string, token string) error {
	if !isStoreKey(id) {
		return domain.ErrCondolenceNotFound
	}

	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("condolences").Delete("", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to delete condolence: %w", err)
	}
	return nil
}

func unmarshalCondolences(data []byte) ([]*domain.Condolence, error) {
	var rows []struct {
		ID         string    `json:"id"`
		FuneralID  string    `json:"funeral_id"`
		AuthorName string    `json:"author_name"`
		Message    string    `json:"message"`
		Status     string    `json:"status"`
		CreatedAt  time.Time `json:"created_at"`
		UpdatedAt  time.Time `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal condolences: %w", err)
	}

	condolences := make([]*domain.Condolence, 0, len(rows))
	for _, row := range rows {
		condolences = append(condolences, &domain.Condolence{
			ID:         row.ID,
			FuneralID:  row.FuneralID,
			AuthorName: row.AuthorName,
			Message:    row.Message,
			Status:     domain.CondolenceStatus(row.Status),
			CreatedAt:  row.CreatedAt,
			UpdatedAt:  row.UpdatedAt,
		})
	}
	return condolences, nil
}
