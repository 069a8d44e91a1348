package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"

	"memoria-server/internal/domain"
	apperrors "memoria-server/pkg/errors"
)

// DonationRepository implements domain.DonationRepository using Supabase.
type DonationRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.DonationRepository {
	return &DonationRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Create records a donation intent. The running total per funeral is
// maintained by the record_donation procedure's atomic increment, so no
// app-level coordination is needed even with concurrent donors.
func (r *DonationRepository) Create(donation *domain.Donation) error {
	if !isStoreKey(donation.FuneralID) {
		return &domain.ValidationError{Field: "funeral_id", Message: "not a well-formed identifier"}
	}

	client := r.supabaseClient.DB()
	if client == nil {
		return apperrors.NewInternalError("supabase client not initialized", nil)
	}

	if donation.ID == "" {
		donation.ID = uuid.New().String()
	}

	resp := client.Rpc("record_donation", "", map[string]interface{}{
		"p_id":           donation.ID,
		"p_funeral_id":   donation.FuneralID,
		"p_donor_name":   donation.DonorName,
		"p_amount_cents": donation.AmountCents,
		"p_message":      donation.Message,
	})
	if resp == "" {
		return apperrors.NewNetworkError("failed to record donation", nil)
	}

	r.logger.Info("Donation recorded", "funeral_id", donation.FuneralID, "amount_cents", donation.AmountCents)
	return nil
}

// GetByFuneralID lists donations for the funeral's owner.
func (r *DonationRepository) GetByFuneralID(funeralID string, token string) ([]*domain.Donation, error) {
	if !isStoreKey(funeralID) {
		return []*domain.Donation{}, nil
	}

	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("donations").
		Select("*", "", false).
		Eq("funeral_id", funeralID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}

	var donations []*domain.Donation
	if err := json.Unmarshal(data, &donations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal donations: %w", err)
	}
	if donations == nil {
		donations = []*domain.Donation{}
	}
	return donations, nil
}

// TotalForFuneral runs the store-side aggregate.
func (r *DonationRepository) TotalForFuneral(funeralID string) (int64, error) {
	if !isStoreKey(funeralID) {
		return 0, nil
	}

	client := r.supabaseClient.DB()
	if client == nil {
		return 0, apperrors.NewInternalError("supabase client not initialized", nil)
	}

	resp := client.Rpc("donation_total_for_funeral", "", map[string]interface{}{
		"p_funeral_id": funeralID,
	})
	if resp == "" {
		return 0, nil
	}

	total, err := strconv.ParseInt(strings.TrimSpace(resp), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse donation total %q: %w", resp, err)
	}
	return total, nil
}
