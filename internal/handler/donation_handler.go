package handler

import (
	"encoding/json"
	"net/http"

	"memoria-server/internal/domain"

	"github.com/gorilla/mux"
)

// DonationHandler handles donation stub HTTP requests
type DonationHandler struct {
	donationService domain.DonationService
	logger          domain.Logger
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationService domain.DonationService, logger domain.Logger) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
		logger:          logger,
	}
}

// RecordDonation persists a donation stub for a funeral. Public: visitors
// donate without accounts.
func (h *DonationHandler) RecordDonation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var body struct {
		DonorName   string `json:"donor_name"`
		Message     string `json:"message"`
		AmountCents int64  `json:"amount_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	donation, err := h.donationService.Record(vars["funeralId"], body.DonorName, body.Message, body.AmountCents)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, donation)
}

// ListDonations returns individual donation rows. Protected: only the
// family sees who gave what.
func (h *DonationHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	vars := mux.Vars(r)
	donations, err := h.donationService.ListForFuneral(vars["funeralId"], token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if donations == nil {
		donations = make([]*domain.Donation, 0)
	}

	writeJSON(w, http.StatusOK, donations)
}

// GetDonationTotal returns the aggregate total, which is public.
func (h *DonationHandler) GetDonationTotal(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	total, err := h.donationService.Total(vars["funeralId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"total_cents": total})
}
