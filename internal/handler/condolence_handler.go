package handler

import (
	"encoding/json"
	"net/http"

	"memoria-server/internal/domain"

	"github.com/gorilla/mux"
)

// CondolenceHandler handles visitor message HTTP requests
type CondolenceHandler struct {
	condolenceService domain.CondolenceService
	logger            domain.Logger
}

// NewCondolenceHandler creates a new condolence handler
func NewCondolenceHandler(condolenceService domain.CondolenceService, logger domain.Logger) *CondolenceHandler {
	return &CondolenceHandler{
		condolenceService: condolenceService,
		logger:            logger,
	}
}

// SubmitCondolence accepts an unauthenticated visitor message. It lands
// in pending state and stays private until moderated.
func (h *CondolenceHandler) SubmitCondolence(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var body struct {
		AuthorName string `json:"author_name"`
		Message    string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	condolence, err := h.condolenceService.Submit(vars["funeralId"], body.AuthorName, body.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, condolence)
}

// ListApproved returns the public, moderated messages for a funeral.
func (h *CondolenceHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	condolences, err := h.condolenceService.ListApproved(vars["funeralId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if condolences == nil {
		condolences = make([]*domain.Condolence, 0)
	}

	writeJSON(w, http.StatusOK, condolences)
}

// ListPending returns the moderation queue.
func (h *CondolenceHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	condolences, err := h.condolenceService.ListPending(token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if condolences == nil {
		condolences = make([]*domain.Condolence, 0)
	}

	writeJSON(w, http.StatusOK, condolences)
}

// ModerateCondolence approves or rejects a pending message.
func (h *CondolenceHandler) ModerateCondolence(w http.ResponseWriter, r *http.Request) {
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	vars := mux.Vars(r)
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.condolenceService.Moderate(vars["id"], domain.CondolenceStatus(body.Status), token); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Condolence moderated"})
}
