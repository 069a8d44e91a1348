package handler

import (
	"encoding/json"
	"net/http"

	"memoria-server/internal/domain"

	"github.com/gorilla/mux"
)

// FuneralHandler handles memorial page HTTP requests
type FuneralHandler struct {
	funeralService domain.FuneralService
	logger         domain.Logger
}

// NewFuneralHandler creates a new funeral handler
func NewFuneralHandler(funeralService domain.FuneralService, logger domain.Logger) *FuneralHandler {
	return &FuneralHandler{
		funeralService: funeralService,
		logger:         logger,
	}
}

func (h *FuneralHandler) CreateFuneral(w http.ResponseWriter, r *http.Request) {
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	var funeral domain.Funeral
	if err := json.NewDecoder(r.Body).Decode(&funeral); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if user, ok := GetUserFromContext(r); ok {
		funeral.CreatedBy = user.ID
	}

	created, err := h.funeralService.Create(&funeral, token)
	if err != nil {
		h.logger.Error("Funeral creation failed", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *FuneralHandler) GetFuneral(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	funeral, err := h.funeralService.GetByID(vars["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, funeral)
}

func (h *FuneralHandler) ListFunerals(w http.ResponseWriter, r *http.Request) {
	funerals, err := h.funeralService.ListVisible()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if funerals == nil {
		funerals = make([]*domain.Funeral, 0)
	}

	writeJSON(w, http.StatusOK, funerals)
}

func (h *FuneralHandler) UpdateFuneral(w http.ResponseWriter, r *http.Request) {
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	vars := mux.Vars(r)
	var patch domain.FuneralPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.funeralService.Update(vars["id"], &patch, token); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Funeral updated"})
}

func (h *FuneralHandler) DeleteFuneral(w http.ResponseWriter, r *http.Request) {
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	vars := mux.Vars(r)
	if err := h.funeralService.Delete(vars["id"], token); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Funeral deleted"})
}
