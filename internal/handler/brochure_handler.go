// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"memoria-server/internal/domain"

	"github.com/gorilla/mux"
)

// Uploads larger than this never reach the routing logic.
const maxUploadBytes = 64 << 20

// BrochureHandler handles brochure-related HTTP requests
type BrochureHandler struct {
	brochureService domain.BrochureService
	logger          domain.Logger
}

// NewBrochureHandler creates a new brochure handler
func NewBrochureHandler(brochureService domain.BrochureService, logger domain.Logger) *BrochureHandler {
	return &BrochureHandler{
		brochureService: brochureService,
		logger:          logger,
	}
}

// UploadBrochure accepts a multipart PDF upload and runs it through the
// storage pipeline before persisting the brochure row.
func (h *BrochureHandler) UploadBrochure(w http.ResponseWriter, r *http.Request) {
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}
	user, _ := GetUserFromContext(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		if strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
			mediaType = "application/pdf"
		}
	}

	candidate := domain.UploadCandidate{
		Data:      data,
		MediaType: mediaType,
		FileName:  header.Filename,
	}
	input := domain.BrochureInput{
		FuneralID:   r.FormValue("funeral_id"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if user != nil {
		input.CreatedBy = user.ID
	}

	brochure, err := h.brochureService.Upload(r.Context(), candidate, input, token)
	if err != nil {
		h.logger.Error("Brochure upload failed", err, "funeral_id", input.FuneralID)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, brochure)
}

// GetBrochures lists the brochures attached to a funeral.
func (h *BrochureHandler) GetBrochures(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	funeralID := vars["funeralId"]
	if funeralID == "" {
		writeError(w, http.StatusBadRequest, "Funeral ID is required")
		return
	}

	brochures, err := h.brochureService.GetForFuneral(funeralID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if brochures == nil {
		brochures = make([]*domain.Brochure, 0)
	}

	writeJSON(w, http.StatusOK, brochures)
}

// UpdateBrochure applies a partial update to title/description/flags.
func (h *BrochureHandler) UpdateBrochure(w http.ResponseWriter, r *http.Request) {
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	vars := mux.Vars(r)
	var patch domain.BrochurePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.brochureService.UpdateDetails(vars["id"], &patch, token); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Brochure updated"})
}

// DeleteBrochure removes the brochure row. Stored provider objects are
// kept; orphan cleanup is an offline concern.
func (h *BrochureHandler) DeleteBrochure(w http.ResponseWriter, r *http.Request) {
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	vars := mux.Vars(r)
	if err := h.brochureService.Delete(vars["id"], token); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Brochure deleted"})
}

// ToggleBrochure flips a brochure's visibility on the memorial page.
func (h *BrochureHandler) ToggleBrochure(w http.ResponseWriter, r *http.Request) {
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	vars := mux.Vars(r)
	var body struct {
		IsActive *bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsActive == nil {
		writeError(w, http.StatusBadRequest, "is_active is required")
		return
	}

	if err := h.brochureService.ToggleActive(vars["id"], *body.IsActive, token); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Brochure visibility updated"})
}

// ReorderBrochure moves a brochure within its funeral's display order.
func (h *BrochureHandler) ReorderBrochure(w http.ResponseWriter, r *http.Request) {
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	vars := mux.Vars(r)
	var body struct {
		DisplayOrder *int `json:"display_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DisplayOrder == nil {
		writeError(w, http.StatusBadRequest, "display_order is required")
		return
	}

	if err := h.brochureService.Reorder(vars["id"], *body.DisplayOrder, token); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Brochure reordered"})
}
